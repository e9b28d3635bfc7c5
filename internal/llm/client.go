package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"lull/internal/agent"
	"lull/internal/config"
	"lull/internal/logger"
	"lull/pkg/circuitbreaker"
	"lull/pkg/metrics"
	"lull/pkg/retry"
)

const defaultMaxTokens = 1024

// Client implements the Judge, Generator and Summarizer collaborators on top
// of the Anthropic Messages API. Every call goes through a shared circuit
// breaker and the retry policy; a judgment that cannot be obtained is an
// error, never an implicit "respond".
type Client struct {
	api       anthropic.Client
	model     anthropic.Model
	maxTokens int64
	agentName string
	breaker   *circuitbreaker.Wrapper
	policy    retry.Policy
	logger    logger.Logger
}

func NewClient(cfg config.LLMConfig, agentName string, log logger.Logger) *Client {
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		api:       anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: maxTokens,
		agentName: agentName,
		breaker:   circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("llm")),
		policy:    retry.DefaultPolicy(),
		logger:    log,
	}
}

func (c *Client) Judge(ctx context.Context, bundle *agent.ContextBundle) (*agent.JudgmentResult, error) {
	out, err := c.complete(ctx, "judge", fmt.Sprintf(judgeSystemPrompt, c.agentName), judgeUserPrompt(bundle))
	if err != nil {
		return nil, err
	}
	result, err := ParseJudgment(out)
	if err != nil {
		return nil, err
	}
	c.logger.DebugwCtx(ctx, "judgment obtained",
		"scope", bundle.Scope.String(),
		"should_respond", result.ShouldRespond,
		"confidence", result.Confidence,
		"reason", result.Reason,
	)
	return result, nil
}

func (c *Client) Generate(ctx context.Context, bundle *agent.ContextBundle) (string, error) {
	return c.complete(ctx, "generate", fmt.Sprintf(respondSystemPrompt, c.agentName), respondUserPrompt(bundle))
}

func (c *Client) Summarize(ctx context.Context, bundle *agent.ContextBundle) (string, error) {
	return c.complete(ctx, "summarize", summarySystemPrompt, summaryUserPrompt(bundle))
}

func (c *Client) complete(ctx context.Context, operation, system, user string) (string, error) {
	start := time.Now()

	var out string
	err := retry.Retry(ctx, c.policy, func() error {
		result, err := c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
				Model:     c.model,
				MaxTokens: c.maxTokens,
				System:    []anthropic.TextBlockParam{{Text: system}},
				Messages: []anthropic.MessageParam{
					anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
				},
			})
			if err != nil {
				return nil, classify(err)
			}
			return collectText(msg), nil
		})
		if err != nil {
			// An open breaker means the API is known-bad; retrying inside the
			// policy would only hammer the breaker.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return retry.NewFatalError(err)
			}
			return err
		}
		out = result.(string)
		return nil
	})

	metrics.ObserveLLMDuration(operation, time.Since(start))
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("llm %s request failed: %w", operation, err)
	}
	metrics.LLMRequestsTotal.WithLabelValues(operation, "success").Inc()
	return strings.TrimSpace(out), nil
}

// classify maps API failures onto the retry policy: rate limits and server
// errors are retryable, other client errors are not worth repeating.
func classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 408, apierr.StatusCode == 429, apierr.StatusCode >= 500:
			return retry.NewRetryableError(err)
		case apierr.StatusCode >= 400:
			return retry.NewFatalError(err)
		}
	}
	return err
}

func collectText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
