package agent

import (
	"context"
	"fmt"
	"time"

	"lull/internal/channel"
	"lull/internal/event"
	"lull/internal/logger"
	"lull/internal/memory"
)

// SummarizeHandler refreshes the rolling summary of every recently active
// scope. Per-scope failures are logged and skipped so one bad scope cannot
// starve the rest.
type SummarizeHandler struct {
	store      memory.Store
	builder    ContextBuilder
	summarizer Summarizer
	lookback   time.Duration
	logger     logger.Logger
}

func NewSummarizeHandler(store memory.Store, builder ContextBuilder, summarizer Summarizer, lookback time.Duration, log logger.Logger) *SummarizeHandler {
	return &SummarizeHandler{
		store:      store,
		builder:    builder,
		summarizer: summarizer,
		lookback:   lookback,
		logger:     log,
	}
}

func (h *SummarizeHandler) Handle(ctx context.Context, ev *event.Event) error {
	scopes, err := h.store.ActiveScopes(ctx, time.Now().Add(-h.lookback))
	if err != nil {
		return fmt.Errorf("failed to list active scopes: %w", err)
	}

	for _, scope := range scopes {
		if err := h.summarizeScope(ctx, scope); err != nil {
			h.logger.WarnwCtx(ctx, "scope summarization failed",
				"scope", scope.String(),
				"error", err,
			)
		}
	}
	return nil
}

func (h *SummarizeHandler) summarizeScope(ctx context.Context, scope event.Scope) error {
	bundle, err := h.builder.Build(ctx, scope, Trigger{})
	if err != nil {
		return err
	}
	if len(bundle.Transcript) == 0 {
		return nil
	}

	summary, err := h.summarizer.Summarize(ctx, bundle)
	if err != nil {
		return err
	}
	if summary == "" {
		return nil
	}
	return h.store.SaveSummary(ctx, scope, summary)
}

// ChannelSyncHandler refreshes conversation metadata from the platform and
// prunes state for scopes idle past the retention window.
type ChannelSyncHandler struct {
	channel   channel.Channel
	store     memory.Store
	retention time.Duration
	logger    logger.Logger
}

func NewChannelSyncHandler(ch channel.Channel, store memory.Store, retention time.Duration, log logger.Logger) *ChannelSyncHandler {
	return &ChannelSyncHandler{
		channel:   ch,
		store:     store,
		retention: retention,
		logger:    log,
	}
}

func (h *ChannelSyncHandler) Handle(ctx context.Context, ev *event.Event) error {
	infos, err := h.channel.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	for _, info := range infos {
		if err := h.store.SaveConversationName(ctx, info.Scope, info.Name); err != nil {
			h.logger.WarnwCtx(ctx, "failed to save conversation name",
				"scope", info.Scope.String(),
				"error", err,
			)
		}
	}

	pruned, err := h.store.PruneIdle(ctx, time.Now().Add(-h.retention))
	if err != nil {
		return fmt.Errorf("failed to prune idle scopes: %w", err)
	}
	if pruned > 0 {
		h.logger.InfowCtx(ctx, "pruned idle conversation state", "scopes", pruned)
	}
	return nil
}
