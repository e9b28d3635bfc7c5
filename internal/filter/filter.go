package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"lull/internal/channel"
)

// Filter gates inbound messages before they reach intake: an optional sender
// allowlist and an optional CEL predicate over message attributes. The CEL
// program is compiled once at construction.
type Filter struct {
	allowFrom map[string]struct{}
	program   cel.Program
}

func New(allowFrom []string, expression string) (*Filter, error) {
	f := &Filter{}

	if len(allowFrom) > 0 {
		f.allowFrom = make(map[string]struct{}, len(allowFrom))
		for _, id := range allowFrom {
			f.allowFrom[id] = struct{}{}
		}
	}

	if expression != "" {
		env, err := cel.NewEnv(
			cel.Variable("sender_id", cel.StringType),
			cel.Variable("sender_name", cel.StringType),
			cel.Variable("channel_id", cel.StringType),
			cel.Variable("thread_id", cel.StringType),
			cel.Variable("content", cel.StringType),
			cel.Variable("direct", cel.BoolType),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create CEL environment: %w", err)
		}

		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("filter expression compilation failed: %w", issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to create CEL program: %w", err)
		}
		f.program = program
	}

	return f, nil
}

// Allow reports whether the message may enter intake.
func (f *Filter) Allow(msg channel.InboundMessage) (bool, error) {
	if f.allowFrom != nil {
		if _, ok := f.allowFrom[msg.SenderID]; !ok {
			return false, nil
		}
	}

	if f.program == nil {
		return true, nil
	}

	result, _, err := f.program.Eval(map[string]interface{}{
		"sender_id":   msg.SenderID,
		"sender_name": msg.SenderName,
		"channel_id":  msg.Scope.ChannelID,
		"thread_id":   msg.Scope.ThreadID,
		"content":     msg.Content,
		"direct":      msg.DirectAddress,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter expression: %w", err)
	}

	allowed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter expression did not return bool, got %T", result.Value())
	}
	return allowed, nil
}
