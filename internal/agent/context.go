package agent

import (
	"context"
	"fmt"

	"lull/internal/event"
	"lull/internal/memory"
)

// StoreContextBuilder assembles context bundles from the memory store.
type StoreContextBuilder struct {
	store           memory.Store
	transcriptLimit int
}

func NewContextBuilder(store memory.Store, transcriptLimit int) *StoreContextBuilder {
	return &StoreContextBuilder{
		store:           store,
		transcriptLimit: transcriptLimit,
	}
}

func (b *StoreContextBuilder) Build(ctx context.Context, scope event.Scope, trigger Trigger) (*ContextBundle, error) {
	transcript, err := b.store.RecentMessages(ctx, scope, b.transcriptLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript for %s: %w", scope, err)
	}

	summary, err := b.store.Summary(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary for %s: %w", scope, err)
	}

	name, err := b.store.ConversationName(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation name for %s: %w", scope, err)
	}

	return &ContextBundle{
		Scope:            scope,
		ConversationName: name,
		Summary:          summary,
		Transcript:       transcript,
		Trigger:          trigger,
	}, nil
}
