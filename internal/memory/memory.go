package memory

import (
	"context"
	"sync"
	"time"

	"lull/internal/event"
)

type scopeState struct {
	transcript []Message
	summary    string
	name       string
	lastActive time.Time
}

// InMemoryStore is a map-backed Store for tests and redis-less development.
type InMemoryStore struct {
	mu              sync.Mutex
	scopes          map[string]*scopeState
	transcriptLimit int
}

func NewInMemoryStore(transcriptLimit int) *InMemoryStore {
	if transcriptLimit <= 0 {
		transcriptLimit = 200
	}
	return &InMemoryStore{
		scopes:          make(map[string]*scopeState),
		transcriptLimit: transcriptLimit,
	}
}

func (s *InMemoryStore) stateLocked(scope event.Scope) *scopeState {
	key := scope.Key()
	st, ok := s.scopes[key]
	if !ok {
		st = &scopeState{}
		s.scopes[key] = st
	}
	return st
}

func (s *InMemoryStore) AppendMessage(ctx context.Context, scope event.Scope, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stateLocked(scope)
	st.transcript = append(st.transcript, msg)
	if len(st.transcript) > s.transcriptLimit {
		st.transcript = st.transcript[len(st.transcript)-s.transcriptLimit:]
	}
	if msg.Timestamp.After(st.lastActive) {
		st.lastActive = msg.Timestamp
	}
	return nil
}

func (s *InMemoryStore) RecentMessages(ctx context.Context, scope event.Scope, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.scopes[scope.Key()]
	if !ok {
		return nil, nil
	}
	if limit <= 0 || limit > len(st.transcript) {
		limit = len(st.transcript)
	}
	out := make([]Message, limit)
	copy(out, st.transcript[len(st.transcript)-limit:])
	return out, nil
}

func (s *InMemoryStore) SaveSummary(ctx context.Context, scope event.Scope, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateLocked(scope).summary = summary
	return nil
}

func (s *InMemoryStore) Summary(ctx context.Context, scope event.Scope) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.scopes[scope.Key()]; ok {
		return st.summary, nil
	}
	return "", nil
}

func (s *InMemoryStore) ActiveScopes(ctx context.Context, since time.Time) ([]event.Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scopes []event.Scope
	for key, st := range s.scopes {
		if !st.lastActive.Before(since) {
			scopes = append(scopes, scopeFromKey(key))
		}
	}
	return scopes, nil
}

func (s *InMemoryStore) SaveConversationName(ctx context.Context, scope event.Scope, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateLocked(scope).name = name
	return nil
}

func (s *InMemoryStore) ConversationName(ctx context.Context, scope event.Scope) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.scopes[scope.Key()]; ok {
		return st.name, nil
	}
	return "", nil
}

func (s *InMemoryStore) PruneIdle(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for key, st := range s.scopes {
		if st.lastActive.Before(cutoff) {
			delete(s.scopes, key)
			pruned++
		}
	}
	return pruned, nil
}
