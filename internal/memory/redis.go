package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"lull/internal/event"
)

const (
	keyPrefixTranscript = "transcript:"
	keyPrefixSummary    = "summary:"
	keyActiveScopes     = "scopes:active"
	keyScopeNames       = "scopes:names"
)

// RedisStore keeps conversation state in redis: transcripts as capped lists,
// summaries and names as plain keys, activity as a sorted set scored by unix
// time.
type RedisStore struct {
	client          *redis.Client
	transcriptLimit int
}

func NewRedisStore(client *redis.Client, transcriptLimit int) *RedisStore {
	if transcriptLimit <= 0 {
		transcriptLimit = 200
	}
	return &RedisStore{
		client:          client,
		transcriptLimit: transcriptLimit,
	}
}

func (s *RedisStore) AppendMessage(ctx context.Context, scope event.Scope, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript message: %w", err)
	}

	key := keyPrefixTranscript + scope.Key()
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.transcriptLimit), -1)
	pipe.ZAdd(ctx, keyActiveScopes, redis.Z{
		Score:  float64(msg.Timestamp.Unix()),
		Member: scope.Key(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append transcript message for %s: %w", scope, err)
	}
	return nil
}

func (s *RedisStore) RecentMessages(ctx context.Context, scope event.Scope, limit int) ([]Message, error) {
	if limit <= 0 || limit > s.transcriptLimit {
		limit = s.transcriptLimit
	}

	key := keyPrefixTranscript + scope.Key()
	raw, err := s.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript for %s: %w", scope, err)
	}

	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript message for %s: %w", scope, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisStore) SaveSummary(ctx context.Context, scope event.Scope, summary string) error {
	if err := s.client.Set(ctx, keyPrefixSummary+scope.Key(), summary, 0).Err(); err != nil {
		return fmt.Errorf("failed to save summary for %s: %w", scope, err)
	}
	return nil
}

func (s *RedisStore) Summary(ctx context.Context, scope event.Scope) (string, error) {
	summary, err := s.client.Get(ctx, keyPrefixSummary+scope.Key()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read summary for %s: %w", scope, err)
	}
	return summary, nil
}

func (s *RedisStore) ActiveScopes(ctx context.Context, since time.Time) ([]event.Scope, error) {
	keys, err := s.client.ZRangeByScore(ctx, keyActiveScopes, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", since.Unix()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active scopes: %w", err)
	}

	scopes := make([]event.Scope, 0, len(keys))
	for _, key := range keys {
		scopes = append(scopes, scopeFromKey(key))
	}
	return scopes, nil
}

func (s *RedisStore) SaveConversationName(ctx context.Context, scope event.Scope, name string) error {
	if err := s.client.HSet(ctx, keyScopeNames, scope.Key(), name).Err(); err != nil {
		return fmt.Errorf("failed to save conversation name for %s: %w", scope, err)
	}
	return nil
}

func (s *RedisStore) ConversationName(ctx context.Context, scope event.Scope) (string, error) {
	name, err := s.client.HGet(ctx, keyScopeNames, scope.Key()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read conversation name for %s: %w", scope, err)
	}
	return name, nil
}

func (s *RedisStore) PruneIdle(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.client.ZRangeByScore(ctx, keyActiveScopes, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", cutoff.Unix()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list idle scopes: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	pipe := s.client.TxPipeline()
	for _, key := range stale {
		pipe.Del(ctx, keyPrefixTranscript+key, keyPrefixSummary+key)
		pipe.HDel(ctx, keyScopeNames, key)
		pipe.ZRem(ctx, keyActiveScopes, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to prune idle scopes: %w", err)
	}
	return len(stale), nil
}

func scopeFromKey(key string) event.Scope {
	parts := strings.SplitN(key, ":", 2)
	scope := event.Scope{ChannelID: parts[0]}
	if len(parts) == 2 {
		scope.ThreadID = parts[1]
	}
	return scope
}
