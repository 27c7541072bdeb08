package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const conversationTTL = 24 * time.Hour

// HistoryStore persists LLM chat context per conversation.
type HistoryStore interface {
	Save(ctx context.Context, conversationID string, history []ChatMessage) error
	Load(ctx context.Context, conversationID string) ([]ChatMessage, error)
}

type historyStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewHistoryStore creates a Redis-backed chat history store.
func NewHistoryStore(client *redis.Client) HistoryStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &historyStore{
		redis:  client,
		tracer: otel.Tracer("bankshash.internal.conversation.history"),
	}
}

func (s *historyStore) Save(ctx context.Context, conversationID string, history []ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_history")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, conversationKey(conversationID), data, conversationTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

func (s *historyStore) Load(ctx context.Context, conversationID string) ([]ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, conversationKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

// MemoryHistoryStore keeps chat context in process memory, for tests and the
// memory-queue development mode.
type MemoryHistoryStore struct {
	mu        sync.Mutex
	histories map[string][]ChatMessage
}

// NewMemoryHistoryStore creates an empty in-memory history store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{histories: make(map[string][]ChatMessage)}
}

func (s *MemoryHistoryStore) Save(_ context.Context, conversationID string, history []ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[conversationID] = append([]ChatMessage(nil), history...)
	return nil
}

func (s *MemoryHistoryStore) Load(_ context.Context, conversationID string) ([]ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatMessage(nil), s.histories[conversationID]...), nil
}
