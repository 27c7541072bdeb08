package verification

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

// DefaultSessionTTL bounds how long an idle conversation keeps its
// verification state.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore persists verification sessions keyed by conversation ID.
// Sessions are isolated per conversation; concurrent conversations never
// observe each other's state.
type SessionStore interface {
	// Load returns the stored session, or (nil, nil) when none exists.
	Load(ctx context.Context, conversationID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, conversationID string) error
}

type redisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if client == nil {
		panic("verification: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &redisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("bankshash.internal.verification.sessions"),
	}
}

func sessionKey(conversationID string) string {
	return fmt.Sprintf("verify_session:%s", conversationID)
}

func (s *redisSessionStore) Load(ctx context.Context, conversationID string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "verification.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("verification: failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("verification: failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "verification.save_session")
	defer span.End()

	if session == nil || session.ConversationID == "" {
		return fmt.Errorf("verification: session must have a conversation id")
	}
	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("verification: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.ConversationID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("verification: failed to persist session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, conversationID string) error {
	ctx, span := s.tracer.Start(ctx, "verification.delete_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(conversationID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("verification: failed to delete session: %w", err)
	}
	return nil
}

// MemorySessionStore is a process-local SessionStore for tests and the
// memory-queue development mode.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (s *MemorySessionStore) Load(_ context.Context, conversationID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[conversationID]
	if !ok {
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *Session) error {
	if session == nil || session.ConversationID == "" {
		return fmt.Errorf("verification: session must have a conversation id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.ConversationID] = &clone
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
	return nil
}
