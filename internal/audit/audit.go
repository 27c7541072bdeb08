// Package audit records an immutable trail of verification and support
// events for later review.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of audit event.
type EventType string

const (
	// EventVerificationStarted is logged when a new session begins the flow.
	EventVerificationStarted EventType = "verification.started"
	// EventFieldCaptured is logged when a candidate field is first captured.
	// Details carry field names only, never the captured values.
	EventFieldCaptured EventType = "verification.field_captured"
	// EventAttemptFailed is logged when a validation attempt fails.
	EventAttemptFailed EventType = "verification.attempt_failed"
	// EventSessionVerified is logged when a session passes verification.
	EventSessionVerified EventType = "verification.session_verified"
	// EventSessionLocked is logged when a session exhausts its retries.
	EventSessionLocked EventType = "verification.session_locked"
	// EventIntentHandled is logged when a post-verification intent is served.
	EventIntentHandled EventType = "support.intent_handled"
)

// Event represents an immutable audit record.
type Event struct {
	ID             string          `json:"id"`
	EventType      EventType       `json:"event_type"`
	ConversationID string          `json:"conversation_id"`
	Details        json.RawMessage `json:"details,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Recorder accepts audit events. Implementations must never block message
// processing on failure; callers log and continue.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Service writes audit events to Postgres.
type Service struct {
	db *sql.DB
}

// NewService creates an audit service over an open database handle.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (s *Service) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS verification_audit_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			details JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("audit: failed to ensure schema: %w", err)
	}
	return nil
}

// Record stores one audit event.
func (s *Service) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO verification_audit_events (
			id, event_type, conversation_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.ConversationID,
		event.Details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to record event: %w", err)
	}
	return nil
}

// Detail marshals key/value details for an event, ignoring marshal errors
// (the event is still recorded without details).
func Detail(kv map[string]any) json.RawMessage {
	if len(kv) == 0 {
		return nil
	}
	data, err := json.Marshal(kv)
	if err != nil {
		return nil
	}
	return data
}

// Nop is a Recorder that discards events, used when no database is
// configured.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Event) error { return nil }
