// Package worker moves chat messages from transports onto a job queue and
// drains them through the conversation orchestrator, so slow LLM turns never
// block a WebSocket read loop.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bankofshash/support-ai/internal/conversation"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type queuePayload struct {
	ID      string                      `json:"id"`
	Message conversation.MessageRequest `json:"message"`
}

// Publisher enqueues conversation jobs for async processing.
type Publisher struct {
	client queueClient
}

// NewPublisher wraps a queue client.
func NewPublisher(client queueClient) *Publisher {
	if client == nil {
		panic("worker: queue client cannot be nil")
	}
	return &Publisher{client: client}
}

// EnqueueMessage publishes one inbound chat message as a job.
func (p *Publisher) EnqueueMessage(ctx context.Context, jobID string, req conversation.MessageRequest) error {
	if jobID == "" {
		jobID = uuid.NewString()
	}
	body, err := json.Marshal(queuePayload{ID: jobID, Message: req})
	if err != nil {
		return fmt.Errorf("worker: failed to encode job: %w", err)
	}
	if err := p.client.Send(ctx, string(body)); err != nil {
		return fmt.Errorf("worker: failed to enqueue job: %w", err)
	}
	return nil
}
