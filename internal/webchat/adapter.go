package webchat

import (
	"context"
	"time"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// ReplyMessenger pushes orchestrator replies back through the WebSocket
// connection that owns the conversation.
type ReplyMessenger struct {
	handler *Handler
	logger  *logging.Logger
}

// NewReplyMessenger creates a webchat reply messenger.
func NewReplyMessenger(handler *Handler, logger *logging.Logger) *ReplyMessenger {
	if handler == nil {
		panic("webchat: handler cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReplyMessenger{handler: handler, logger: logger}
}

// SendReply delivers one reply to the visitor's WebSocket.
func (m *ReplyMessenger) SendReply(_ context.Context, resp *conversation.Response) error {
	m.handler.SendToSession(resp.ConversationID, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      resp.Message,
		State:     resp.State,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	m.logger.Info("webchat: reply sent",
		"conversation_id", resp.ConversationID,
		"state", resp.State,
		"length", len(resp.Message),
	)
	return nil
}
