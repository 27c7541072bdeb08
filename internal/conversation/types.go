package conversation

import (
	"context"
	"time"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of LLM context.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// LLMRequest is a provider-agnostic completion request.
type LLMRequest struct {
	Messages    []ChatMessage
	System      []string
	MaxTokens   int32
	Temperature float32
	TopP        float64
}

// LLMResponse is a provider-agnostic completion response.
type LLMResponse struct {
	Text string
}

// LLMClient abstracts the chat-completion backend. It is only consulted for
// general questions, never while resolving verification state.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// MessageRequest is one inbound user utterance.
type MessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Response is the single reply produced for one inbound message.
type Response struct {
	ConversationID string    `json:"conversation_id"`
	Message        string    `json:"message"`
	State          string    `json:"state"`
	Timestamp      time.Time `json:"timestamp"`
}
