package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// ChatHandler exposes the support conversation over HTTP.
type ChatHandler struct {
	orchestrator *conversation.Orchestrator
	logger       *logging.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(orchestrator *conversation.Orchestrator, logger *logging.Logger) *ChatHandler {
	if orchestrator == nil {
		panic("handlers: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{orchestrator: orchestrator, logger: logger}
}

// ChatRequest is the POST /api/chat body. ConversationID is optional; a new
// conversation is opened when it is empty.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// StartResponse is the POST /api/chat/start body: a fresh conversation ID and
// the opening greeting.
type StartResponse struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Start opens a new conversation and returns the greeting.
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StartResponse{
		ConversationID: uuid.NewString(),
		Message:        h.orchestrator.Greeting(),
	})
}

// Message processes one inbound chat message and returns the single reply.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if strings.TrimSpace(req.ConversationID) == "" {
		req.ConversationID = uuid.NewString()
	}

	resp, err := h.orchestrator.ProcessMessage(r.Context(), conversation.MessageRequest{
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		h.logger.Error("chat processing failed", "conversation_id", req.ConversationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
