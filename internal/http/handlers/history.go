package handlers

import (
	"net/http"
	"strings"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// HistoryHandler serves a conversation's chat transcript.
type HistoryHandler struct {
	store  conversation.HistoryStore
	logger *logging.Logger
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(store conversation.HistoryStore, logger *logging.Logger) *HistoryHandler {
	if store == nil {
		panic("handlers: history store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HistoryHandler{store: store, logger: logger}
}

// Get handles GET /api/chat/history?conversation_id=...
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := strings.TrimSpace(r.URL.Query().Get("conversation_id"))
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	messages, err := h.store.Load(r.Context(), conversationID)
	if err != nil {
		h.logger.Error("history lookup failed", "conversation_id", conversationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if messages == nil {
		messages = []conversation.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"messages":        messages,
	})
}
