package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// AdminSessionsHandler exposes verification-session state for support staff.
type AdminSessionsHandler struct {
	orchestrator *conversation.Orchestrator
	logger       *logging.Logger
}

// NewAdminSessionsHandler creates an admin sessions handler.
func NewAdminSessionsHandler(orchestrator *conversation.Orchestrator, logger *logging.Logger) *AdminSessionsHandler {
	if orchestrator == nil {
		panic("handlers: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSessionsHandler{orchestrator: orchestrator, logger: logger}
}

// SessionResponse is the admin view of a verification session. Candidate
// identity fields are deliberately omitted.
type SessionResponse struct {
	ConversationID string `json:"conversation_id"`
	State          string `json:"state"`
	AttemptCount   int    `json:"attempt_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// GetSession handles GET /admin/sessions/{conversationID}.
func (h *AdminSessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation id required")
		return
	}

	sess, err := h.orchestrator.SessionState(r.Context(), conversationID)
	if err != nil {
		h.logger.Error("session lookup failed", "conversation_id", conversationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		ConversationID: sess.ConversationID,
		State:          string(sess.State),
		AttemptCount:   sess.AttemptCount,
		CreatedAt:      sess.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      sess.UpdatedAt.Format(time.RFC3339),
	})
}
