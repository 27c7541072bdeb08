// Package webchat is the WebSocket gateway for the support widget. Inbound
// messages are enqueued as jobs; replies come back through the worker and are
// pushed to whichever connection holds the session.
package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// Publisher enqueues conversation jobs.
type Publisher interface {
	EnqueueMessage(ctx context.Context, jobID string, req conversation.MessageRequest) error
}

// Handler manages web chat connections and messages.
type Handler struct {
	publisher Publisher
	greeting  string
	logger    *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // conversationID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string `json:"type"` // "message", "typing", "session", "pong", "error"
	Text      string `json:"text,omitempty"`
	Role      string `json:"role,omitempty"` // "assistant" or "user"
	State     string `json:"state,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler. The greeting is sent to every new
// connection before any message is processed.
func NewHandler(publisher Publisher, greeting string, logger *logging.Logger) *Handler {
	if publisher == nil {
		panic("webchat: publisher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		publisher: publisher,
		greeting:  greeting,
		logger:    logger,
		sessions:  make(map[string]*wsConn),
	}
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	fresh := sessionID == ""
	if fresh {
		sessionID = uuid.NewString()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})
	if fresh {
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      h.greeting,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), sessionID, msg.Text)
	}
}

func (h *Handler) processMessage(ctx context.Context, sessionID, text string) {
	h.SendToSession(sessionID, OutboundMessage{Type: "typing"})

	req := conversation.MessageRequest{
		ConversationID: sessionID,
		Message:        text,
	}
	if err := h.publisher.EnqueueMessage(ctx, uuid.NewString(), req); err != nil {
		h.logger.Error("webchat: failed to enqueue message", "session_id", sessionID, "error", err)
		h.SendToSession(sessionID, OutboundMessage{
			Type: "error",
			Text: "Sorry, something went wrong. Please try again.",
		})
	}
}

// SendToSession sends a message to an active WebSocket session.
func (h *Handler) SendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleMessage is the HTTP fallback for clients without WebSocket support.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	h.processMessage(r.Context(), req.SessionID, req.Text)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":     "queued",
		"session_id": req.SessionID,
	})
}
