package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/internal/directory"
	"github.com/bankofshash/support-ai/internal/verification"
	"github.com/bankofshash/support-ai/pkg/logging"
)

func newTestChatHandler(t *testing.T) *ChatHandler {
	t.Helper()
	flow := verification.NewFlow(directory.Seed())
	orch := conversation.NewOrchestrator(flow, verification.NewMemorySessionStore(), logging.Default())
	return NewChatHandler(orch, logging.Default())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestChatStart(t *testing.T) {
	h := newTestChatHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/start", nil)
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ConversationID)
	assert.Contains(t, resp.Message, "full name")
}

func TestChatMessageStartsVerification(t *testing.T) {
	h := newTestChatHandler(t)

	rec := postJSON(t, h.Message, ChatRequest{Message: "hello, I need help"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp conversation.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, "await_name", resp.State)
}

func TestChatMessageKeepsConversationID(t *testing.T) {
	h := newTestChatHandler(t)

	rec := postJSON(t, h.Message, ChatRequest{ConversationID: "conv-42", Message: "John Cena"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp conversation.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conv-42", resp.ConversationID)
	assert.Equal(t, "await_account", resp.State)
}

func TestChatMessageRejectsEmptyMessage(t *testing.T) {
	h := newTestChatHandler(t)

	rec := postJSON(t, h.Message, ChatRequest{ConversationID: "conv-42", Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatMessageRejectsBadJSON(t *testing.T) {
	h := newTestChatHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Message(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
