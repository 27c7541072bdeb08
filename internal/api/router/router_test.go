package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/internal/directory"
	"github.com/bankofshash/support-ai/internal/http/handlers"
	"github.com/bankofshash/support-ai/internal/verification"
	"github.com/bankofshash/support-ai/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.New("error")
	flow := verification.NewFlow(directory.Seed())
	orch := conversation.NewOrchestrator(flow, verification.NewMemorySessionStore(), logger)
	return New(&Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(orch, logger),
		TutorHandler:       handlers.NewTutorHandler(logger),
		AdminSessions:      handlers.NewAdminSessionsHandler(orch, logger),
		HealthHandler:      handlers.NewHealthHandler("support-ai"),
		AdminAuthSecret:    "test-secret",
		CORSAllowedOrigins: []string{"https://bankofshash.com"},
	})
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatRouteEndToEnd(t *testing.T) {
	r := newTestRouter(t)

	send := func(convID, msg string) conversation.Response {
		body, err := json.Marshal(handlers.ChatRequest{ConversationID: convID, Message: msg})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp conversation.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	resp := send("conv-router", "Hi, this is John Cena")
	assert.Equal(t, "await_account", resp.State)

	resp = send("conv-router", "my account number is 777123456")
	assert.Equal(t, "await_last4", resp.State)

	resp = send("conv-router", "the last 4 digits are 1234")
	assert.Equal(t, "await_dob", resp.State)

	resp = send("conv-router", "3rd November 2000")
	assert.Equal(t, "verified", resp.State)
}

func TestAdminRouteRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/sessions/conv-x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/admin/sessions/conv-x", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSAppliedToConfiguredOrigins(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://bankofshash.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://bankofshash.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTutorRoute(t *testing.T) {
	r := newTestRouter(t)

	body := bytes.NewReader([]byte(`{"face":1000,"coupon_rate":0.05,"yield":0.05,"years":5}`))
	req := httptest.NewRequest(http.MethodPost, "/api/tutor/bond", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 1000, resp["price"], 1e-6)
}
