package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankofshash/support-ai/internal/audit"
	"github.com/bankofshash/support-ai/internal/directory"
	"github.com/bankofshash/support-ai/internal/verification"
	"github.com/bankofshash/support-ai/pkg/logging"
)

type fakeLLM struct {
	calls       int
	reply       string
	err         error
	lastReq     LLMRequest
	hadDeadline bool
}

func (f *fakeLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	f.calls++
	f.lastReq = req
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return LLMResponse{}, f.err
	}
	return LLMResponse{Text: f.reply}, nil
}

type fakeNotifier struct {
	locked []string
}

func (f *fakeNotifier) NotifyLockout(_ context.Context, conversationID string) error {
	f.locked = append(f.locked, conversationID)
	return nil
}

type fakeRecorder struct {
	events []audit.Event
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRecorder) types() []audit.EventType {
	out := make([]audit.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.EventType
	}
	return out
}

func newTestOrchestrator(t *testing.T, opts ...OrchestratorOption) *Orchestrator {
	t.Helper()
	flow := verification.NewFlow(directory.Seed())
	return NewOrchestrator(flow, verification.NewMemorySessionStore(), logging.New("error"), opts...)
}

func send(t *testing.T, o *Orchestrator, convID, msg string) *Response {
	t.Helper()
	resp, err := o.ProcessMessage(context.Background(), MessageRequest{ConversationID: convID, Message: msg})
	require.NoError(t, err)
	return resp
}

func verify(t *testing.T, o *Orchestrator, convID string) {
	t.Helper()
	send(t, o, convID, "Hi, I'm John Cena, account number 100200300, last 4 digits 1234, born 3/11/2000")
}

func TestProcessMessageRequiresConversationID(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.ProcessMessage(context.Background(), MessageRequest{Message: "hi"})
	assert.Error(t, err)
}

func TestLLMNeverInvokedDuringVerification(t *testing.T) {
	llm := &fakeLLM{reply: "should not appear"}
	o := newTestOrchestrator(t, WithLLM(llm))

	send(t, o, "conv1", "what's my balance?")
	send(t, o, "conv1", "tell me about compound interest")
	send(t, o, "conv1", "John Cena")

	assert.Zero(t, llm.calls)
}

func TestIntentsGatedUntilVerified(t *testing.T) {
	o := newTestOrchestrator(t)

	resp := send(t, o, "conv1", "what's my balance?")
	assert.NotContains(t, resp.Message, "$", "balance must not leak before verification")
	assert.Equal(t, string(verification.StateAwaitName), resp.State)

	verify(t, o, "conv1")
	resp = send(t, o, "conv1", "what's my balance?")
	assert.Contains(t, resp.Message, "$4520.75")
	assert.Equal(t, string(verification.StateVerified), resp.State)
}

func TestLockedSessionsGetRefusalOnly(t *testing.T) {
	llm := &fakeLLM{reply: "nope"}
	notifier := &fakeNotifier{}
	o := newTestOrchestrator(t, WithLLM(llm), WithNotifier(notifier))

	send(t, o, "conv1", "John Cena")
	send(t, o, "conv1", "account number 55555")
	send(t, o, "conv1", "1234")
	send(t, o, "conv1", "1/1/1990")
	resp := send(t, o, "conv1", "2/2/1990")
	assert.Equal(t, string(verification.StateLocked), resp.State)
	assert.Equal(t, []string{"conv1"}, notifier.locked)

	refusal := resp.Message
	for _, msg := range []string{"what's my balance?", "please", "John Cena 1234 3/11/2000"} {
		resp = send(t, o, "conv1", msg)
		assert.Equal(t, refusal, resp.Message)
	}
	assert.Zero(t, llm.calls)
}

func TestVerifiedGeneralQuestionFallsThroughToLLM(t *testing.T) {
	llm := &fakeLLM{reply: "A bond is a loan you make to an issuer."}
	o := newTestOrchestrator(t, WithLLM(llm))

	verify(t, o, "conv1")
	resp := send(t, o, "conv1", "what is a bond?")

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "A bond is a loan you make to an issuer.", resp.Message)
}

func TestLLMParamsAppliedToFallback(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	o := newTestOrchestrator(t, WithLLM(llm), WithLLMParams(256, 0.9, time.Minute))

	verify(t, o, "conv1")
	send(t, o, "conv1", "what is a bond?")

	assert.Equal(t, int32(256), llm.lastReq.MaxTokens)
	assert.InDelta(t, 0.9, float64(llm.lastReq.Temperature), 1e-6)
	assert.True(t, llm.hadDeadline, "fallback call must carry a timeout")
}

func TestLLMParamsDefaultsWhenUnset(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	o := newTestOrchestrator(t, WithLLM(llm), WithLLMParams(0, -1, 0))

	verify(t, o, "conv1")
	send(t, o, "conv1", "what is a bond?")

	assert.Equal(t, int32(512), llm.lastReq.MaxTokens)
	assert.InDelta(t, 0.2, float64(llm.lastReq.Temperature), 1e-6)
	assert.True(t, llm.hadDeadline)
}

func TestLLMFailureDegradesGracefully(t *testing.T) {
	llm := &fakeLLM{err: errors.New("backend down")}
	o := newTestOrchestrator(t, WithLLM(llm))

	verify(t, o, "conv1")
	resp := send(t, o, "conv1", "what is a bond?")
	assert.Equal(t, llmUnavailableReply, resp.Message)
}

func TestNoLLMConfiguredDegradesGracefully(t *testing.T) {
	o := newTestOrchestrator(t)
	verify(t, o, "conv1")
	resp := send(t, o, "conv1", "what is a bond?")
	assert.Equal(t, llmUnavailableReply, resp.Message)
}

func TestAuditTrailCoversLifecycle(t *testing.T) {
	rec := &fakeRecorder{}
	o := newTestOrchestrator(t, WithAudit(rec))

	verify(t, o, "conv1")
	send(t, o, "conv1", "what's my balance?")

	assert.Equal(t, []audit.EventType{
		audit.EventVerificationStarted,
		audit.EventFieldCaptured,
		audit.EventSessionVerified,
		audit.EventIntentHandled,
	}, rec.types())

	// Field-capture details name the fields but never carry their values.
	assert.JSONEq(t, `{"fields":["name","account","last4","dob"]}`, string(rec.events[1].Details))
}

func TestAuditTrailRecordsFailedAttempts(t *testing.T) {
	rec := &fakeRecorder{}
	o := newTestOrchestrator(t, WithAudit(rec))

	send(t, o, "conv1", "John Cena")
	send(t, o, "conv1", "55555")
	send(t, o, "conv1", "9999") // wrong last-4
	send(t, o, "conv1", "9998") // wrong again: locked

	// Mismatching last-4 candidates are cleared inside the flow, so no
	// field-capture event is booked for them.
	assert.Equal(t, []audit.EventType{
		audit.EventVerificationStarted,
		audit.EventFieldCaptured, // name
		audit.EventFieldCaptured, // account
		audit.EventAttemptFailed,
		audit.EventAttemptFailed,
		audit.EventSessionLocked,
	}, rec.types())
}

func TestConcurrentConversationsAreIsolated(t *testing.T) {
	o := newTestOrchestrator(t)

	verify(t, o, "conv-a")
	resp := send(t, o, "conv-b", "what's my balance?")

	assert.Equal(t, string(verification.StateAwaitName), resp.State)
	sessA, err := o.SessionState(context.Background(), "conv-a")
	require.NoError(t, err)
	assert.True(t, sessA.Verified())
}

func TestLLMContextRetainedAcrossTurns(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	store := NewMemoryHistoryStore()
	o := newTestOrchestrator(t, WithLLM(llm), WithHistory(store))

	verify(t, o, "conv1")
	send(t, o, "conv1", "what is a bond?")
	send(t, o, "conv1", "and a perpetuity?")

	history, err := store.Load(context.Background(), "conv1")
	require.NoError(t, err)
	// Two user turns and two assistant turns.
	assert.Len(t, history, 4)
}
