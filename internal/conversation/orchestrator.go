package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bankofshash/support-ai/internal/audit"
	"github.com/bankofshash/support-ai/internal/intent"
	"github.com/bankofshash/support-ai/internal/observability/metrics"
	"github.com/bankofshash/support-ai/internal/verification"
	"github.com/bankofshash/support-ai/pkg/logging"
)

const bankSystemPrompt = `You are the Bank of Shash support assistant. The customer you are talking to has already passed identity verification. Answer general banking and personal-finance questions clearly and briefly. Never invent account data: balances, cards, and transactions are handled by the banking system, not by you. For anything requiring a human decision, direct the customer to our support line.`

const llmUnavailableReply = "I'm sorry, I can't answer that right now. Is there anything account-related I can help with, like your balance or card?"

// maxHistoryMessages bounds the LLM context window per conversation.
const maxHistoryMessages = 20

// llmParams are the completion knobs applied to every fallback call.
type llmParams struct {
	maxTokens   int32
	temperature float32
	timeout     time.Duration
}

func defaultLLMParams() llmParams {
	return llmParams{
		maxTokens:   512,
		temperature: 0.2,
		timeout:     30 * time.Second,
	}
}

// Notifier reports locked-out sessions to a human channel.
type Notifier interface {
	NotifyLockout(ctx context.Context, conversationID string) error
}

// Orchestrator is the single entry point for inbound chat messages. It owns
// the gate between the verification flow and account-specific intent
// handling: intents and the LLM are reachable only for verified sessions,
// and the LLM is never consulted while verification state is being resolved.
type Orchestrator struct {
	flow      *verification.Flow
	sessions  verification.SessionStore
	history   HistoryStore
	llm       LLMClient
	llmParams llmParams
	recorder  audit.Recorder
	notifier  Notifier
	metrics   *metrics.VerificationMetrics
	logger    *logging.Logger
}

// OrchestratorOption configures optional collaborators.
type OrchestratorOption func(*Orchestrator)

// WithLLM sets the chat-completion backend for general questions.
func WithLLM(client LLMClient) OrchestratorOption {
	return func(o *Orchestrator) { o.llm = client }
}

// WithLLMParams overrides the completion knobs for the LLM fallback.
// Non-positive values keep the corresponding default.
func WithLLMParams(maxTokens int, temperature float64, timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if maxTokens > 0 {
			o.llmParams.maxTokens = int32(maxTokens)
		}
		if temperature >= 0 {
			o.llmParams.temperature = float32(temperature)
		}
		if timeout > 0 {
			o.llmParams.timeout = timeout
		}
	}
}

// WithHistory sets the chat-context store used by the LLM fallback.
func WithHistory(store HistoryStore) OrchestratorOption {
	return func(o *Orchestrator) {
		if store != nil {
			o.history = store
		}
	}
}

// WithAudit sets the audit recorder.
func WithAudit(recorder audit.Recorder) OrchestratorOption {
	return func(o *Orchestrator) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// WithNotifier sets the lockout notifier.
func WithNotifier(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithMetrics sets the Prometheus metrics sink.
func WithMetrics(m *metrics.VerificationMetrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator wires the conversation pipeline.
func NewOrchestrator(flow *verification.Flow, sessions verification.SessionStore, logger *logging.Logger, opts ...OrchestratorOption) *Orchestrator {
	if flow == nil {
		panic("conversation: verification flow cannot be nil")
	}
	if sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := &Orchestrator{
		flow:      flow,
		sessions:  sessions,
		history:   NewMemoryHistoryStore(),
		llmParams: defaultLLMParams(),
		recorder:  audit.Nop{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Greeting returns the opening message for a brand-new conversation.
func (o *Orchestrator) Greeting() string {
	return o.flow.Greeting()
}

// SessionState exposes a session's verification state for the admin API.
func (o *Orchestrator) SessionState(ctx context.Context, conversationID string) (*verification.Session, error) {
	return o.sessions.Load(ctx, conversationID)
}

// ProcessMessage consumes one utterance and returns exactly one reply. The
// session is loaded, mutated, and saved here; callers never touch it.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error) {
	start := time.Now()
	defer func() {
		o.metrics.ObserveProcessLatency(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(req.ConversationID) == "" {
		return nil, errors.New("conversation: conversation id required")
	}

	sess, err := o.sessions.Load(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = verification.NewSession(req.ConversationID)
		o.record(ctx, audit.EventVerificationStarted, req.ConversationID, nil)
	}

	var reply string
	if sess.Verified() {
		reply = o.handleVerified(ctx, sess, req.Message)
	} else {
		reply = o.handleVerifying(ctx, sess, req.Message)
	}

	if err := o.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &Response{
		ConversationID: req.ConversationID,
		Message:        reply,
		State:          string(sess.State),
		Timestamp:      time.Now().UTC(),
	}, nil
}

// handleVerifying advances the verification flow and books the outcome.
func (o *Orchestrator) handleVerifying(ctx context.Context, sess *verification.Session, message string) string {
	prevState := sess.State
	prevAttempts := sess.AttemptCount
	prevFields := capturedFields(sess)

	reply := o.flow.Process(sess, message)

	if captured := newlyCaptured(prevFields, capturedFields(sess)); len(captured) > 0 {
		o.record(ctx, audit.EventFieldCaptured, sess.ConversationID, audit.Detail(map[string]any{
			"fields": captured,
		}))
	}

	if sess.AttemptCount > prevAttempts {
		o.metrics.ObserveAttempt("mismatch")
		o.record(ctx, audit.EventAttemptFailed, sess.ConversationID, audit.Detail(map[string]any{
			"state":    string(sess.State),
			"attempts": sess.AttemptCount,
		}))
	}

	switch {
	case sess.Verified() && prevState != verification.StateVerified:
		o.metrics.ObserveVerified()
		o.record(ctx, audit.EventSessionVerified, sess.ConversationID, audit.Detail(map[string]any{
			"attempts": sess.AttemptCount,
		}))
	case sess.Locked() && prevState != verification.StateLocked:
		o.metrics.ObserveLocked()
		o.record(ctx, audit.EventSessionLocked, sess.ConversationID, audit.Detail(map[string]any{
			"attempts": sess.AttemptCount,
		}))
		if o.notifier != nil {
			if err := o.notifier.NotifyLockout(ctx, sess.ConversationID); err != nil {
				o.logger.Error("lockout notification failed", "conversation_id", sess.ConversationID, "error", err)
			}
		}
	}
	return reply
}

// handleVerified dispatches account intents and falls back to the LLM.
func (o *Orchestrator) handleVerified(ctx context.Context, sess *verification.Session, message string) string {
	rec, ok := o.flow.MatchedRecord(sess)
	if !ok {
		// The record vanished from the directory; treat as unrecoverable for
		// account-specific handling but keep the conversation alive.
		o.logger.Warn("verified session has no directory record", "conversation_id", sess.ConversationID)
		return llmUnavailableReply
	}

	in := intent.Classify(message)
	if canned := intent.Respond(in, rec); canned != "" {
		o.metrics.ObserveIntent(string(in))
		o.record(ctx, audit.EventIntentHandled, sess.ConversationID, audit.Detail(map[string]any{
			"intent": string(in),
		}))
		return canned
	}

	return o.llmFallback(ctx, sess.ConversationID, message)
}

// llmFallback answers a general question through the chat-completion
// backend, with Redis-held context. Backend failure degrades to a fixed
// reply; it never fails the turn.
func (o *Orchestrator) llmFallback(ctx context.Context, conversationID, message string) string {
	if o.llm == nil {
		o.metrics.ObserveLLMFallback("disabled")
		return llmUnavailableReply
	}

	history, err := o.history.Load(ctx, conversationID)
	if err != nil {
		o.logger.Error("failed to load chat history", "conversation_id", conversationID, "error", err)
		history = nil
	}
	history = append(history, ChatMessage{Role: ChatRoleUser, Content: message})
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	llmCtx, cancel := context.WithTimeout(ctx, o.llmParams.timeout)
	defer cancel()
	resp, err := o.llm.Complete(llmCtx, LLMRequest{
		Messages:    history,
		System:      []string{bankSystemPrompt},
		MaxTokens:   o.llmParams.maxTokens,
		Temperature: o.llmParams.temperature,
	})
	if err != nil {
		o.metrics.ObserveLLMFallback("error")
		o.logger.Error("llm completion failed", "conversation_id", conversationID, "error", err)
		return llmUnavailableReply
	}
	o.metrics.ObserveLLMFallback("ok")

	history = append(history, ChatMessage{Role: ChatRoleAssistant, Content: resp.Text})
	if err := o.history.Save(ctx, conversationID, history); err != nil {
		o.logger.Error("failed to save chat history", "conversation_id", conversationID, "error", err)
	}
	return resp.Text
}

// capturedFields reports which candidate fields a session currently holds.
// Field names only; captured values never leave the session.
func capturedFields(sess *verification.Session) map[string]bool {
	return map[string]bool{
		"name":    sess.CandidateName != "",
		"account": sess.CandidateAccount != "",
		"last4":   sess.CandidateLast4 != "",
		"dob":     sess.CandidateDOB != "",
	}
}

func newlyCaptured(before, after map[string]bool) []string {
	var captured []string
	for _, field := range []string{"name", "account", "last4", "dob"} {
		if after[field] && !before[field] {
			captured = append(captured, field)
		}
	}
	return captured
}

func (o *Orchestrator) record(ctx context.Context, eventType audit.EventType, conversationID string, details []byte) {
	err := o.recorder.Record(ctx, audit.Event{
		EventType:      eventType,
		ConversationID: conversationID,
		Details:        details,
	})
	if err != nil {
		o.logger.Error("audit record failed", "event_type", string(eventType), "conversation_id", conversationID, "error", err)
	}
}
