package metrics

import "github.com/prometheus/client_golang/prometheus"

// VerificationMetrics exposes counters/histograms for the identity flow and
// post-verification intent handling.
type VerificationMetrics struct {
	attemptsTotal  *prometheus.CounterVec
	verifiedTotal  prometheus.Counter
	lockedTotal    prometheus.Counter
	intentTotal    *prometheus.CounterVec
	llmFallback    *prometheus.CounterVec
	processLatency prometheus.Histogram
}

func NewVerificationMetrics(reg prometheus.Registerer) *VerificationMetrics {
	m := &VerificationMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bankshash",
			Subsystem: "verification",
			Name:      "attempts_total",
			Help:      "Verification validation attempts by outcome",
		}, []string{"outcome"}),
		verifiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bankshash",
			Subsystem: "verification",
			Name:      "sessions_verified_total",
			Help:      "Sessions that completed identity verification",
		}),
		lockedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bankshash",
			Subsystem: "verification",
			Name:      "sessions_locked_total",
			Help:      "Sessions locked after exhausting retries",
		}),
		intentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bankshash",
			Subsystem: "support",
			Name:      "intent_total",
			Help:      "Post-verification intents handled",
		}, []string{"intent"}),
		llmFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bankshash",
			Subsystem: "support",
			Name:      "llm_fallback_total",
			Help:      "Messages answered by the chat-completion backend",
		}, []string{"status"}),
		processLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bankshash",
			Subsystem: "support",
			Name:      "process_latency_seconds",
			Help:      "Latency of one conversation turn",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.verifiedTotal, m.lockedTotal, m.intentTotal, m.llmFallback, m.processLatency)
	return m
}

func (m *VerificationMetrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *VerificationMetrics) ObserveVerified() {
	if m == nil {
		return
	}
	m.verifiedTotal.Inc()
}

func (m *VerificationMetrics) ObserveLocked() {
	if m == nil {
		return
	}
	m.lockedTotal.Inc()
}

func (m *VerificationMetrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.intentTotal.WithLabelValues(intent).Inc()
}

func (m *VerificationMetrics) ObserveLLMFallback(status string) {
	if m == nil {
		return
	}
	m.llmFallback.WithLabelValues(status).Inc()
}

func (m *VerificationMetrics) ObserveProcessLatency(seconds float64) {
	if m == nil {
		return
	}
	m.processLatency.Observe(seconds)
}
