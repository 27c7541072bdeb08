package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestVerificationMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewVerificationMetrics(reg)

	m.ObserveVerified()
	m.ObserveVerified()
	m.ObserveLocked()
	m.ObserveAttempt("mismatch")
	m.ObserveIntent("balance")
	m.ObserveLLMFallback("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.verifiedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attemptsTotal.WithLabelValues("mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.intentTotal.WithLabelValues("balance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmFallback.WithLabelValues("ok")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *VerificationMetrics
	assert.NotPanics(t, func() {
		m.ObserveAttempt("mismatch")
		m.ObserveVerified()
		m.ObserveLocked()
		m.ObserveIntent("balance")
		m.ObserveLLMFallback("error")
		m.ObserveProcessLatency(0.1)
	})
}
