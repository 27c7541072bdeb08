package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bankofshash/support-ai/internal/directory"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"what's my balance?", IntentBalance},
		{"How much money do I have", IntentBalance},
		{"I lost my card yesterday", IntentLostStolen},
		{"my card was stolen", IntentLostStolen},
		{"there's a suspicious transaction I didn't make", IntentFraud},
		{"I want to report fraud on my card", IntentFraud},
		{"tell me about mortgage rates", IntentMortgage},
		{"can I book an appointment", IntentAppointment},
		{"what's the weather like", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.text), "text %q", tt.text)
	}
}

func TestFraudOutranksCardKeywords(t *testing.T) {
	// "stolen" and "fraud" in one message: the fraud flow wins.
	assert.Equal(t, IntentFraud, Classify("my stolen card was used for fraud"))
}

func TestRespondBalance(t *testing.T) {
	rec := &directory.CustomerRecord{FullName: "John Cena", Last4: "1234", BalanceCents: 452075}
	reply := Respond(IntentBalance, rec)
	assert.Contains(t, reply, "$4520.75")
}

func TestRespondLostStolenBranches(t *testing.T) {
	fresh := &directory.CustomerRecord{FullName: "John Cena", Last4: "1234"}
	assert.Contains(t, Respond(IntentLostStolen, fresh), "blocked the card ending in 1234")

	active := &directory.CustomerRecord{FullName: "Sagar Karnik", Last4: "5678", LostStolenFlowActive: true}
	assert.Contains(t, Respond(IntentLostStolen, active), "already open")
}

func TestRespondUnknownIsEmpty(t *testing.T) {
	rec := &directory.CustomerRecord{FullName: "John Cena"}
	assert.Empty(t, Respond(IntentUnknown, rec))
	assert.Empty(t, Respond(IntentBalance, nil))
}
