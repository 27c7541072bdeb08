// Package intent recognizes post-verification support intents and produces
// account-specific responses. It must only be consulted once a session is
// verified; the orchestrator enforces that gate.
package intent

import (
	"fmt"
	"strings"

	"github.com/bankofshash/support-ai/internal/directory"
)

// Intent is a recognized category of account-specific request.
type Intent string

const (
	IntentBalance     Intent = "balance"
	IntentLostStolen  Intent = "lost_stolen_card"
	IntentFraud       Intent = "fraud"
	IntentMortgage    Intent = "mortgage"
	IntentAppointment Intent = "appointment"
	IntentUnknown     Intent = "unknown"
)

// intentKeywords maps each intent to the phrases that trigger it. First
// match in declaration order wins, so fraud outranks the generic card terms.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentFraud, []string{"fraud", "unauthorised", "unauthorized", "didn't make", "didnt make", "scam", "suspicious transaction"}},
	{IntentLostStolen, []string{"lost my card", "stolen", "lost card", "misplaced my card", "card is missing", "block my card"}},
	{IntentBalance, []string{"balance", "how much money", "how much do i have", "funds in my account"}},
	{IntentMortgage, []string{"mortgage", "home loan", "house loan"}},
	{IntentAppointment, []string{"appointment", "book a meeting", "visit a branch", "branch visit", "speak to someone in person"}},
}

// Classify maps one utterance to an intent. Pure function; unrecognized
// requests return IntentUnknown so the caller can defer to the chat backend.
func Classify(text string) Intent {
	lowered := strings.ToLower(text)
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.intent
			}
		}
	}
	return IntentUnknown
}

// Respond builds the canned account-specific reply for an intent using the
// verified customer's record. IntentUnknown returns an empty reply so the
// orchestrator falls through to the chat backend.
func Respond(in Intent, rec *directory.CustomerRecord) string {
	if rec == nil {
		return ""
	}
	switch in {
	case IntentBalance:
		return fmt.Sprintf("Your current account balance is %s. Is there anything else I can help with?", rec.Balance())
	case IntentLostStolen:
		if rec.LostStolenFlowActive {
			return fmt.Sprintf("I'm sorry to hear that, %s. I can see a lost/stolen report is already open on your account — your old card ending in %s stays blocked and the replacement is on its way. You'll receive it within 5 working days.", rec.FullName, rec.Last4)
		}
		return fmt.Sprintf("I'm sorry to hear that, %s. I've blocked the card ending in %s right away and ordered a replacement to your registered address. It should arrive within 5 working days.", rec.FullName, rec.Last4)
	case IntentFraud:
		return fmt.Sprintf("Thanks for flagging this, %s. I've placed a temporary hold on the card ending in %s and raised a case with our fraud team. They'll call you within 24 hours; no suspected transactions will settle in the meantime.", rec.FullName, rec.Last4)
	case IntentMortgage:
		return "I'd be happy to help with mortgage queries. Our current advertised rates start at 4.1% APR for a 25-year fixed term. Would you like me to book a call with a mortgage adviser?"
	case IntentAppointment:
		return "Of course. Our branch advisers have openings on weekdays between 9am and 5pm. Which day suits you, and do you prefer morning or afternoon?"
	default:
		return ""
	}
}
