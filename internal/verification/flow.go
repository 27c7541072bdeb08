// Package verification implements the identity-verification flow that gates
// account-specific support: a sequential collection of the caller's name,
// account number, card last-4, and date of birth, validated against the
// customer directory with a bounded retry budget.
package verification

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bankofshash/support-ai/internal/directory"
)

// DefaultMaxRetries permits one retry, i.e. two total validation attempts.
const DefaultMaxRetries = 1

const (
	promptName    = "Before I can help with your account, I need to verify your identity. Could you share your full name as it appears on the account?"
	repromptName  = "I didn't catch a name I recognize. Could you share your full name exactly as it appears on the account?"
	promptAccount = "Thanks, %s. What's your account number?"
	repromptAcct  = "I still need your account number. Could you type it for me?"
	promptLast4   = "Got it. What are the last 4 digits of your debit card?"
	repromptLast4 = "I still need the last 4 digits of your debit card."
	promptDOB     = "Almost there. What's your date of birth? You can write it like 3/11/2000 or 3rd November 2000."
	repromptDOB   = "I still need your date of birth, for example 3/11/2000 or 3rd November 2000."
	verifiedReply = "Thanks %s, you're verified. How can I help you today?"
)

// Flow drives verification sessions against a customer directory. It is
// stateless between calls; all per-conversation state lives in the Session.
type Flow struct {
	dir          directory.Directory
	maxRetries   int
	supportPhone string
}

// Option configures a Flow.
type Option func(*Flow)

// WithMaxRetries overrides the retry budget (failed final-validation
// attempts beyond the first allowed before locking).
func WithMaxRetries(n int) Option {
	return func(f *Flow) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithSupportPhone sets the human-support number quoted in the refusal
// message.
func WithSupportPhone(phone string) Option {
	return func(f *Flow) {
		if phone != "" {
			f.supportPhone = phone
		}
	}
}

// NewFlow creates a verification flow over a read-only directory.
func NewFlow(dir directory.Directory, opts ...Option) *Flow {
	if dir == nil {
		panic("verification: directory cannot be nil")
	}
	f := &Flow{
		dir:          dir,
		maxRetries:   DefaultMaxRetries,
		supportPhone: "1800-SHASH-BANK",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Greeting is the opening line for a brand-new session.
func (f *Flow) Greeting() string {
	return promptName
}

// LockedReply is the fixed refusal-and-referral message a locked session
// returns for any input.
func (f *Flow) LockedReply() string {
	return fmt.Sprintf("I'm sorry, I couldn't verify your identity, so I'm unable to help with this account. Please call our support team on %s for assistance.", f.supportPhone)
}

// MatchedRecord resolves the directory record for a verified session.
func (f *Flow) MatchedRecord(s *Session) (*directory.CustomerRecord, bool) {
	if s == nil || !s.Verified() || s.MatchedName == "" {
		return nil, false
	}
	return f.dir.Lookup(s.MatchedName)
}

// Process consumes one inbound utterance, mutates the session in place, and
// returns exactly one reply. Malformed input never errors; it simply fails
// to populate a candidate field and re-prompts. Fields are captured
// opportunistically from any message, so one utterance carrying several
// fields can advance several states in the same call.
func (f *Flow) Process(s *Session, utterance string) string {
	if s == nil {
		panic("verification: session cannot be nil")
	}
	s.UpdatedAt = time.Now().UTC()

	if s.Locked() {
		return f.LockedReply()
	}
	if s.Verified() {
		rec, _ := f.MatchedRecord(s)
		name := s.MatchedName
		if rec != nil {
			name = rec.FullName
		}
		return fmt.Sprintf("You're already verified, %s. How can I help?", name)
	}

	fields := Extract(utterance, f.dir.Names(), ExtractOptions{
		ExpectingAccount: s.State == StateAwaitAccount,
		ExpectingLast4:   s.State == StateAwaitLast4,
	})
	if fields.Name != "" {
		s.CandidateName = fields.Name
	}
	if fields.Account != "" {
		s.CandidateAccount = fields.Account
	}
	if fields.Last4 != "" {
		s.CandidateLast4 = fields.Last4
	}
	if fields.DOB != "" {
		s.CandidateDOB = fields.DOB
	}

	// Walk forward through as many states as the captured candidates
	// satisfy; each iteration either advances or returns a prompt.
	for {
		switch s.State {
		case StateAwaitName:
			if s.CandidateName == "" {
				return repromptName
			}
			s.State = StateAwaitAccount

		case StateAwaitAccount:
			if s.CandidateAccount == "" {
				return fmt.Sprintf(promptAccount, displayName(f.dir, s.CandidateName))
			}
			// The account number is deliberately never checked against
			// the directory; any digit string advances the flow.
			s.State = StateAwaitLast4

		case StateAwaitLast4:
			if s.CandidateLast4 == "" {
				return promptLast4
			}
			rec, ok := f.dir.Lookup(s.CandidateName)
			if !ok {
				// No record to validate against yet; re-collect the name
				// without consuming a retry.
				s.CandidateName = ""
				s.State = StateAwaitName
				return repromptName
			}
			if s.CandidateLast4 != rec.Last4 {
				s.CandidateLast4 = ""
				reply, _ := f.consumeRetry(s, "the last 4 digits don't match our records")
				return reply
			}
			s.State = StateAwaitDOB

		case StateAwaitDOB:
			if s.CandidateDOB == "" {
				return promptDOB
			}
			rec, ok := f.dir.Lookup(s.CandidateName)
			if !ok {
				s.CandidateName = ""
				s.State = StateAwaitName
				return repromptName
			}
			last4OK := s.CandidateLast4 == rec.Last4
			dobOK := DOBEqual(s.CandidateDOB, rec.DateOfBirth)
			if last4OK && dobOK {
				s.State = StateVerified
				s.MatchedName = directory.NormalizeName(rec.FullName)
				return fmt.Sprintf(verifiedReply, rec.FullName)
			}
			s.CandidateDOB = ""
			reply, _ := f.consumeRetry(s, mismatchDetail(last4OK, dobOK))
			return reply

		default:
			return repromptName
		}
	}
}

// consumeRetry books a failed validation attempt and returns either the
// mismatch message or, once the budget is exhausted, the lock message.
func (f *Flow) consumeRetry(s *Session, detail string) (string, bool) {
	s.AttemptCount++
	if s.AttemptCount > f.maxRetries {
		s.State = StateLocked
		return f.LockedReply(), true
	}
	return fmt.Sprintf("I'm sorry, %s. Let's try once more.", detail), false
}

// mismatchDetail names only the mismatching subset, never the stored values.
func mismatchDetail(last4OK, dobOK bool) string {
	switch {
	case !last4OK && !dobOK:
		return "the last 4 digits and date of birth don't match our records"
	case !last4OK:
		return "the last 4 digits don't match our records"
	default:
		return "the date of birth doesn't match our records"
	}
}

func displayName(dir directory.Directory, candidate string) string {
	if rec, ok := dir.Lookup(candidate); ok {
		return rec.FullName
	}
	// Candidates always come from the directory name set, so this path only
	// covers a record removed between extraction and prompt.
	words := strings.Fields(candidate)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
