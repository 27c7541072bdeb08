package verification

import (
	"regexp"
	"strings"
)

// Fields holds whatever the extractor recognized in one utterance. Empty
// strings mean the field was not present; absence is never an error.
type Fields struct {
	Name    string
	Account string
	Last4   string
	DOB     string
}

// ExtractOptions tells the extractor which field the flow is currently
// soliciting, which widens what a bare digit-only message may mean.
type ExtractOptions struct {
	ExpectingAccount bool
	ExpectingLast4   bool
}

var (
	accountCueRE = regexp.MustCompile(`(?i)(?:account\s*(?:number|no\.?|#)?|acct\.?\s*(?:no\.?|#)?|a/c)\s*(?:is|:)?\s*(\d+)`)
	last4CueRE   = regexp.MustCompile(`(?i)(?:last\s*(?:4|four)\s*(?:digits?)?|ending\s*(?:in|with)|xxxx)\D*?(\d{4})(?:\D|$)`)
	bareDigitsRE = regexp.MustCompile(`^\d+$`)

	numericDOBInTextRE = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{4}\b`)
	verbalDOBInTextRE  = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`)
)

// Extract recognizes zero or more of {name, account number, card last-4,
// date of birth} in one free-text utterance. Names are matched against the
// injected directory name set (already normalized); there is no fuzzy
// matching. All fields are captured independently of verification order.
func Extract(text string, names []string, opts ExtractOptions) Fields {
	var f Fields

	normalized := collapseSpace(strings.ToLower(text))
	for _, name := range names {
		if name != "" && strings.Contains(normalized, name) {
			f.Name = name
			break
		}
	}

	trimmed := strings.TrimSpace(text)
	bareDigits := bareDigitsRE.MatchString(trimmed)

	if m := accountCueRE.FindStringSubmatch(text); m != nil {
		f.Account = m[1]
	} else if opts.ExpectingAccount && bareDigits && len(trimmed) >= 4 {
		// Any digit string offered while the account number is being
		// solicited counts; account numbers are never checked against
		// the directory.
		f.Account = trimmed
	}

	if m := last4CueRE.FindStringSubmatch(text); m != nil {
		f.Last4 = m[1]
	} else if opts.ExpectingLast4 && !opts.ExpectingAccount && bareDigits && len(trimmed) == 4 {
		f.Last4 = trimmed
	}

	if m := numericDOBInTextRE.FindString(text); m != "" {
		f.DOB = NormalizeDOB(m)
	} else if m := verbalDOBInTextRE.FindString(text); m != "" {
		f.DOB = NormalizeDOB(m)
	}

	return f
}

func collapseSpace(s string) string {
	return wsRunRE.ReplaceAllString(strings.TrimSpace(s), " ")
}
