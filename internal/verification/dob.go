package verification

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// monthNames resolves month tokens (numeric with or without a leading zero,
// three-letter and longer abbreviations, full names) to the canonical
// lowercase English month name.
var monthNames = map[string]string{
	"1": "january", "01": "january", "jan": "january", "january": "january",
	"2": "february", "02": "february", "feb": "february", "february": "february",
	"3": "march", "03": "march", "mar": "march", "march": "march",
	"4": "april", "04": "april", "apr": "april", "april": "april",
	"5": "may", "05": "may", "may": "may",
	"6": "june", "06": "june", "jun": "june", "june": "june",
	"7": "july", "07": "july", "jul": "july", "july": "july",
	"8": "august", "08": "august", "aug": "august", "august": "august",
	"9": "september", "09": "september", "sep": "september", "sept": "september", "september": "september",
	"10": "october", "oct": "october", "october": "october",
	"11": "november", "nov": "november", "november": "november",
	"12": "december", "dec": "december", "december": "december",
}

var (
	numericDOBRE = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	verbalDOBRE  = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\.?\s+(\d{4})$`)
	ordinalRE    = regexp.MustCompile(`(?i)(\d)(?:st|nd|rd|th)\b`)
	wsRunRE      = regexp.MustCompile(`\s+`)
)

// resolveMonth maps a month token to its canonical name. Unresolvable tokens
// return false; longer abbreviations ("septem") resolve by prefix.
func resolveMonth(token string) (string, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if name, ok := monthNames[token]; ok {
		return name, true
	}
	if len(token) >= 3 {
		for _, name := range monthNames {
			if strings.HasPrefix(name, token) {
				return name, true
			}
		}
	}
	return "", false
}

// NormalizeDOB converts a date of birth to the canonical
// "<day> <lowercase month name> <year>" form. Accepted surface forms are
// numeric D/M/YYYY (or D-M-YYYY) and verbal "3rd November 2000" with an
// optional ordinal suffix and abbreviated month. Anything else degrades to a
// lowercased, whitespace-collapsed copy of the input rather than failing.
func NormalizeDOB(s string) string {
	s = strings.TrimSpace(s)

	if m := numericDOBRE.FindStringSubmatch(s); m != nil {
		if month, ok := resolveMonth(strings.TrimPrefix(m[2], "0")); ok {
			day, _ := strconv.Atoi(m[1])
			return fmt.Sprintf("%d %s %s", day, month, m[3])
		}
	}

	if m := verbalDOBRE.FindStringSubmatch(s); m != nil {
		if month, ok := resolveMonth(m[2]); ok {
			day, _ := strconv.Atoi(m[1])
			return fmt.Sprintf("%d %s %s", day, month, m[3])
		}
	}

	return wsRunRE.ReplaceAllString(strings.ToLower(s), " ")
}

// DOBEqual reports whether two dates of birth denote the same calendar date.
// Both sides are normalized, then residual ordinal suffixes are stripped and
// whitespace collapsed, so the comparison holds no matter which surface form
// is stored in the directory and which one the caller typed.
func DOBEqual(a, b string) bool {
	return comparableDOB(a) == comparableDOB(b)
}

func comparableDOB(s string) string {
	s = NormalizeDOB(s)
	s = ordinalRE.ReplaceAllString(s, "$1")
	return strings.TrimSpace(wsRunRE.ReplaceAllString(s, " "))
}
