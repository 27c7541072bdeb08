// Package directory holds the read-only customer reference data that the
// verification flow validates callers against.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CustomerRecord is a single customer's verification attributes.
// Records are immutable for the process lifetime.
type CustomerRecord struct {
	FullName             string `json:"full_name"`
	Last4                string `json:"last4"`
	DateOfBirth          string `json:"date_of_birth"`
	BalanceCents         int64  `json:"balance_cents"`
	LostStolenFlowActive bool   `json:"lost_stolen_flow_active"`
}

// Balance renders the balance as a display string, e.g. "$4,520.75" without
// the thousands separator ("$4520.75").
func (r *CustomerRecord) Balance() string {
	sign := ""
	cents := r.BalanceCents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Directory resolves a normalized customer name to their record.
type Directory interface {
	// Lookup returns the record for a name (any casing/spacing), or false.
	Lookup(name string) (*CustomerRecord, bool)
	// Names returns the canonical normalized name set, for the extractor.
	Names() []string
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a name and collapses internal whitespace runs so
// that "  John   CENA " and "john cena" share one directory key.
func NormalizeName(name string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(strings.ToLower(name)), " ")
}

// Static is an in-memory Directory keyed by normalized name.
type Static struct {
	records map[string]*CustomerRecord
	names   []string
}

// NewStatic builds a Static directory from records. Duplicate names under
// normalization are rejected.
func NewStatic(records []CustomerRecord) (*Static, error) {
	s := &Static{records: make(map[string]*CustomerRecord, len(records))}
	for i := range records {
		rec := records[i]
		key := NormalizeName(rec.FullName)
		if key == "" {
			return nil, fmt.Errorf("directory: record %d has an empty name", i)
		}
		if _, exists := s.records[key]; exists {
			return nil, fmt.Errorf("directory: duplicate customer name %q", key)
		}
		s.records[key] = &rec
		s.names = append(s.names, key)
	}
	return s, nil
}

// Lookup implements Directory.
func (s *Static) Lookup(name string) (*CustomerRecord, bool) {
	rec, ok := s.records[NormalizeName(name)]
	return rec, ok
}

// Names implements Directory.
func (s *Static) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// LoadFile reads a JSON array of customer records from disk.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: failed to read %s: %w", path, err)
	}
	var records []CustomerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("directory: failed to parse %s: %w", path, err)
	}
	return NewStatic(records)
}

// Seed returns the built-in demo customer set used when no directory file is
// configured.
func Seed() *Static {
	s, err := NewStatic([]CustomerRecord{
		{
			FullName:     "John Cena",
			Last4:        "1234",
			DateOfBirth:  "3rd november 2000",
			BalanceCents: 452075,
		},
		{
			FullName:             "Sagar Karnik",
			Last4:                "5678",
			DateOfBirth:          "3 december 2005",
			BalanceCents:         1280940,
			LostStolenFlowActive: true,
		},
		{
			FullName:     "Priya Sharma",
			Last4:        "9012",
			DateOfBirth:  "21 june 1994",
			BalanceCents: 78010,
		},
	})
	if err != nil {
		panic(err)
	}
	return s
}
