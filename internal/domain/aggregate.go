package domain

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AggregateResult is one complete resolution cycle.
// It is built fresh per cycle and never mutated after being returned.
type AggregateResult struct {
	Services  []ResolutionResult `json:"services"`
	FetchedAt time.Time          `json:"fetchedAt"`
	CycleID   string             `json:"cycleId"`
	Summary   Summary            `json:"summary"`
}

// Summary counts results per status. Down and Degraded hold service names
// in display order.
type Summary struct {
	Total       int      `json:"total"`
	Operational int      `json:"operational"`
	Unknown     int      `json:"unknown"`
	Down        []string `json:"down"`
	Degraded    []string `json:"degraded"`
}

// collationTag drives name ordering within a severity bucket.
var collationTag = language.French

// SortResults orders results by severity (most urgent first), then by name.
// Names are compared with locale-aware collation; byte order breaks the
// remaining ties so the order is total.
func SortResults(results []ResolutionResult) {
	col := collate.New(collationTag)
	slices.SortStableFunc(results, func(a, b ResolutionResult) int {
		if d := a.Status.Severity() - b.Status.Severity(); d != 0 {
			return d
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// Summarize computes the counts shown above the board.
func Summarize(results []ResolutionResult) Summary {
	s := Summary{
		Total:    len(results),
		Down:     []string{},
		Degraded: []string{},
	}
	for _, r := range results {
		switch r.Status {
		case StatusOperational:
			s.Operational++
		case StatusDown:
			s.Down = append(s.Down, r.Name)
		case StatusDegraded:
			s.Degraded = append(s.Degraded, r.Name)
		default:
			s.Unknown++
		}
	}
	return s
}

// Count returns how many results carry the given status.
func (a *AggregateResult) Count(status Status) int {
	if a == nil {
		return 0
	}
	n := 0
	for _, r := range a.Services {
		if r.Status == status {
			n++
		}
	}
	return n
}
