package domain

import (
	"encoding/json"
	"fmt"
)

// ProgressKind distinguishes the two wire forms of agent progress.
type ProgressKind string

const (
	// ProgressPercentKind is a bare integer percent on the wire.
	ProgressPercentKind ProgressKind = "percent"
	// ProgressFractionKind is a {current,total} pair on the wire.
	ProgressFractionKind ProgressKind = "fraction"
)

// Progress is the reported completion of an agent step. Agents send it
// either as a bare integer percent or as a {current,total} pair; Kind
// records which form arrived so the original shape survives re-encoding.
type Progress struct {
	Kind    ProgressKind
	Value   int // percent when Kind is ProgressPercentKind
	Current int
	Total   int
}

type progressFraction struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// UnmarshalJSON accepts either wire form.
func (p *Progress) UnmarshalJSON(data []byte) error {
	var pct int
	if err := json.Unmarshal(data, &pct); err == nil {
		*p = Progress{Kind: ProgressPercentKind, Value: pct}
		return nil
	}
	var frac progressFraction
	if err := json.Unmarshal(data, &frac); err != nil {
		return fmt.Errorf("progress is neither a percent nor a {current,total} pair: %w", err)
	}
	*p = Progress{Kind: ProgressFractionKind, Current: frac.Current, Total: frac.Total}
	return nil
}

// MarshalJSON re-encodes the form that arrived.
func (p Progress) MarshalJSON() ([]byte, error) {
	if p.Kind == ProgressFractionKind {
		return json.Marshal(progressFraction{Current: p.Current, Total: p.Total})
	}
	return json.Marshal(p.Value)
}

// Percent derives the percent-complete. A fraction with a zero total
// counts as no progress rather than a division fault.
func (p Progress) Percent() int {
	if p.Kind == ProgressFractionKind {
		if p.Total == 0 {
			return 0
		}
		return 100 * p.Current / p.Total
	}
	return p.Value
}
