package models

import "fmt"

// MatchRecord pairs an extracted track with the catalog identifier it resolved to.
// An empty CatalogID means no candidate was found.
type MatchRecord struct {
	Record    TrackRecord
	CatalogID string
}

// Matched reports whether a catalog candidate was found.
func (m MatchRecord) Matched() bool {
	return m.CatalogID != ""
}

// ReconciliationSummary holds the counts that decide whether a destination playlist is kept.
type ReconciliationSummary struct {
	TotalInput   int
	MatchedCount int
	MatchRatio   float64
	Threshold    float64
}

// NewReconciliationSummary computes MatchRatio as matched/total, or 0 when total is 0.
func NewReconciliationSummary(total, matched int, threshold float64) ReconciliationSummary {
	ratio := 0.0
	if total > 0 {
		ratio = float64(matched) / float64(total)
	}
	return ReconciliationSummary{TotalInput: total, MatchedCount: matched, MatchRatio: ratio, Threshold: threshold}
}

// Passed reports whether the ratio clears the threshold.
// An empty input never passes.
func (s ReconciliationSummary) Passed() bool {
	return s.TotalInput > 0 && s.MatchRatio >= s.Threshold
}

func (s ReconciliationSummary) String() string {
	return fmt.Sprintf("%d/%d tracks (%.0f%%), threshold %.0f%%", s.MatchedCount, s.TotalInput, s.MatchRatio*100, s.Threshold*100)
}
