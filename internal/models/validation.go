package models

import "fmt"

// Verdict is the outcome of comparing expected and observed totals.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictUnknown Verdict = "unknown"
)

// ValidationResult compares the page's advertised track total against the count the scroller converged on.
//
// When IsReliable is false the expected total could not be read and no comparison is made.
type ValidationResult struct {
	ExpectedTotal int
	ObservedTotal int
	IsReliable    bool
}

// Verdict reports pass, fail, or unknown when the expected total is unreliable.
func (v ValidationResult) Verdict() Verdict {
	switch {
	case !v.IsReliable:
		return VerdictUnknown
	case v.ExpectedTotal == v.ObservedTotal:
		return VerdictPass
	default:
		return VerdictFail
	}
}

// Difference is expected minus observed; zero when unreliable.
func (v ValidationResult) Difference() int {
	if !v.IsReliable {
		return 0
	}
	return v.ExpectedTotal - v.ObservedTotal
}

func (v ValidationResult) String() string {
	switch v.Verdict() {
	case VerdictPass:
		return fmt.Sprintf("all %d tracks loaded", v.ObservedTotal)
	case VerdictFail:
		return fmt.Sprintf("expected %d tracks, loaded %d (difference of %d)", v.ExpectedTotal, v.ObservedTotal, v.Difference())
	default:
		return "expected total unavailable, validation skipped"
	}
}
