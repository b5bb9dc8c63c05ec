package scraper

// growthCredit is how many stagnant attempts an iteration with new tracks forgives.
//
// Growth tends to arrive in bursts, so a burst buys extra quiet iterations
// rather than resetting the counter. Tunable; not derived from measurements.
const growthCredit = 2

// ExtractionState is the stagnation bookkeeping for one scrolling session.
type ExtractionState struct {
	LoadedCount         int
	PreviousCount       int
	StagnantAttempts    int
	MaxStagnantAttempts int
}

// NewExtractionState starts a session that converges after max quiet iterations.
func NewExtractionState(max int) *ExtractionState {
	if max < 1 {
		max = 1
	}
	return &ExtractionState{MaxStagnantAttempts: max}
}

// Observe records the count seen after one scroll action and reports whether it changed.
func (s *ExtractionState) Observe(count int) bool {
	s.LoadedCount = count
	if count == s.PreviousCount {
		s.StagnantAttempts++
		return false
	}

	s.StagnantAttempts = max(0, s.StagnantAttempts-growthCredit)
	s.PreviousCount = count
	return true
}

// Converged reports whether the session should stop.
func (s *ExtractionState) Converged() bool {
	return s.StagnantAttempts >= s.MaxStagnantAttempts
}
