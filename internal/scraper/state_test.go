package scraper

import "testing"

// run feeds counts until convergence and returns how many observations were consumed.
func run(state *ExtractionState, counts []int) (int, bool) {
	for i, c := range counts {
		state.Observe(c)
		if state.Converged() {
			return i + 1, true
		}
	}
	return len(counts), false
}

func TestExtractionState(t *testing.T) {
	t.Run("converges after max quiet iterations", func(t *testing.T) {
		state := NewExtractionState(3)
		used, converged := run(state, []int{10, 20, 30, 30, 30, 30, 30})
		if !converged {
			t.Fatal("expected convergence")
		}
		if used != 6 {
			t.Errorf("expected convergence on observation 6, got %d", used)
		}
		if state.LoadedCount != 30 {
			t.Errorf("expected loaded count 30, got %d", state.LoadedCount)
		}
	})

	t.Run("empty page converges", func(t *testing.T) {
		state := NewExtractionState(3)
		used, converged := run(state, []int{0, 0, 0})
		if !converged || used != 3 {
			t.Errorf("expected convergence after 3 observations, got %d (converged=%v)", used, converged)
		}
	})

	t.Run("terminates whenever counts stabilize for max iterations", func(t *testing.T) {
		prefixes := [][]int{
			{},
			{5},
			{5, 5, 8},
			{1, 1, 2, 2, 3},
			{4, 9, 9, 12, 12, 12 + 1},
		}
		for _, max := range []int{1, 2, 3, 5} {
			for _, prefix := range prefixes {
				counts := append([]int{}, prefix...)
				final := 100
				for range max + growthCredit {
					counts = append(counts, final)
				}

				state := NewExtractionState(max)
				if _, converged := run(state, counts); !converged {
					t.Errorf("max=%d prefix=%v: expected convergence", max, prefix)
				}
			}
		}
	})

	t.Run("never terminates while counts strictly increase", func(t *testing.T) {
		state := NewExtractionState(3)
		for i := 1; i <= 500; i++ {
			state.Observe(i * 10)
			if state.Converged() {
				t.Fatalf("converged at iteration %d while still growing", i)
			}
		}
	})

	t.Run("never terminates when growth occurs on a majority of iterations", func(t *testing.T) {
		state := NewExtractionState(3)
		count := 0
		// grow, grow, quiet repeating
		for i := 0; i < 300; i++ {
			if i%3 != 2 {
				count += 5
			}
			state.Observe(count)
			if state.Converged() {
				t.Fatalf("converged at iteration %d", i)
			}
		}
	})

	t.Run("counter never negative", func(t *testing.T) {
		state := NewExtractionState(3)
		for _, c := range []int{1, 2, 3, 4, 4, 5, 6, 7} {
			state.Observe(c)
			if state.StagnantAttempts < 0 {
				t.Fatalf("stagnant attempts went negative after %d", c)
			}
		}
		if state.StagnantAttempts != 0 {
			t.Errorf("expected floor at 0, got %d", state.StagnantAttempts)
		}
	})

	t.Run("burst then fewer than two quiet iterations does not terminate", func(t *testing.T) {
		for quiet := 0; quiet < growthCredit; quiet++ {
			state := NewExtractionState(3)
			state.Observe(5)
			state.Observe(5)
			state.Observe(5) // two stagnant attempts
			state.Observe(40)
			for range quiet {
				state.Observe(40)
			}
			if state.Converged() {
				t.Errorf("quiet=%d: converged too early (attempts=%d)", quiet, state.StagnantAttempts)
			}
		}
	})

	t.Run("growth decrements by two", func(t *testing.T) {
		state := NewExtractionState(5)
		state.Observe(0)
		state.Observe(0)
		state.Observe(0)
		if state.StagnantAttempts != 3 {
			t.Fatalf("expected 3 stagnant attempts, got %d", state.StagnantAttempts)
		}
		if !state.Observe(7) {
			t.Error("expected growth to be reported")
		}
		if state.StagnantAttempts != 1 || state.PreviousCount != 7 {
			t.Errorf("expected attempts=1 previous=7, got %+v", *state)
		}
	})

	t.Run("minimum max is one", func(t *testing.T) {
		if NewExtractionState(0).MaxStagnantAttempts != 1 {
			t.Error("expected max clamped to 1")
		}
	})
}
