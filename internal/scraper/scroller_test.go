package scraper

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tracklift/internal/shared"
	tu "github.com/desertthunder/tracklift/internal/testing"
)

// lazyPage renders batch more rows per scroll until total is reached.
type lazyPage struct {
	scrolls    int
	batch      int
	total      int
	candidates []any
	container  bool
	window     bool
	evalErr    error
}

func (l *lazyPage) page() *tu.FakePage {
	return &tu.FakePage{
		Counts: func(sel string) (int, error) {
			if sel != rowCountSelector {
				return 0, nil
			}
			return min(l.scrolls*l.batch, l.total), nil
		},
		Eval: func(script string, arg any) (any, error) {
			switch script {
			case findContainersJS:
				return l.candidates, nil
			case scrollContainerJS:
				if l.container {
					l.scrolls++
				}
				return l.container, l.evalErr
			case scrollWindowJS:
				if l.window {
					l.scrolls++
				}
				return l.window, l.evalErr
			}
			return nil, errors.New("unexpected script")
		},
	}
}

func TestScroller(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	opts := ScrollOptions{Step: 400, Settle: 1500 * time.Millisecond, MaxStagnant: 3}

	t.Run("converges on final count", func(t *testing.T) {
		lazy := &lazyPage{batch: 10, total: 30, window: true}
		page := lazy.page()

		result, err := NewScroller(page, opts, logger).Converge(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Count != 30 {
			t.Errorf("expected 30 tracks, got %d", result.Count)
		}
		if result.Iterations != 6 {
			t.Errorf("expected 6 iterations, got %d", result.Iterations)
		}
		if page.Called("click:body") != 1 {
			t.Error("expected body to be focused once")
		}
		if page.Called("press:") != 0 {
			t.Error("keyboard fallback should not run while the window scrolls")
		}
		if page.Waited < 6*opts.Settle {
			t.Errorf("expected settle delay per iteration, waited %v", page.Waited)
		}
	})

	t.Run("prefers detected container", func(t *testing.T) {
		lazy := &lazyPage{
			batch:     5,
			total:     10,
			container: true,
			candidates: []any{
				map[string]any{"className": "sidebar", "selector": "nav.sidebar"},
				map[string]any{"className": "main-view-container", "selector": "div.main-view-container"},
			},
		}
		scroller := NewScroller(lazy.page(), opts, logger)

		result, err := scroller.Converge(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Container != "div.main-view-container" {
			t.Errorf("expected keyword match, got %q", result.Container)
		}
		if result.Count != 10 {
			t.Errorf("expected 10 tracks, got %d", result.Count)
		}
	})

	t.Run("falls back to keyboard when nothing scrolls", func(t *testing.T) {
		lazy := &lazyPage{}
		page := lazy.page()

		result, err := NewScroller(page, opts, logger).Converge(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Count != 0 || result.Iterations != 3 {
			t.Errorf("expected empty page to converge in 3 iterations, got %+v", result)
		}
		if page.Called("press:PageDown") != 3 {
			t.Errorf("expected PageDown each iteration, calls: %v", page.Calls)
		}
		if page.Called("wheel:") != 0 {
			t.Error("wheel is only used when the keypress fails")
		}
	})

	t.Run("script errors move to next strategy", func(t *testing.T) {
		lazy := &lazyPage{evalErr: errors.New("page crashed")}
		page := lazy.page()

		if _, err := NewScroller(page, opts, logger).Converge(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Called("press:PageDown") == 0 {
			t.Error("expected keyboard fallback")
		}
	})

	t.Run("cancellation stops scrolling", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		page := (&lazyPage{window: true, batch: 1, total: 100}).page()

		_, err := NewScroller(page, opts, logger).Converge(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("defaults fill unset options", func(t *testing.T) {
		s := NewScroller(&tu.FakePage{}, ScrollOptions{}, logger)
		if s.opts.Step != defaultStep || s.opts.Settle != defaultSettle || s.opts.MaxStagnant != defaultStagnant {
			t.Errorf("unexpected defaults %+v", s.opts)
		}
	})
}

func TestPickContainer(t *testing.T) {
	tests := []struct {
		name       string
		candidates []containerCandidate
		want       string
	}{
		{"none", nil, ""},
		{"first when no keyword", []containerCandidate{{"a", "div.a"}, {"b", "div.b"}}, "div.a"},
		{"keyword wins", []containerCandidate{{"a", "div.a"}, {"Tracklist-Body", "div.t"}}, "div.t"},
		{"first keyword match", []containerCandidate{{"content", "div.c"}, {"scroll", "div.s"}}, "div.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickContainer(tt.candidates); got != tt.want {
				t.Errorf("pickContainer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScrollScripts(t *testing.T) {
	for name, script := range map[string]string{
		"find":      findContainersJS,
		"container": scrollContainerJS,
		"window":    scrollWindowJS,
	} {
		if !strings.Contains(script, "=>") {
			t.Errorf("%s script must be a function expression", name)
		}
	}
}
