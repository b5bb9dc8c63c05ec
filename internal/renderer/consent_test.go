package renderer_test

import (
	"io"
	"testing"

	"github.com/desertthunder/tracklift/internal/renderer"
	"github.com/desertthunder/tracklift/internal/shared"
	tu "github.com/desertthunder/tracklift/internal/testing"
)

func TestDismissConsent(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("clicks first visible selector", func(t *testing.T) {
		accept := `button:has-text("Accept")`
		page := &tu.FakePage{
			Visible: map[string]bool{accept: true, `#onetrust-accept-btn-handler`: true},
			Hidden:  map[string]bool{accept: true},
		}

		if !renderer.DismissConsent(page, logger) {
			t.Fatal("expected banner to be handled")
		}
		if page.Called("click:"+accept) != 1 {
			t.Errorf("expected click on %s, calls: %v", accept, page.Calls)
		}
		if page.Called("click:#onetrust") != 0 {
			t.Error("later selectors should not be clicked")
		}
		if page.Called("press:Escape") != 0 {
			t.Error("modal sweep should not run when a button was clicked")
		}
	})

	t.Run("hidden confirmation failure is not fatal", func(t *testing.T) {
		sel := renderer.ConsentSelectors[0]
		page := &tu.FakePage{Visible: map[string]bool{sel: true}}

		if !renderer.DismissConsent(page, logger) {
			t.Error("expected true even when banner may still be visible")
		}
	})

	t.Run("falls back to escape and modal sweep", func(t *testing.T) {
		closer := `.modal button:has-text("Close"), .modal button[aria-label*="close"], .modal .close`
		page := &tu.FakePage{
			Visible: map[string]bool{closer: true},
			Counts: func(sel string) (int, error) {
				if sel == ".modal" || sel == closer {
					return 1, nil
				}
				return 0, nil
			},
		}

		if renderer.DismissConsent(page, logger) {
			t.Error("expected false when no consent button matched")
		}
		if page.Called("press:Escape") != 1 {
			t.Error("expected escape keypress")
		}
		if page.Called("click:"+closer) != 1 {
			t.Errorf("expected modal close click, calls: %v", page.Calls)
		}
	})

	t.Run("nothing to dismiss", func(t *testing.T) {
		page := &tu.FakePage{}
		if renderer.DismissConsent(page, logger) {
			t.Error("expected false")
		}
		if page.Called("visible:") != len(renderer.ConsentSelectors) {
			t.Errorf("expected every selector to be tried, got %d", page.Called("visible:"))
		}
	})
}

func TestLookup(t *testing.T) {
	if renderer.FoundValue("").Status != renderer.Absent {
		t.Error("empty value should be absent")
	}
	if !renderer.FoundValue("x").Ok() {
		t.Error("non-empty value should be found")
	}
	if renderer.Failure(io.EOF).Status != renderer.Failed {
		t.Error("expected failed status")
	}
	if renderer.Failed.String() != "failed" {
		t.Errorf("unexpected status string %s", renderer.Failed.String())
	}
}

func TestDecode(t *testing.T) {
	raw := []any{
		map[string]any{"className": "main-view", "selector": "div.main-view"},
	}

	var out []struct {
		ClassName string `json:"className"`
		Selector  string `json:"selector"`
	}
	if err := renderer.Decode(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Selector != "div.main-view" {
		t.Errorf("unexpected decode result %+v", out)
	}

	if err := renderer.Decode("not a list", &out); err == nil {
		t.Error("expected decode error")
	}
}

func TestCountOr(t *testing.T) {
	page := &tu.FakePage{Counts: func(string) (int, error) { return 0, io.ErrUnexpectedEOF }}
	if renderer.CountOr(page, "x") != 0 {
		t.Error("expected 0 on error")
	}
	page.Counts = func(string) (int, error) { return 4, nil }
	if renderer.CountOr(page, "x") != 4 {
		t.Error("expected 4")
	}
}
