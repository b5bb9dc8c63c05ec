package tasks

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
	tu "github.com/desertthunder/tracklift/internal/testing"
)

func records(titles ...string) []models.TrackRecord {
	out := make([]models.TrackRecord, len(titles))
	for i, title := range titles {
		out[i] = models.NewTrackRecord(i+1, title, []string{"Artist " + title}, "")
	}
	return out
}

func TestReconcile(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	input := records("A", "B", "C", "D")

	t.Run("one search per record in order", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.Tracks[tu.Key(input[0])] = "cat-a"
		catalog.Tracks[tu.Key(input[2])] = "cat-c"
		catalog.SearchErrs[tu.Key(input[3])] = errors.New("502 bad gateway")

		progress := make(chan ProgressUpdate, 10)
		matches, err := Reconcile(context.Background(), catalog, input, progress, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.Count("search") != 4 {
			t.Errorf("expected 4 searches, got %d", catalog.Count("search"))
		}
		if len(matches) != 4 {
			t.Fatalf("expected 4 matches, got %d", len(matches))
		}
		for i, m := range matches {
			if m.Record != input[i] {
				t.Errorf("match %d out of order: %+v", i, m.Record)
			}
		}

		ids, unmatched := Partition(matches)
		if len(ids) != 2 || ids[0] != "cat-a" || ids[1] != "cat-c" {
			t.Errorf("unexpected ids %v", ids)
		}
		if len(unmatched) != 2 || unmatched[0].Title != "B" || unmatched[1].Title != "D" {
			t.Errorf("search failure should count as unmatched, got %+v", unmatched)
		}

		summary := Summarize(matches, 0.8)
		if summary.TotalInput != 4 || summary.MatchedCount != 2 || summary.MatchRatio != 0.5 {
			t.Errorf("unexpected summary %+v", summary)
		}
		if len(progress) != 5 {
			t.Errorf("expected 5 progress updates, got %d", len(progress))
		}
	})

	t.Run("cancellation aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		matches, err := Reconcile(ctx, tu.NewMockCatalog(), input, nil, logger)
		if !errors.Is(err, context.Canceled) || len(matches) != 0 {
			t.Errorf("expected cancellation before any search, got %v %v", matches, err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		matches, err := Reconcile(context.Background(), tu.NewMockCatalog(), nil, nil, logger)
		if err != nil || len(matches) != 0 {
			t.Errorf("unexpected result %v %v", matches, err)
		}
		if s := Summarize(matches, 0.8); s.MatchRatio != 0 || s.Passed() {
			t.Errorf("empty input must not pass, got %+v", s)
		}
	})
}

func TestSendProgress(t *testing.T) {
	t.Run("nil channel", func(t *testing.T) {
		sendProgress(nil, completeUpdate("done"))
	})

	t.Run("full channel does not block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		sendProgress(ch, completeUpdate("first"))
		sendProgress(ch, completeUpdate("second"))
		if got := (<-ch).Message; got != "first" {
			t.Errorf("expected first update kept, got %q", got)
		}
	})
}

func TestPhaseString(t *testing.T) {
	for p := LaunchBrowser; p <= Complete; p++ {
		if p.String() == "" {
			t.Errorf("phase %d has no name", p)
		}
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should have empty name")
	}
}
