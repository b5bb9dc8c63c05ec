package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/scraper"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/desertthunder/tracklift/internal/tasks"
)

type fakeRunner struct {
	updates []tasks.ProgressUpdate
	result  *tasks.PipelineResult
	err     error
	block   bool
}

func (f *fakeRunner) Run(ctx context.Context, _ tasks.RunOptions, progress chan<- tasks.ProgressUpdate) (*tasks.PipelineResult, error) {
	for _, u := range f.updates {
		progress <- u
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

type fakeHistory struct {
	runs []*models.Run
	err  error
}

func (f *fakeHistory) Recent(int) ([]*models.Run, error) { return f.runs, f.err }

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func testOptions() tasks.RunOptions {
	return tasks.RunOptions{
		Extract: tasks.ExtractOptions{URL: "https://open.example.com/playlist/abc", CSVPath: "out.csv"},
		Import:  tasks.ImportOptions{PlaylistName: "Road Trip", Threshold: 0.8},
		Stages:  shared.StagesConfig{Extract: true, Import: true},
	}
}

// drain feeds progress messages back into the model until the run completes.
func drain(t *testing.T, m *Model) {
	t.Helper()
	for i := 0; i < 100 && m.view == ProgressView; i++ {
		msg := m.waitForProgress()()
		if msg == nil {
			t.Fatal("progress channel not set")
		}
		m.Update(msg)
	}
	if m.view != ResultView {
		t.Fatalf("expected result view, got %v", m.view)
	}
}

func TestModelRun(t *testing.T) {
	t.Run("success shows summary and unmatched", func(t *testing.T) {
		unmatched := models.NewTrackRecord(3, "Missing", []string{"Nobody"}, "")
		runner := &fakeRunner{
			updates: []tasks.ProgressUpdate{
				{Phase: tasks.LaunchBrowser, Message: "Launching browser"},
				{Phase: tasks.SearchTracks, Step: 1, Total: 3, Message: "Searching: A"},
			},
			result: &tasks.PipelineResult{
				Extract: &tasks.ExtractResult{
					Result:  &scraper.Result{Records: make([]models.TrackRecord, 3), Strategy: "dom"},
					CSVPath: "out.csv",
				},
				Import: &tasks.ImportResult{
					PlaylistID: "pl-1",
					Summary:    models.NewReconciliationSummary(3, 2, 0.5),
					Unmatched:  []models.TrackRecord{unmatched},
				},
			},
		}
		m := NewModel(context.Background(), runner, nil, testOptions())

		_, cmd := m.Update(keyPress("y"))
		if cmd == nil || m.view != ProgressView {
			t.Fatalf("expected run to start, view %v", m.view)
		}
		drain(t, m)

		if m.Err() != nil {
			t.Errorf("unexpected error %v", m.Err())
		}
		if len(m.log) != 2 || m.log[1] != "Searching: A" {
			t.Errorf("unexpected log %v", m.log)
		}
		if len(m.unmatched.Items()) != 1 {
			t.Errorf("expected one unmatched item, got %d", len(m.unmatched.Items()))
		}

		view := m.View()
		for _, want := range []string{"Transfer complete", "2/3 tracks", "pl-1", "3 tracks (dom)"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
	})

	t.Run("failure", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("extract stage failed: no tracks extracted")}
		m := NewModel(context.Background(), runner, nil, testOptions())

		m.Update(keyPress("y"))
		drain(t, m)

		if m.Err() == nil || !strings.Contains(m.View(), "Transfer failed") {
			t.Errorf("expected failure view, got %q", m.View())
		}
	})

	t.Run("cancel", func(t *testing.T) {
		runner := &fakeRunner{block: true}
		m := NewModel(context.Background(), runner, nil, testOptions())

		m.Update(keyPress("y"))
		m.Update(keyPress("ctrl+c"))
		if !m.cancelled {
			t.Fatal("expected cancel to be recorded")
		}
		drain(t, m)

		if !errors.Is(m.Err(), context.Canceled) || !strings.Contains(m.View(), "cancelled") {
			t.Errorf("expected cancelled view, got %v", m.Err())
		}
	})

	t.Run("restart returns to confirm", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{}, nil, testOptions())
		m.Update(keyPress("y"))
		drain(t, m)

		m.Update(keyPress("r"))
		if m.view != ConfirmView || m.result != nil || m.log != nil {
			t.Errorf("expected reset state, view %v", m.view)
		}
	})
}

func TestModelConfirm(t *testing.T) {
	m := NewModel(context.Background(), &fakeRunner{}, nil, testOptions())

	view := m.View()
	for _, want := range []string{"open.example.com/playlist/abc", "Road Trip", "80%", "extract → import"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected confirm view to contain %q", want)
		}
	}

	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelHistory(t *testing.T) {
	run := models.NewRun(models.StageImport, "out.csv")
	run.SetDestination("Road Trip")
	history := &fakeHistory{runs: []*models.Run{run}}
	m := NewModel(context.Background(), &fakeRunner{}, history, testOptions())

	_, cmd := m.Update(keyPress("h"))
	if cmd == nil || m.view != HistoryView {
		t.Fatalf("expected history view, got %v", m.view)
	}
	m.Update(cmd())

	if len(m.runs.Items()) != 1 {
		t.Errorf("expected one run, got %d", len(m.runs.Items()))
	}

	m.Update(keyPress("esc"))
	if m.view != ConfirmView {
		t.Errorf("expected to return to confirm view, got %v", m.view)
	}

	t.Run("disabled without store", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{}, nil, testOptions())
		if _, cmd := m.Update(keyPress("h")); cmd != nil || m.view != ConfirmView {
			t.Error("history should be unavailable")
		}
	})

	t.Run("load error", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{}, &fakeHistory{err: errors.New("db locked")}, testOptions())
		_, cmd := m.Update(keyPress("h"))
		m.Update(cmd())
		if !strings.Contains(m.View(), "db locked") {
			t.Errorf("expected error in view, got %q", m.View())
		}
	})
}

func TestPhaseLabel(t *testing.T) {
	tests := []struct {
		update tasks.ProgressUpdate
		want   string
	}{
		{tasks.ProgressUpdate{Phase: tasks.LaunchBrowser}, "Launching browser..."},
		{tasks.ProgressUpdate{Phase: tasks.SearchTracks, Step: 4, Total: 10}, "Searching catalog (4/10)"},
		{tasks.ProgressUpdate{Phase: tasks.FetchTrackPages, Step: 1, Total: 2}, "Fetching track pages (1/2)"},
		{tasks.ProgressUpdate{Phase: tasks.CheckThreshold, Message: "Matched 7/10"}, "Matched 7/10"},
		{tasks.ProgressUpdate{Phase: tasks.WriteUnmatched}, "Starting..."},
	}

	for _, tt := range tests {
		t.Run(tt.update.Phase.String(), func(t *testing.T) {
			if got := phaseLabel(tt.update); got != tt.want {
				t.Errorf("phaseLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStagesLabel(t *testing.T) {
	opts := testOptions()
	opts.Stages.Import = false
	if got := stagesLabel(opts); got != "extract only" {
		t.Errorf("unexpected label %q", got)
	}
	opts.Stages = shared.StagesConfig{Import: true}
	if got := stagesLabel(opts); got != "import only" {
		t.Errorf("unexpected label %q", got)
	}
}
