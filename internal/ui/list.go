package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tracklift/internal/models"
)

var (
	_ list.Item = runItem{}
	_ list.Item = trackItem{}
)

// runItem wraps [models.Run] to implement [list.Item].
type runItem struct {
	run *models.Run
}

func (i runItem) FilterValue() string { return i.run.Source() }
func (i runItem) Title() string {
	return fmt.Sprintf("#%d %s • %s", i.run.Sequence(), i.run.Stage(), i.run.Status())
}
func (i runItem) Description() string {
	desc := i.run.StartedAt().Format("2006-01-02 15:04")
	switch i.run.Stage() {
	case models.StageImport:
		desc = fmt.Sprintf("%s • %s • %d/%d matched", desc, i.run.DestinationName(), i.run.MatchedCount(), i.run.ObservedTotal())
	default:
		desc = fmt.Sprintf("%s • %d tracks", desc, i.run.ObservedTotal())
	}
	if msg := i.run.ErrorMessage(); msg != "" {
		desc = fmt.Sprintf("%s • %s", desc, msg)
	}
	return desc
}

// trackItem wraps [models.TrackRecord] to implement [list.Item].
type trackItem struct {
	track models.TrackRecord
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.track.Ordinal, i.track.Title) }
func (i trackItem) Description() string {
	desc := i.track.Artists
	if i.track.SourceURL != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.SourceURL)
	}
	return desc
}

func runItems(runs []*models.Run) []list.Item {
	items := make([]list.Item, len(runs))
	for i, r := range runs {
		items[i] = runItem{run: r}
	}
	return items
}

func trackItems(records []models.TrackRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = trackItem{track: r}
	}
	return items
}
