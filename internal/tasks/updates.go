package tasks

import (
	"fmt"

	"github.com/desertthunder/tracklift/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LaunchBrowser Phase = iota
	ExtractTracks
	FetchTrackPages
	SaveTracks
	ReadTracks
	CreatePlaylist
	SearchTracks
	WriteUnmatched
	CheckThreshold
	AddTracks
	DeletePlaylist
	Complete
)

func (p Phase) String() string {
	switch p {
	case LaunchBrowser:
		return "launch_browser"
	case ExtractTracks:
		return "extract_tracks"
	case FetchTrackPages:
		return "fetch_track_pages"
	case SaveTracks:
		return "save_tracks"
	case ReadTracks:
		return "read_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case SearchTracks:
		return "search_tracks"
	case WriteUnmatched:
		return "write_unmatched"
	case CheckThreshold:
		return "check_threshold"
	case AddTracks:
		return "add_tracks"
	case DeletePlaylist:
		return "delete_playlist"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

func launchBrowserUpdate(headless bool) ProgressUpdate {
	mode := "headless"
	if !headless {
		mode = "headful"
	}
	return ProgressUpdate{Phase: LaunchBrowser, Step: 1, Total: 1, Message: fmt.Sprintf("Launching %s browser...", mode)}
}

func extractingUpdate(url string) ProgressUpdate {
	return ProgressUpdate{Phase: ExtractTracks, Step: 0, Total: 1, Message: fmt.Sprintf("Loading playlist %s...", url)}
}

func extractedUpdate(count int, strategy string, validation models.ValidationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExtractTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Extracted %d tracks via %s strategy (%s)", count, strategy, validation),
		Data:    validation,
	}
}

func fetchTrackPageUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchTrackPages, Step: step, Total: total, Message: fmt.Sprintf("[%d/%d] Fetching track page...", step, total)}
}

func saveTracksUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{Phase: SaveTracks, Step: 1, Total: 1, Message: fmt.Sprintf("Saved %d tracks to %s", count, path)}
}

func readTracksUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{Phase: ReadTracks, Step: 1, Total: 1, Message: fmt.Sprintf("Read %d tracks from %s", count, path)}
}

func createPlaylistUpdate(name, id string) ProgressUpdate {
	return ProgressUpdate{Phase: CreatePlaylist, Step: 1, Total: 1, Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, id), Data: id}
}

func searchTracksUpdate(step, total int, r *models.TrackRecord) ProgressUpdate {
	if r == nil {
		return ProgressUpdate{Phase: SearchTracks, Step: step, Total: total, Message: "Searching for tracks..."}
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, r.Artists, r.Title),
	}
}

func unmatchedUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{Phase: WriteUnmatched, Step: 1, Total: 1, Message: fmt.Sprintf("Saved %d unmatched tracks to %s", count, path)}
}

func thresholdUpdate(summary models.ReconciliationSummary) ProgressUpdate {
	return ProgressUpdate{Phase: CheckThreshold, Step: 1, Total: 1, Message: "Matched " + summary.String(), Data: summary}
}

func addTracksUpdate(step, total, added int) ProgressUpdate {
	return ProgressUpdate{Phase: AddTracks, Step: step, Total: total, Message: fmt.Sprintf("[%d/%d] Added %d tracks", step, total, added)}
}

func deletePlaylistUpdate(id string) ProgressUpdate {
	return ProgressUpdate{Phase: DeletePlaylist, Step: 1, Total: 1, Message: fmt.Sprintf("Deleting playlist %s...", id)}
}

func completeUpdate(message string) ProgressUpdate {
	return ProgressUpdate{Phase: Complete, Step: 1, Total: 1, Message: message}
}
