// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI wraps a full pipeline run:
//  1. [ConfirmView] : Review the source URL, destination and enabled stages
//  2. [ProgressView] : Follow progress updates with a spinner and a bar for counted phases
//  3. [ResultView] : Show the extraction verdict, the match summary and unmatched tracks
//  4. [HistoryView] : Browse recent runs from the history store
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the PlaylistEngine; the run's result arrives once that channel closes.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
