package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgRunComplete
	MsgHistoryLoaded
)

type runOutcome struct {
	result *tasks.PipelineResult
	err    error
}

type historyOutcome struct {
	runs []*models.Run
	err  error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(result *tasks.PipelineResult, err error) Msg {
	return Msg{kind: MsgRunComplete, data: runOutcome{result, err}}
}

// historyLoadedMsg is the constructor for [MsgHistoryLoaded]
func historyLoadedMsg(runs []*models.Run, err error) Msg {
	return Msg{kind: MsgHistoryLoaded, data: historyOutcome{runs, err}}
}
