package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	ProgressView
	ResultView
	HistoryView
)

const (
	historyLimit = 50
	logLines     = 6
)

// Runner is the slice of [tasks.SyncEngine] the TUI drives.
type Runner interface {
	Run(ctx context.Context, opts tasks.RunOptions, progress chan<- tasks.ProgressUpdate) (*tasks.PipelineResult, error)
}

// History lists recorded runs; nil disables the history view.
type History interface {
	Recent(limit int) ([]*models.Run, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	engine       Runner
	history      History
	opts         tasks.RunOptions
	width        int
	height       int
	spinner      spinner.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	log          []string
	cancelled    bool
	result       *tasks.PipelineResult
	err          error
	unmatched    list.Model
	runs         list.Model
	historyFrom  ViewState
	historyError error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that runs the pipeline with opts.
func NewModel(ctx context.Context, engine Runner, history History, opts tasks.RunOptions) *Model {
	return &Model{
		ctx:       ctx,
		view:      ConfirmView,
		engine:    engine,
		history:   history,
		opts:      opts,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:       progress.New(progress.WithDefaultGradient()),
		unmatched: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		runs:      list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init has nothing to load; the run starts from the confirm view.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Err returns the error of the last run, if any.
func (m *Model) Err() error {
	return m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width-8, 10)
		m.unmatched.SetSize(max(msg.Width-4, 0), msg.Height/2)
		m.runs.SetSize(max(msg.Width-4, 0), max(msg.Height-6, 0))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ProgressView:
			return m.handleProgressKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != ProgressView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		m.appendLog(update.Message)
		cmds := []tea.Cmd{m.waitForProgress()}
		if update.Total > 0 {
			cmds = append(cmds, m.bar.SetPercent(float64(update.Step)/float64(update.Total)))
		}
		return m, tea.Batch(cmds...)

	case MsgRunComplete:
		outcome := msg.data.(runOutcome)
		m.result = outcome.result
		m.err = outcome.err
		m.view = ResultView
		m.progressChan, m.done = nil, nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.unmatched = list.New(trackItems(m.unmatchedRecords()), list.NewDefaultDelegate(), max(m.width-4, 0), m.height/2)
		m.unmatched.Title = "Unmatched tracks"
		return m, nil

	case MsgHistoryLoaded:
		outcome := msg.data.(historyOutcome)
		m.historyError = outcome.err
		m.runs = list.New(runItems(outcome.runs), list.NewDefaultDelegate(), max(m.width-4, 0), max(m.height-6, 0))
		m.runs.Title = "Recent runs"
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case ProgressView:
		return m.renderProgress()
	case ResultView:
		return m.renderResult()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.startRun()
	case key.Matches(msg, m.keys.history):
		return m, m.showHistory()
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no):
		return m, tea.Quit
	}
	return m, nil
}

// handleProgressKeys cancels the run; the engine's rollback finishes before the result view appears.
func (m *Model) handleProgressKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) && m.cancel != nil && !m.cancelled {
		m.cancelled = true
		m.cancel()
		m.appendLog("Cancelling...")
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.reset()
		return m, nil
	case key.Matches(msg, m.keys.history):
		return m, m.showHistory()
	}

	var cmd tea.Cmd
	m.unmatched, cmd = m.unmatched.Update(msg)
	return m, cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.runs.FilterState() == list.Filtering {
			break
		}
		m.view = m.historyFrom
		return m, nil
	}

	var cmd tea.Cmd
	m.runs, cmd = m.runs.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ResultView:
		m.unmatched, cmd = m.unmatched.Update(msg)
	case HistoryView:
		m.runs, cmd = m.runs.Update(msg)
	}
	return m, cmd
}

func (m *Model) reset() {
	m.view = ConfirmView
	m.progress = tasks.ProgressUpdate{}
	m.log = nil
	m.cancelled = false
	m.result = nil
	m.err = nil
	m.bar = progress.New(progress.WithDefaultGradient())
}

func (m *Model) appendLog(line string) {
	if line == "" {
		return
	}
	m.log = append(m.log, line)
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
}

// startRun launches the pipeline; updates are read one message at a time until the channel closes.
func (m *Model) startRun() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.view = ProgressView

	updates := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan, m.done = updates, done

	go func() {
		result, err := m.engine.Run(ctx, m.opts, updates)
		close(updates)
		done <- runCompleteMsg(result, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.progressChan, m.done
	return func() tea.Msg {
		if updates == nil {
			return nil
		}
		update, ok := <-updates
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) showHistory() tea.Cmd {
	if m.history == nil {
		return nil
	}
	m.historyFrom = m.view
	m.view = HistoryView
	history := m.history
	return func() tea.Msg {
		runs, err := history.Recent(historyLimit)
		return historyLoadedMsg(runs, err)
	}
}

func (m *Model) unmatchedRecords() []models.TrackRecord {
	if m.result == nil || m.result.Import == nil {
		return nil
	}
	return m.result.Import.Unmatched
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Transfer playlist")

	var b strings.Builder
	if m.opts.Stages.Extract {
		fmt.Fprintln(&b, field("Source", m.opts.Extract.URL))
		fmt.Fprintln(&b, field("CSV", m.opts.Extract.CSVPath))
	} else {
		fmt.Fprintln(&b, field("Input", m.opts.Import.Input))
	}
	if m.opts.Stages.Import {
		fmt.Fprintln(&b, field("Playlist", m.opts.Import.PlaylistName))
		fmt.Fprintln(&b, field("Threshold", fmt.Sprintf("%.0f%%", m.opts.Import.Threshold*100)))
	}
	fmt.Fprintln(&b, field("Stages", stagesLabel(m.opts)))

	helpKeys := []key.Binding{m.keys.yes, m.keys.quit}
	if m.history != nil {
		helpKeys = append(helpKeys, m.keys.history)
	}
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderProgress() string {
	title := styles.title.Render("Transferring playlist")

	phase := fmt.Sprintf("%s %s", m.spinner.View(), phaseLabel(m.progress))
	var bar string
	if m.progress.Total > 0 {
		bar = "\n" + m.bar.View() + "\n"
	}

	log := styles.help.Render(strings.Join(m.log, "\n"))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.cancel})
	if m.cancelled {
		helpView = styles.warn.Render("Cancelling, waiting for cleanup...")
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n\n%s", title, phase, bar, log, helpView)
}

func (m *Model) renderResult() string {
	var b strings.Builder

	switch {
	case m.err == nil:
		fmt.Fprintln(&b, styles.ok.Render("✓ Transfer complete"))
	case errors.Is(m.err, context.Canceled):
		fmt.Fprintln(&b, styles.warn.Render("Transfer cancelled"))
	default:
		fmt.Fprintln(&b, styles.err.Render(fmt.Sprintf("Transfer failed: %v", m.err)))
	}
	b.WriteString("\n")

	if m.result != nil && m.result.Extract != nil {
		ex := m.result.Extract
		fmt.Fprintln(&b, field("Extracted", fmt.Sprintf("%d tracks (%s)", len(ex.Records), ex.Strategy)))
		fmt.Fprintln(&b, field("Validation", ex.Validation.String()))
		fmt.Fprintln(&b, field("Saved", ex.CSVPath))
	}
	if m.result != nil && m.result.Import != nil {
		im := m.result.Import
		fmt.Fprintln(&b, field("Matched", im.Summary.String()))
		if im.PlaylistID != "" && m.err == nil {
			fmt.Fprintln(&b, field("Playlist", im.PlaylistID))
		}
		if im.UnmatchedPath != "" {
			fmt.Fprintln(&b, field("Unmatched", im.UnmatchedPath))
		}
	}

	var unmatched string
	if len(m.unmatchedRecords()) > 0 {
		unmatched = "\n" + m.unmatched.View()
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	if m.history != nil {
		helpKeys = append(helpKeys, m.keys.history)
	}
	return fmt.Sprintf("%s%s\n\n%s", b.String(), unmatched, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderHistory() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	if m.historyError != nil {
		return styles.err.Render(fmt.Sprintf("Could not load history: %v", m.historyError)) + "\n\n" + helpView
	}
	return fmt.Sprintf("%s\n\n%s", m.runs.View(), helpView)
}

func stagesLabel(opts tasks.RunOptions) string {
	switch {
	case opts.Stages.Extract && opts.Stages.Import:
		return "extract → import"
	case opts.Stages.Extract:
		return "extract only"
	case opts.Stages.Import:
		return "import only"
	default:
		return "none"
	}
}

func phaseLabel(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.LaunchBrowser:
		return "Launching browser..."
	case tasks.ExtractTracks:
		return "Loading playlist page..."
	case tasks.FetchTrackPages:
		return fmt.Sprintf("Fetching track pages (%d/%d)", u.Step, u.Total)
	case tasks.SearchTracks:
		return fmt.Sprintf("Searching catalog (%d/%d)", u.Step, u.Total)
	case tasks.AddTracks:
		return fmt.Sprintf("Adding tracks (batch %d/%d)", u.Step, u.Total)
	case tasks.Complete:
		return "Finishing..."
	default:
		if u.Message != "" {
			return u.Message
		}
		return "Starting..."
	}
}
