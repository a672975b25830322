package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/satseg/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PickerView ViewState = iota
	PanesView
)

// ImageTypes are the extensions offered by the file picker.
var ImageTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	controller *tasks.Controller
	state      tasks.State
	picker     filepicker.Model
	spinner    spinner.Model
	width      int
	height     int
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model that browses dir and uploads through controller.
func NewModel(ctx context.Context, controller *tasks.Controller, dir string) *Model {
	fp := filepicker.New()
	fp.AllowedTypes = ImageTypes
	fp.CurrentDirectory = dir

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.warn

	return &Model{
		ctx:        ctx,
		view:       PickerView,
		controller: controller,
		state:      controller.State(),
		picker:     fp,
		spinner:    s,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by listing the starting directory.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.picker.Init(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		if m.view == PanesView {
			return m.handlePanesKeys(msg)
		}
		if key.Matches(msg, m.keys.back) && m.state.Phase != tasks.Idle {
			m.view = PanesView
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgPipelineEvent:
			next := m.controller.Dispatch(msg.data.(tasks.Event))
			m.state = m.controller.State()
			return m, m.stage(next)
		}
		return m, nil
	}

	return m.updatePicker(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PickerView:
		return m.renderPicker()
	case PanesView:
		return m.renderPanes()
	default:
		return ""
	}
}

func (m *Model) handlePanesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.open) {
		m.view = PickerView
		return m, m.picker.Init()
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.view = PanesView
		return m, tea.Batch(cmd, m.selectFile(path))
	}
	return m, cmd
}

// selectFile hands the chosen file to the controller and schedules its read.
func (m *Model) selectFile(path string) tea.Cmd {
	next := m.controller.Select(tasks.LocalFile{Path: path})
	m.state = m.controller.State()
	return m.stage(next)
}

// stage wraps a pipeline stage as a [tea.Cmd] that feeds its event back into Update.
func (m *Model) stage(cmd tasks.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return pipelineEventMsg(cmd(ctx))
	}
}

func (m *Model) renderPicker() string {
	title := styles.title.Render("Choose a satellite image")
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	if m.state.Phase != tasks.Idle {
		helpKeys = append(helpKeys, m.keys.back)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.picker.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderPanes() string {
	panes := RenderPanes(m.state, m.width)

	status := ""
	if m.state.Phase.Busy() {
		status = fmt.Sprintf("\n%s %s", m.spinner.View(), styles.warn.Render(pendingText))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", panes, status, helpView)
}
