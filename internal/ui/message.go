package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/satseg/internal/tasks"
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
	MsgPipelineEvent MsgKind = iota
)

// pipelineEventMsg is the constructor for [MsgPipelineEvent]
func pipelineEventMsg(ev tasks.Event) Msg {
	return Msg{kind: MsgPipelineEvent, data: ev}
}
