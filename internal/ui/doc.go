// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [PickerView] : Browse the file system and choose a satellite image
//  2. [PanesView] : The "Satellite image" and "Segments" panels side by side
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern. Pipeline stages returned by
// [tasks.Controller] are run as tea.Cmds and their events come back through the Msg union type, so the
// controller stays the single owner of the upload state.
//
// [RenderPanes] is a pure function of [tasks.State] and does not depend on the model.
package ui
