package tui

import "gitlab.com/dirk.krummacker/records-service/internal/controller"

// Pane identifies which pane has keyboard focus.
type Pane int

const (
	PaneForm  Pane = iota // The record form has focus.
	PaneTable             // The records table has focus.
)

// RecordsLoadedMsg carries the result of loading the records from the store.
type RecordsLoadedMsg struct {
	Err error
}

// RecordSavedMsg carries the result of saving the draft.
type RecordSavedMsg struct {
	Result controller.SaveResult
	Err    error
}
