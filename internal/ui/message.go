package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodtune/internal/models"
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
	MsgStateChanged MsgKind = iota
	MsgUploadReady
)

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg() Msg {
	return Msg{kind: MsgStateChanged}
}

type uploadReady struct {
	upload models.Upload
	err    error
}

// uploadReadyMsg is the constructor for [MsgUploadReady]
func uploadReadyMsg(upload models.Upload, err error) Msg {
	return Msg{kind: MsgUploadReady, data: uploadReady{upload, err}}
}
