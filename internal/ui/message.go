package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reminis/internal/models"
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
	MsgPhotosLoaded MsgKind = iota
	MsgPhotoDeleted
	MsgGallerySaved
)

// photosLoadedMsg is the constructor for [MsgPhotosLoaded]
func photosLoadedMsg(photos []models.Photo) Msg {
	return Msg{kind: MsgPhotosLoaded, data: photos}
}

// photoDeletedMsg is the constructor for [MsgPhotoDeleted]
func photoDeletedMsg(id string, deleted bool) Msg {
	return Msg{
		kind: MsgPhotoDeleted,
		data: struct {
			id      string
			deleted bool
		}{id, deleted},
	}
}

// gallerySavedMsg is the constructor for [MsgGallerySaved]
func gallerySavedMsg(id string, saved bool) Msg {
	return Msg{
		kind: MsgGallerySaved,
		data: struct {
			id    string
			saved bool
		}{id, saved},
	}
}
