// Package ui implements an interactive terminal gallery using bubbletea's Elm architecture.
//
// The TUI provides a small photo journal browser:
//  1. [GalleryView] : Browse memories, newest first
//  2. [DetailView] : Capture time, location, address and weather of one memory
//  3. [ConfirmDeleteView] : Confirm removal of a memory and its image
//  4. [MapView] : Shared-location clusters with their marker positions
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Store operations run as [tea.Cmd]s so slow disk or library access never blocks rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
