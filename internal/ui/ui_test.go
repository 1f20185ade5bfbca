package ui

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reminis/internal/media"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/photos"
	"github.com/desertthunder/reminis/internal/repositories"
	"github.com/desertthunder/reminis/internal/shared"
	tu "github.com/desertthunder/reminis/internal/testing"
)

func newTestModel(t *testing.T, library media.Library) (*Model, *photos.Store) {
	t.Helper()
	store := photos.NewStore(photos.StoreOpts{
		KV:      repositories.NewMemoryStore(),
		Files:   photos.NewFileStore(filepath.Join(t.TempDir(), "photos")),
		Library: library,
		Logger:  shared.NewLogger(&bytes.Buffer{}),
	})
	m := NewModel(context.Background(), store)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, store
}

func addPhoto(t *testing.T, store *photos.Store, coords *models.Coordinates, address string) models.Photo {
	t.Helper()
	var addr *string
	if address != "" {
		addr = &address
	}
	p, err := store.AddPhoto(context.Background(), tu.WriteCapture(t, t.TempDir(), "cap.jpg"), coords, addr, nil)
	if err != nil {
		t.Fatalf("failed to add photo: %v", err)
	}
	return p
}

// run executes cmd and feeds its message back into the model.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		m.Update(msg)
	}
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModel(t *testing.T) {
	t.Run("empty gallery", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		run(m, m.Init())

		if !strings.Contains(m.View(), "No memories yet") {
			t.Errorf("expected empty state, got:\n%s", m.View())
		}
	})

	t.Run("loads newest first", func(t *testing.T) {
		m, store := newTestModel(t, nil)
		addPhoto(t, store, nil, "")
		newest := addPhoto(t, store, nil, "")
		run(m, m.Init())

		if len(m.photos) != 2 {
			t.Fatalf("expected 2 photos, got %d", len(m.photos))
		}
		if p, ok := m.current(); !ok || p.ID != newest.ID {
			t.Errorf("expected newest selected, got %+v", p)
		}
	})

	t.Run("detail", func(t *testing.T) {
		m, store := newTestModel(t, nil)
		p := addPhoto(t, store, &models.Coordinates{Latitude: 40.73581, Longitude: -73.99155}, "123 Main St")
		run(m, m.Init())

		press(m, "enter")
		if m.view != DetailView || m.selected == nil || m.selected.ID != p.ID {
			t.Fatalf("expected detail of %s, got view %d", p.ID, m.view)
		}

		out := m.View()
		for _, want := range []string{"123 Main St", "40.73581, -73.99155", p.URI} {
			if !strings.Contains(out, want) {
				t.Errorf("detail missing %q:\n%s", want, out)
			}
		}

		press(m, "esc")
		if m.view != GalleryView || m.selected != nil {
			t.Error("esc should return to the gallery")
		}
	})

	t.Run("delete confirmed", func(t *testing.T) {
		m, store := newTestModel(t, nil)
		p := addPhoto(t, store, nil, "")
		run(m, m.Init())

		press(m, "d")
		if m.view != ConfirmDeleteView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Delete this memory?") {
			t.Errorf("unexpected confirm view:\n%s", m.View())
		}

		cmd := press(m, "y")
		run(m, cmd)
		run(m, m.loadPhotos())

		if store.Len() != 0 {
			t.Error("photo should be deleted")
		}
		tu.AssertFileMissing(t, p.URI)
		if m.view != GalleryView || m.status.text != "Memory deleted" {
			t.Errorf("unexpected state: view %d, status %q", m.view, m.status.text)
		}
		if len(m.photos) != 0 {
			t.Error("gallery should be reloaded")
		}
	})

	t.Run("delete cancelled returns to detail", func(t *testing.T) {
		m, store := newTestModel(t, nil)
		addPhoto(t, store, nil, "")
		run(m, m.Init())

		press(m, "enter")
		press(m, "d")
		press(m, "n")

		if m.view != DetailView || m.selected == nil {
			t.Errorf("expected detail view, got %d", m.view)
		}
		if store.Len() != 1 {
			t.Error("photo should be kept")
		}
	})

	t.Run("save to gallery", func(t *testing.T) {
		library := &tu.MockLibrary{Status: media.PermissionGranted}
		m, store := newTestModel(t, library)
		p := addPhoto(t, store, nil, "")
		run(m, m.Init())

		run(m, press(m, "s"))
		if m.status.text != "Saved to gallery" || m.status.err {
			t.Errorf("unexpected status %+v", m.status)
		}
		if len(library.Created) != 1 || library.Created[0] != p.URI {
			t.Errorf("unexpected assets: %v", library.Created)
		}
	})

	t.Run("save denied", func(t *testing.T) {
		m, store := newTestModel(t, &tu.MockLibrary{Status: media.PermissionDenied})
		addPhoto(t, store, nil, "")
		run(m, m.Init())

		press(m, "enter")
		run(m, press(m, "s"))
		if !m.status.err || !strings.Contains(m.View(), "Could not save to gallery") {
			t.Errorf("expected failure status, got %+v", m.status)
		}
	})

	t.Run("map", func(t *testing.T) {
		m, store := newTestModel(t, nil)
		coords := &models.Coordinates{Latitude: 40.73581, Longitude: -73.99155}
		addPhoto(t, store, coords, "")
		addPhoto(t, store, coords, "")
		addPhoto(t, store, nil, "")
		run(m, m.Init())

		press(m, "m")
		if m.view != MapView {
			t.Fatalf("expected map view, got %d", m.view)
		}
		if n := len(m.clusters.Items()); n != 1 {
			t.Fatalf("expected 1 cluster, got %d", n)
		}
		if out := m.View(); strings.Count(out, ", -73.99") != 2 {
			t.Errorf("expected two markers listed:\n%s", out)
		}

		press(m, "esc")
		if m.view != GalleryView {
			t.Error("esc should return to the gallery")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		cmd := press(m, "q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestPhotoItem(t *testing.T) {
	addr := "Paris, France"
	weather := "Clear sky • 21°C"

	t.Run("address and weather", func(t *testing.T) {
		item := photoItem{photo: models.Photo{ID: "a", Address: &addr, Weather: &weather}}
		if got := item.Description(); got != "Paris, France • Clear sky • 21°C" {
			t.Errorf("unexpected description %q", got)
		}
		if item.FilterValue() != addr {
			t.Errorf("unexpected filter value %q", item.FilterValue())
		}
	})

	t.Run("coordinates only", func(t *testing.T) {
		item := photoItem{photo: models.Photo{ID: "a", Coordinates: &models.Coordinates{Latitude: 1, Longitude: 2}}}
		if got := item.Description(); got != "1.00000, 2.00000" {
			t.Errorf("unexpected description %q", got)
		}
	})

	t.Run("nothing", func(t *testing.T) {
		item := photoItem{photo: models.Photo{ID: "a"}}
		if got := item.Description(); got != "-" {
			t.Errorf("unexpected description %q", got)
		}
	})
}
