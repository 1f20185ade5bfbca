package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/reminis/internal/formatter"
	"github.com/desertthunder/reminis/internal/geo"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GalleryView ViewState = iota
	DetailView
	ConfirmDeleteView
	MapView
)

// Store is the photo collection the gallery browses.
type Store interface {
	Photos() []models.Photo
	DeletePhoto(ctx context.Context, id string) bool
	SaveToGallery(ctx context.Context, id string) bool
	Clusters() []geo.Cluster
}

type status struct {
	text string
	err  bool
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	returnTo ViewState
	store    Store
	width    int
	height   int
	gallery  list.Model
	clusters list.Model
	photos   []models.Photo
	selected *models.Photo
	status   status
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model browsing store.
func NewModel(ctx context.Context, store Store) *Model {
	gallery := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	gallery.Title = "Memories"
	gallery.SetShowHelp(false)

	clusters := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	clusters.Title = "Places"
	clusters.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		view:     GalleryView,
		store:    store,
		gallery:  gallery,
		clusters: clusters,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads the collection.
func (m *Model) Init() tea.Cmd {
	return m.loadPhotos()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gallery.SetSize(msg.Width-4, msg.Height-8)
		m.clusters.SetSize(msg.Width-4, msg.Height-12)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GalleryView:
			return m.handleGalleryKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		case MapView:
			return m.handleMapKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPhotosLoaded:
		m.photos = msg.data.([]models.Photo)
		return m, m.gallery.SetItems(photoItems(m.photos))

	case MsgPhotoDeleted:
		data := msg.data.(struct {
			id      string
			deleted bool
		})
		m.selected = nil
		m.view = GalleryView
		if !data.deleted {
			m.status = status{text: "Memory not found", err: true}
			return m, m.loadPhotos()
		}
		m.status = status{text: "Memory deleted"}
		return m, m.loadPhotos()

	case MsgGallerySaved:
		data := msg.data.(struct {
			id    string
			saved bool
		})
		if data.saved {
			m.status = status{text: "Saved to gallery"}
		} else {
			m.status = status{text: "Could not save to gallery", err: true}
		}
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case GalleryView:
		body = m.renderGallery()
	case DetailView:
		body = m.renderDetail()
	case ConfirmDeleteView:
		body = m.renderConfirm()
	case MapView:
		body = m.renderMap()
	}

	if m.status.text == "" {
		return body
	}
	line := styles.ok.Render(m.status.text)
	if m.status.err {
		line = styles.err.Render(m.status.text)
	}
	return fmt.Sprintf("%s\n%s", body, line)
}

func (m *Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gallery.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.gallery, cmd = m.gallery.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if p, ok := m.current(); ok {
			m.selected = &p
			m.status = status{}
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if p, ok := m.current(); ok {
			m.selected = &p
			m.returnTo = GalleryView
			m.view = ConfirmDeleteView
		}
		return m, nil
	case key.Matches(msg, m.keys.save):
		if p, ok := m.current(); ok {
			return m, m.saveToGallery(p.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.mapView):
		m.status = status{}
		m.view = MapView
		return m, m.clusters.SetItems(clusterItems(m.store.Clusters()))
	case key.Matches(msg, m.keys.refresh):
		m.status = status{}
		return m, m.loadPhotos()
	}

	var cmd tea.Cmd
	m.gallery, cmd = m.gallery.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.selected = nil
		m.status = status{}
		m.view = GalleryView
	case key.Matches(msg, m.keys.save):
		return m, m.saveToGallery(m.selected.ID)
	case key.Matches(msg, m.keys.remove):
		m.returnTo = DetailView
		m.view = ConfirmDeleteView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deletePhoto(m.selected.ID)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = m.returnTo
		if m.view == GalleryView {
			m.selected = nil
		}
	}
	return m, nil
}

func (m *Model) handleMapKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = GalleryView
		return m, nil
	}

	var cmd tea.Cmd
	m.clusters, cmd = m.clusters.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GalleryView:
		m.gallery, cmd = m.gallery.Update(msg)
	case MapView:
		m.clusters, cmd = m.clusters.Update(msg)
	}
	return m, cmd
}

func (m *Model) current() (models.Photo, bool) {
	item, ok := m.gallery.SelectedItem().(photoItem)
	if !ok {
		return models.Photo{}, false
	}
	return item.photo, true
}

func (m *Model) loadPhotos() tea.Cmd {
	return func() tea.Msg {
		return photosLoadedMsg(m.store.Photos())
	}
}

func (m *Model) deletePhoto(id string) tea.Cmd {
	return func() tea.Msg {
		return photoDeletedMsg(id, m.store.DeletePhoto(m.ctx, id))
	}
}

func (m *Model) saveToGallery(id string) tea.Cmd {
	return func() tea.Msg {
		return gallerySavedMsg(id, m.store.SaveToGallery(m.ctx, id))
	}
}

func (m *Model) renderGallery() string {
	if len(m.photos) == 0 {
		title := styles.title.Render("Memories")
		empty := styles.help.Render("No memories yet. Capture one with `reminis photos add`.")
		return fmt.Sprintf("%s\n%s\n\n%s", title, empty, m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit}))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.save, m.keys.remove, m.keys.mapView, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.gallery.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	p := m.selected
	title := styles.title.Render(formatter.FormatTimestamp(*p))

	rows := []string{
		row("Location", formatter.Location(*p)),
		row("Address", shared.Deref(p.Address, "-")),
		row("Weather", shared.Deref(p.Weather, "-")),
		row("File", p.URI),
		row("ID", p.ID),
	}

	helpKeys := []key.Binding{m.keys.save, m.keys.remove, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", title, strings.Join(rows, "\n"), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Delete this memory?")
	info := fmt.Sprintf("%s\n%s\n\n%s",
		formatter.FormatTimestamp(*m.selected),
		shared.Deref(m.selected.Address, formatter.Location(*m.selected)),
		styles.warn.Render("The image file is removed as well."),
	)
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderMap() string {
	if len(m.clusters.Items()) == 0 {
		title := styles.title.Render("Places")
		empty := styles.help.Render("No memories with a location.")
		return fmt.Sprintf("%s\n%s\n\n%s", title, empty, m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	}

	var markers []string
	if item, ok := m.clusters.SelectedItem().(clusterItem); ok {
		for _, mk := range item.cluster.Markers {
			markers = append(markers, fmt.Sprintf("  • %.6f, %.6f  %s", mk.Latitude, mk.Longitude, formatter.FormatTimestamp(mk.Photo)))
		}
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", m.clusters.View(), strings.Join(markers, "\n"), m.help.ShortHelpView(helpKeys))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), value)
}
