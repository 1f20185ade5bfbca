package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/reminis/internal/formatter"
	"github.com/desertthunder/reminis/internal/geo"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
)

var (
	_ list.Item = photoItem{}
	_ list.Item = clusterItem{}
)

// photoItem wraps [models.Photo] to implement [list.Item].
type photoItem struct {
	photo models.Photo
}

func (i photoItem) FilterValue() string { return shared.Deref(i.photo.Address, i.photo.ID) }
func (i photoItem) Title() string       { return formatter.FormatTimestamp(i.photo) }
func (i photoItem) Description() string {
	desc := shared.Deref(i.photo.Address, formatter.Location(i.photo))
	if i.photo.Weather != nil {
		desc = fmt.Sprintf("%s • %s", desc, *i.photo.Weather)
	}
	return desc
}

// clusterItem wraps [geo.Cluster] to implement [list.Item].
type clusterItem struct {
	cluster geo.Cluster
}

func (i clusterItem) FilterValue() string { return i.cluster.Key }
func (i clusterItem) Title() string       { return i.cluster.Key }
func (i clusterItem) Description() string {
	if i.cluster.Size() == 1 {
		return "1 memory"
	}
	return fmt.Sprintf("%d memories", i.cluster.Size())
}

func photoItems(photos []models.Photo) []list.Item {
	items := make([]list.Item, len(photos))
	for i, p := range photos {
		items[i] = photoItem{photo: p}
	}
	return items
}

func clusterItems(clusters []geo.Cluster) []list.Item {
	items := make([]list.Item, len(clusters))
	for i, c := range clusters {
		items[i] = clusterItem{cluster: c}
	}
	return items
}
