// Package geo groups photos that share a location so map markers stay individually selectable.
package geo

import (
	"fmt"
	"math"

	"github.com/desertthunder/reminis/internal/models"
)

const (
	// Precision is the number of decimal places coordinates are rounded to before grouping (~1.1m).
	Precision = 5
	// BaselineRadius is the distance in degrees members of a shared location are spread from its anchor.
	BaselineRadius = 0.00015
)

// Marker places one photo on the map.
type Marker struct {
	Photo     models.Photo `json:"photo"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
}

// Cluster is the set of photos sharing a rounded location.
type Cluster struct {
	Key       string   `json:"key"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Markers   []Marker `json:"markers"`
}

// Size is the number of photos in the cluster.
func (c Cluster) Size() int {
	return len(c.Markers)
}

// Key formats the rounded "lat,lon" pair for c.
func Key(c models.Coordinates) string {
	return fmt.Sprintf("%.*f,%.*f", Precision, c.Latitude, Precision, c.Longitude)
}

// Round rounds v to [Precision] decimal places.
func Round(v float64) float64 {
	scale := math.Pow10(Precision)
	return math.Round(v*scale) / scale
}

// Offset returns the displacement of member index in a cluster of total members.
//
// Members are spread evenly on a circle of [BaselineRadius]; a single member is not displaced.
func Offset(index, total int) (dLat, dLon float64) {
	if total <= 1 {
		return 0, 0
	}
	theta := 2 * math.Pi * float64(index) / float64(total)
	return BaselineRadius * math.Sin(theta), BaselineRadius * math.Cos(theta)
}

// GroupByLocation clusters photos by rounded coordinates.
//
// Clusters are returned in order of first appearance and keep collection order internally.
// Photos without coordinates are skipped.
func GroupByLocation(photos []models.Photo) []Cluster {
	index := make(map[string]int)
	var clusters []Cluster

	for _, p := range photos {
		if p.Coordinates == nil {
			continue
		}

		key := Key(*p.Coordinates)
		i, ok := index[key]
		if !ok {
			i = len(clusters)
			index[key] = i
			clusters = append(clusters, Cluster{
				Key:       key,
				Latitude:  Round(p.Coordinates.Latitude),
				Longitude: Round(p.Coordinates.Longitude),
			})
		}
		clusters[i].Markers = append(clusters[i].Markers, Marker{Photo: p})
	}

	for i := range clusters {
		c := &clusters[i]
		for j := range c.Markers {
			dLat, dLon := Offset(j, len(c.Markers))
			c.Markers[j].Latitude = c.Latitude + dLat
			c.Markers[j].Longitude = c.Longitude + dLon
		}
	}

	return clusters
}

// WithLocation filters photos down to those carrying coordinates.
func WithLocation(photos []models.Photo) []models.Photo {
	var out []models.Photo
	for _, p := range photos {
		if p.HasLocation() {
			out = append(out, p)
		}
	}
	return out
}

// Center returns the point a map should open on: the most recent located photo, or fallback.
func Center(photos []models.Photo, fallback models.Coordinates) models.Coordinates {
	for _, p := range photos {
		if p.Coordinates != nil {
			return *p.Coordinates
		}
	}
	return fallback
}
