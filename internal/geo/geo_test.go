package geo

import (
	"math"
	"testing"

	"github.com/desertthunder/reminis/internal/models"
)

func photoAt(id string, lat, lon float64) models.Photo {
	return models.Photo{ID: id, URI: "/p/" + id + ".jpg", Timestamp: 1, Coordinates: &models.Coordinates{Latitude: lat, Longitude: lon}}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestGroupByLocation(t *testing.T) {
	t.Run("shared location clusters with distinct offsets", func(t *testing.T) {
		photos := []models.Photo{
			photoAt("a", 40.73581000, -73.99155000),
			photoAt("b", 40.73581004, -73.99155004),
			photoAt("c", 10.0, 10.0),
		}

		clusters := GroupByLocation(photos)
		if len(clusters) != 2 {
			t.Fatalf("expected 2 clusters, got %d", len(clusters))
		}

		shared := clusters[0]
		if shared.Key != "40.73581,-73.99155" {
			t.Errorf("unexpected key: %s", shared.Key)
		}
		if shared.Size() != 2 {
			t.Fatalf("expected 2 members, got %d", shared.Size())
		}
		if shared.Markers[0].Photo.ID != "a" || shared.Markers[1].Photo.ID != "b" {
			t.Errorf("members should keep collection order")
		}

		m0, m1 := shared.Markers[0], shared.Markers[1]
		if almostEqual(m0.Latitude, m1.Latitude) && almostEqual(m0.Longitude, m1.Longitude) {
			t.Error("members of a shared cluster must receive distinct positions")
		}

		// θ=0 displaces longitude only, θ=π displaces it the other way
		if !almostEqual(m0.Longitude, -73.99155+BaselineRadius) || !almostEqual(m0.Latitude, 40.73581) {
			t.Errorf("unexpected first marker position: %v,%v", m0.Latitude, m0.Longitude)
		}
		if !almostEqual(m1.Longitude, -73.99155-BaselineRadius) {
			t.Errorf("unexpected second marker longitude: %v", m1.Longitude)
		}

		single := clusters[1]
		if single.Key != "10.00000,10.00000" {
			t.Errorf("unexpected key: %s", single.Key)
		}
		if single.Size() != 1 {
			t.Fatalf("expected singleton, got %d", single.Size())
		}
		if single.Markers[0].Latitude != 10.0 || single.Markers[0].Longitude != 10.0 {
			t.Errorf("singleton should have zero offset, got %v,%v", single.Markers[0].Latitude, single.Markers[0].Longitude)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		photos := []models.Photo{photoAt("a", 1, 1), photoAt("b", 1, 1), photoAt("c", 1, 1)}
		first := GroupByLocation(photos)
		second := GroupByLocation(photos)

		for i := range first[0].Markers {
			if first[0].Markers[i] != second[0].Markers[i] {
				t.Fatalf("marker %d differs between runs", i)
			}
		}
	})

	t.Run("skips photos without coordinates", func(t *testing.T) {
		photos := []models.Photo{{ID: "x", URI: "/p/x.jpg", Timestamp: 1}, photoAt("y", 0, 0)}
		clusters := GroupByLocation(photos)
		if len(clusters) != 1 || clusters[0].Markers[0].Photo.ID != "y" {
			t.Errorf("unexpected clusters: %+v", clusters)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		if clusters := GroupByLocation(nil); len(clusters) != 0 {
			t.Errorf("expected no clusters, got %d", len(clusters))
		}
	})
}

func TestOffset(t *testing.T) {
	tc := []struct {
		name  string
		index int
		total int
	}{
		{name: "single", index: 0, total: 1},
		{name: "zero total", index: 0, total: 0},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if dLat, dLon := Offset(tt.index, tt.total); dLat != 0 || dLon != 0 {
				t.Errorf("expected no offset, got %v,%v", dLat, dLon)
			}
		})
	}

	t.Run("members lie on the baseline circle", func(t *testing.T) {
		seen := make(map[[2]float64]bool)
		for i := 0; i < 4; i++ {
			dLat, dLon := Offset(i, 4)
			if r := math.Hypot(dLat, dLon); !almostEqual(r, BaselineRadius) {
				t.Errorf("member %d radius = %v", i, r)
			}
			key := [2]float64{math.Round(dLat * 1e9), math.Round(dLon * 1e9)}
			if seen[key] {
				t.Errorf("member %d shares a position", i)
			}
			seen[key] = true
		}
	})
}

func TestCenterAndFilter(t *testing.T) {
	photos := []models.Photo{{ID: "x", URI: "/x", Timestamp: 1}, photoAt("y", 5, 6), photoAt("z", 7, 8)}

	if got := WithLocation(photos); len(got) != 2 {
		t.Errorf("expected 2 located photos, got %d", len(got))
	}

	fallback := models.Coordinates{Latitude: 40.73581, Longitude: -73.99155}
	if got := Center(photos, fallback); got.Latitude != 5 || got.Longitude != 6 {
		t.Errorf("expected newest located photo as center, got %v", got)
	}
	if got := Center(nil, fallback); got != fallback {
		t.Errorf("expected fallback center, got %v", got)
	}
}
