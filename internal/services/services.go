// package services defines interfaces for the HTTP APIs that enrich a capture
//
// Nominatim, Open-Meteo, Identity Toolkit
package services

import (
	"context"

	"github.com/desertthunder/reminis/internal/models"
)

// Geocoder resolves coordinates to a human-readable address.
type Geocoder interface {
	// Reverse returns the address at coords or an error wrapping [shared.ErrAddressNotFound].
	Reverse(ctx context.Context, coords models.Coordinates) (string, error)
}

// WeatherProvider describes the current weather at a location.
type WeatherProvider interface {
	// Current returns a short description such as "Clear • 18°C".
	Current(ctx context.Context, coords models.Coordinates) (string, error)
}
