// Nominatim reverse geocoding
//
// Response shape based on https://nominatim.org/release-docs/latest/api/Reverse/
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
)

// NominatimAddress is the addressdetails block of a reverse lookup.
type NominatimAddress struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Hamlet      string `json:"hamlet"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
}

// NominatimReverse is the jsonv2 response of /reverse.
type NominatimReverse struct {
	PlaceID     int64            `json:"place_id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Address     NominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

// Street joins the house number and road.
func (a NominatimAddress) Street() string {
	return strings.TrimSpace(a.HouseNumber + " " + a.Road)
}

// Locality returns the most specific populated settlement name.
func (a NominatimAddress) Locality() string {
	for _, s := range []string{a.City, a.Town, a.Village, a.Hamlet} {
		if s != "" {
			return s
		}
	}
	return ""
}

// FormatAddress joins the non-empty parts of r in display order.
func FormatAddress(r NominatimReverse) string {
	parts := []string{r.Name, r.Address.Street(), r.Address.Locality(), r.Address.State, r.Address.Postcode, r.Address.Country}

	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// NominatimGeocoder implements [Geocoder] against a Nominatim-compatible API.
type NominatimGeocoder struct {
	api *APIClient
}

// NewNominatimGeocoder creates a geocoder. Nominatim's usage policy requires an identifying User-Agent
// and at most one request per second, both of which are configured on api.
func NewNominatimGeocoder(api *APIClient) *NominatimGeocoder {
	return &NominatimGeocoder{api: api}
}

// Reverse looks up the address at coords.
func (g *NominatimGeocoder) Reverse(ctx context.Context, coords models.Coordinates) (string, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("addressdetails", "1")
	query.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))

	var resp NominatimReverse
	if err := g.api.GetJSON(ctx, "/reverse", query, &resp); err != nil {
		return "", err
	}

	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", shared.ErrAddressNotFound, resp.Error)
	}

	address := FormatAddress(resp)
	if address == "" {
		return "", fmt.Errorf("%w at %s", shared.ErrAddressNotFound, coords)
	}
	return address, nil
}
