// Open-Meteo current conditions
//
// See https://open-meteo.com/en/docs
package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/desertthunder/reminis/internal/models"
)

// wmoConditions maps WMO weather interpretation codes to a short label.
var wmoConditions = map[int]string{
	0:  "Clear",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Fog",
	51: "Drizzle",
	53: "Drizzle",
	55: "Drizzle",
	56: "Freezing drizzle",
	57: "Freezing drizzle",
	61: "Rain",
	63: "Rain",
	65: "Heavy rain",
	66: "Freezing rain",
	67: "Freezing rain",
	71: "Snow",
	73: "Snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Rain showers",
	81: "Rain showers",
	82: "Rain showers",
	85: "Snow showers",
	86: "Snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Thunderstorm with hail",
}

// Condition returns the label for a WMO code.
func Condition(code int) string {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return "Unknown"
}

// FormatWeather renders a condition code and temperature as "<Condition> • <T>°C".
func FormatWeather(code int, celsius float64) string {
	t := math.Round(celsius)
	if t == 0 {
		t = 0 // avoid "-0"
	}
	return fmt.Sprintf("%s • %.0f°C", Condition(code), t)
}

// OpenMeteoCurrent is the "current" block of a forecast response.
type OpenMeteoCurrent struct {
	Time          string  `json:"time"`
	Temperature2m float64 `json:"temperature_2m"`
	WeatherCode   int     `json:"weather_code"`
}

// OpenMeteoForecast is the subset of /v1/forecast used here.
type OpenMeteoForecast struct {
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Current   OpenMeteoCurrent `json:"current"`
}

// OpenMeteoProvider implements [WeatherProvider].
type OpenMeteoProvider struct {
	api *APIClient
}

func NewOpenMeteoProvider(api *APIClient) *OpenMeteoProvider {
	return &OpenMeteoProvider{api: api}
}

// Current fetches and formats the current weather at coords.
func (p *OpenMeteoProvider) Current(ctx context.Context, coords models.Coordinates) (string, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	query.Set("current", "temperature_2m,weather_code")
	query.Set("temperature_unit", "celsius")

	var resp OpenMeteoForecast
	if err := p.api.GetJSON(ctx, "/v1/forecast", query, &resp); err != nil {
		return "", err
	}

	return FormatWeather(resp.Current.WeatherCode, resp.Current.Temperature2m), nil
}
