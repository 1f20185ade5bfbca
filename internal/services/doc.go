// Package services implements the upstream providers that give a capture its context, and the account backend.
//
// # API Client
//
// [APIClient] is the JSON-over-HTTP client every provider is built on. It sets the User-Agent,
// waits on an optional [rate.Limiter] before each request and converts non-2xx responses into an [*APIError].
//
// # Reverse Geocoding
//
// [NominatimGeocoder] resolves coordinates to a human-readable address against a Nominatim-compatible
// endpoint. The address is the non-empty parts of name, street, city, region, postal code and country,
// joined with ", ". A lookup with no usable parts fails with [shared.ErrAddressNotFound].
//
// # Weather
//
// [OpenMeteoProvider] reads current conditions from an Open-Meteo-compatible endpoint and formats them
// as "<Condition> • <T>°C", using the WMO weather interpretation codes.
//
// # Accounts
//
// [AuthService] signs users up and in with email and password against an Identity-Toolkit-compatible
// REST backend. Sessions carry an [oauth2.Token]; refreshing goes through an [oauth2.TokenSource]
// bound to the secure token endpoint. The session is persisted in the key-value store.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrServiceUnavailable] : upstream throttled or down (429, 5xx)
//   - [shared.ErrAddressNotFound] : reverse geocoding produced no address
//   - [shared.ErrNotAuthenticated] : no stored session
//   - [shared.ErrInvalidCredentials] : backend rejected the email/password pair
package services
