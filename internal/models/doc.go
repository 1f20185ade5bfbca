// Package models defines the value types of the photo journal.
//
//   - [Photo] : a captured photo record with optional location, address and weather context
//   - [Coordinates] : a latitude/longitude pair
//   - [Notification] : a local notification raised for a photo
//
// Records are immutable once created; JSON field names are part of the persisted format.
package models
