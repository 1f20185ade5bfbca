package models

import (
	"fmt"
	"time"
)

// Coordinates is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that both components are within range.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", c.Longitude)
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f, %.5f", c.Latitude, c.Longitude)
}

// Photo is a single captured-photo entry with its metadata.
//
// Optional fields marshal as JSON null when absent.
type Photo struct {
	ID          string       `json:"id"`
	URI         string       `json:"uri"`
	Timestamp   int64        `json:"timestamp"` // milliseconds since epoch
	Coordinates *Coordinates `json:"coordinates"`
	Address     *string      `json:"address"`
	Weather     *string      `json:"weather"`
}

// NewPhoto builds a record stamped with createdAt.
func NewPhoto(id, uri string, createdAt time.Time, coords *Coordinates, address, weather *string) Photo {
	return Photo{
		ID:          id,
		URI:         uri,
		Timestamp:   createdAt.UnixMilli(),
		Coordinates: coords,
		Address:     address,
		Weather:     weather,
	}
}

// Clone returns a copy of p that shares no pointers with it.
func (p Photo) Clone() Photo {
	if p.Coordinates != nil {
		c := *p.Coordinates
		p.Coordinates = &c
	}
	if p.Address != nil {
		a := *p.Address
		p.Address = &a
	}
	if p.Weather != nil {
		w := *p.Weather
		p.Weather = &w
	}
	return p
}

// CreatedAt converts the millisecond timestamp back to a [time.Time].
func (p Photo) CreatedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// HasLocation reports whether the record carries coordinates.
func (p Photo) HasLocation() bool {
	return p.Coordinates != nil
}

// Validate checks the fields every persisted record must have.
func (p Photo) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("photo id is required")
	}
	if p.URI == "" {
		return fmt.Errorf("photo uri is required")
	}
	if p.Timestamp <= 0 {
		return fmt.Errorf("photo timestamp is required")
	}
	if p.Coordinates != nil {
		if err := p.Coordinates.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NotificationData is the payload attached to a notification.
type NotificationData struct {
	PhotoID string `json:"photoId"`
}

// Notification is a local, user-visible notification.
//
// TriggerAt is zero for notifications delivered immediately.
type Notification struct {
	Identifier string           `json:"identifier"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Data       NotificationData `json:"data"`
	TriggerAt  time.Time        `json:"trigger_at"`
}
