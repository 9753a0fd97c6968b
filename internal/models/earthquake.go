package models

import (
	"math"
	"time"
)

type EarthquakeEvent struct {
	ID        string    // feed event id (e.g., "us7000abcd")
	Time      time.Time // when the event occurred, zero if the feed time was unusable
	Latitude  float64
	Longitude float64
	Depth     *float64 // km, nil when absent
	Magnitude *float64 // nil when absent
	Place     string   // e.g., "10 km SSW of Ridgecrest, CA"
	Tsunami   bool
	Felt      *int // number of felt reports, nil when absent
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (e *EarthquakeEvent) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
	}
}

// HasTime reports whether the feed supplied a usable occurrence time.
func (e *EarthquakeEvent) HasTime() bool {
	return !e.Time.IsZero()
}

// Controls are the user-facing inputs of one refresh cycle.
type Controls struct {
	MinMagnitude float64 `json:"min_magnitude"`
	Limit        int     `json:"limit"`
	WindowHours  int     `json:"window_hours"` // 0 means no time window
}

const (
	MinMagnitudeFloor   = 0.0
	MinMagnitudeCeiling = 10.0
)

// LimitChoices mirrors the event-count selector offered in the UI.
var LimitChoices = []int{50, 100, 250, 500}

// Normalize replaces out-of-range values with the given defaults.
func (c Controls) Normalize(defaults Controls, maxLimit int) Controls {
	if math.IsNaN(c.MinMagnitude) || c.MinMagnitude < MinMagnitudeFloor || c.MinMagnitude > MinMagnitudeCeiling {
		c.MinMagnitude = defaults.MinMagnitude
	}
	if c.Limit < 1 || c.Limit > maxLimit {
		c.Limit = defaults.Limit
	}
	if c.WindowHours < 0 {
		c.WindowHours = defaults.WindowHours
	}
	return c
}

// Float returns a pointer to v, for building events with known values.
func Float(v float64) *float64 {
	return &v
}
