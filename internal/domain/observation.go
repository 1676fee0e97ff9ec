package domain

import "time"

// Observation is a single seismic event from the source catalog.
type Observation struct {
	Name                string    `json:"name"`
	Time                time.Time `json:"time"`
	Longitude           float64   `json:"longitude"`
	Latitude            float64   `json:"latitude"`
	Magnitude           float64   `json:"magnitude"`
	Depth               float64   `json:"depth"` // km
	LocationDescription string    `json:"location_description,omitempty"`
}

// Range is a half-open interval [Min, Max) over degrees.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max). An inverted or empty
// range contains nothing.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v < r.Max
}

// Box is a rectangular longitude/latitude region used for bulk exclusion.
type Box struct {
	Longitude Range `json:"longitude"`
	Latitude  Range `json:"latitude"`
}

// Contains reports whether the observation's epicenter lies inside the box.
func (b Box) Contains(o Observation) bool {
	return b.Longitude.Contains(o.Longitude) && b.Latitude.Contains(o.Latitude)
}

// Point is one (timestamp, value) sample of a derived series.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
