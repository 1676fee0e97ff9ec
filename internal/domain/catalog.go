package domain

import (
	"fmt"
	"time"
)

// Catalog is an ordered collection of observations. Callers append in
// ascending time order; Process relies on that ordering.
type Catalog struct {
	observations []Observation
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// NewCatalogFrom creates a catalog holding a copy of observations.
func NewCatalogFrom(observations []Observation) *Catalog {
	c := &Catalog{observations: make([]Observation, len(observations))}
	copy(c.observations, observations)
	return c
}

// AddEntry appends one observation.
func (c *Catalog) AddEntry(o Observation) {
	c.observations = append(c.observations, o)
}

// RemoveEntry deletes the observation at index i.
func (c *Catalog) RemoveEntry(i int) error {
	if i < 0 || i >= len(c.observations) {
		return fmt.Errorf("remove entry %d of %d: %w", i, len(c.observations), ErrIndexOutOfRange)
	}
	c.observations = append(c.observations[:i], c.observations[i+1:]...)
	return nil
}

// RemoveEntriesBy removes every observation whose epicenter falls in
// [lon.Min, lon.Max) x [lat.Min, lat.Max) and returns how many were removed.
func (c *Catalog) RemoveEntriesBy(lon, lat Range) int {
	box := Box{Longitude: lon, Latitude: lat}

	kept := make([]Observation, 0, len(c.observations))
	for _, o := range c.observations {
		if !box.Contains(o) {
			kept = append(kept, o)
		}
	}

	removed := len(c.observations) - len(kept)
	c.observations = kept
	return removed
}

// Count returns the number of observations with begin <= time < end.
func (c *Catalog) Count(begin, end time.Time) int {
	n := 0
	for _, o := range c.observations {
		if inWindow(o.Time, begin, end) {
			n++
		}
	}
	return n
}

// Energy returns the summed energy of observations with begin <= time < end.
func (c *Catalog) Energy(begin, end time.Time) float64 {
	var total float64
	for _, o := range c.observations {
		if inWindow(o.Time, begin, end) {
			total += MagnitudeToEnergy(o.Magnitude)
		}
	}
	return total
}

// Len returns the number of observations.
func (c *Catalog) Len() int {
	return len(c.observations)
}

// At returns the observation at index i. It panics if i is out of range.
func (c *Catalog) At(i int) Observation {
	return c.observations[i]
}

// Observations returns a copy of the catalog contents.
func (c *Catalog) Observations() []Observation {
	out := make([]Observation, len(c.observations))
	copy(out, c.observations)
	return out
}

// Extent returns the first and last observation times. ok is false for an
// empty catalog.
func (c *Catalog) Extent() (first, last time.Time, ok bool) {
	if len(c.observations) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return c.observations[0].Time, c.observations[len(c.observations)-1].Time, true
}

func inWindow(t, begin, end time.Time) bool {
	return !t.Before(begin) && t.Before(end)
}
