package domain

import (
	"fmt"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
)

// Default sampling parameters for the rolling series.
const (
	DefaultWindowHours = 4.0
	DefaultStep        = time.Hour
)

// Options controls the rolling-window resampling.
type Options struct {
	// WindowHours is the averaging window W, centered on each grid point.
	WindowHours float64
	// Step is the spacing of the sampling grid.
	Step time.Duration
}

// DefaultOptions returns a four-hour window sampled hourly.
func DefaultOptions() Options {
	return Options{WindowHours: DefaultWindowHours, Step: DefaultStep}
}

// Report is the read-only output of Process. It holds no reference to the
// catalog it was derived from.
type Report struct {
	RunID            string        `json:"run_id"`
	GeneratedAt      time.Time     `json:"generated_at"`
	WindowHours      float64       `json:"window_hours"`
	Step             time.Duration `json:"step"`
	Begin            time.Time     `json:"begin"`
	End              time.Time     `json:"end"`
	ObservationCount int           `json:"observation_count"`

	// TimeAndCounts is the average events-per-hour rate at every grid point.
	TimeAndCounts []Point `json:"time_and_counts"`
	// TimeAndSummedMagnitudes holds the window energy as magnitude, only at
	// grid points where that magnitude is positive.
	TimeAndSummedMagnitudes []Point `json:"time_and_summed_magnitudes"`
	// CumulativeMagnitudes has one point per observation: the energy released
	// from that observation to the end of the catalog, as magnitude.
	CumulativeMagnitudes []Point `json:"cumulative_magnitudes"`
}

// Series names used when a report is flattened for transport.
const (
	SeriesCounts     = "time_and_counts"
	SeriesMagnitudes = "time_and_summed_magnitudes"
	SeriesCumulative = "cumulative_magnitudes"
)

// Series returns the named series, or nil for an unknown name.
func (r Report) Series(name string) []Point {
	switch name {
	case SeriesCounts:
		return r.TimeAndCounts
	case SeriesMagnitudes:
		return r.TimeAndSummedMagnitudes
	case SeriesCumulative:
		return r.CumulativeMagnitudes
	default:
		return nil
	}
}

// PointCount returns the total number of points across all three series.
func (r Report) PointCount() int {
	return len(r.TimeAndCounts) + len(r.TimeAndSummedMagnitudes) + len(r.CumulativeMagnitudes)
}

// Process derives the rolling count, rolling energy and cumulative energy
// series from the catalog's current contents. The catalog must be non-empty
// and sorted by time.
func Process(c *Catalog, opts Options) (Report, error) {
	if opts.WindowHours <= 0 || opts.Step <= 0 {
		return Report{}, fmt.Errorf("window %g h, step %s: %w", opts.WindowHours, opts.Step, ErrInvalidOptions)
	}
	if c.Len() == 0 {
		return Report{}, ErrEmptyCatalog
	}
	if i := firstUnsorted(c.observations); i >= 0 {
		return Report{}, fmt.Errorf("observation %d is earlier than observation %d: %w", i, i-1, ErrUnsortedCatalog)
	}

	first, last, _ := c.Extent()
	grid := MakeTimeRange(first, last.Add(opts.Step), opts.Step)

	counts, magnitudes := rollingSeries(c.observations, grid, opts.WindowHours)

	return Report{
		RunID:                   uuid.NewString(),
		GeneratedAt:             clock.Now().UTC(),
		WindowHours:             opts.WindowHours,
		Step:                    opts.Step,
		Begin:                   first,
		End:                     last,
		ObservationCount:        c.Len(),
		TimeAndCounts:           counts,
		TimeAndSummedMagnitudes: magnitudes,
		CumulativeMagnitudes:    cumulativeMagnitudes(c.observations),
	}, nil
}

// rollingSeries slides a [t-W/2, t+W/2) window across the ascending grid.
// Both window edges only move forward, so each observation enters and leaves
// the deque once. Energy is summed over the window contents in time order,
// which matches Catalog.Energy exactly.
func rollingSeries(observations []Observation, grid []time.Time, windowHours float64) (counts, magnitudes []Point) {
	half := time.Duration(windowHours / 2 * float64(time.Hour))

	counts = make([]Point, 0, len(grid))
	magnitudes = make([]Point, 0, len(grid))

	var window deque.Deque[Observation]
	next := 0
	for _, t := range grid {
		begin, end := t.Add(-half), t.Add(half)

		for next < len(observations) && observations[next].Time.Before(end) {
			window.PushBack(observations[next])
			next++
		}
		for window.Len() > 0 && window.Front().Time.Before(begin) {
			window.PopFront()
		}

		var energy float64
		for i := 0; i < window.Len(); i++ {
			energy += MagnitudeToEnergy(window.At(i).Magnitude)
		}

		counts = append(counts, Point{Time: t, Value: float64(window.Len()) / windowHours})

		if m := EnergyToMagnitude(energy); m > 0 {
			magnitudes = append(magnitudes, Point{Time: t, Value: m})
		}
	}
	return counts, magnitudes
}

// cumulativeMagnitudes scans from the latest observation back to the earliest,
// so entry i covers observations i..N-1.
func cumulativeMagnitudes(observations []Observation) []Point {
	out := make([]Point, len(observations))
	var total float64
	for i := len(observations) - 1; i >= 0; i-- {
		total += MagnitudeToEnergy(observations[i].Magnitude)
		out[i] = Point{Time: observations[i].Time, Value: EnergyToMagnitude(total)}
	}
	return out
}

// firstUnsorted returns the index of the first observation earlier than its
// predecessor, or -1.
func firstUnsorted(observations []Observation) int {
	for i := 1; i < len(observations); i++ {
		if observations[i].Time.Before(observations[i-1].Time) {
			return i
		}
	}
	return -1
}
