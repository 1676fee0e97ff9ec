// Package csvfile reads earthquake catalogs exported as CSV.
//
// The expected layout is two header rows followed by one event per row:
//
//	name,time,longitude,latitude,magnitude,depth,location
//
// Times use "2006-01-02 15:04:05" and are interpreted as UTC. Rows are
// expected in ascending time order.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
)

const numColumns = 7

// Options controls catalog loading.
type Options struct {
	HeaderRows int
	TimeLayout string
	// Begin and End bound the accepted event times, both inclusive.
	// A zero value leaves that side unbounded.
	Begin time.Time
	End   time.Time
}

// DefaultOptions returns options for the standard two-header-row export.
func DefaultOptions() Options {
	return Options{
		HeaderRows: 2,
		TimeLayout: "2006-01-02 15:04:05",
	}
}

// Source loads a catalog file. It implements pipeline.Source.
type Source struct {
	path string
	opts Options
}

// NewSource creates a Source for the CSV file at path.
func NewSource(path string, opts Options) *Source {
	return &Source{path: path, opts: opts}
}

// Load reads every in-range observation from the file.
func (s *Source) Load(ctx context.Context) ([]domain.Observation, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Read(ctx, f, s.opts)
}

// Read parses observations from r. Malformed rows abort the read with the
// offending line number.
func Read(ctx context.Context, r io.Reader, opts Options) ([]domain.Observation, error) {
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultOptions().TimeLayout
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for i := 0; i < opts.HeaderRows; i++ {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("read header row %d: %w", i+1, err)
		}
	}

	var observations []domain.Observation
	for line := opts.HeaderRows + 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		o, err := parseRecord(record, opts.TimeLayout)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !opts.Begin.IsZero() && o.Time.Before(opts.Begin) {
			continue
		}
		if !opts.End.IsZero() && o.Time.After(opts.End) {
			continue
		}
		observations = append(observations, o)
	}

	return observations, nil
}

func parseRecord(record []string, layout string) (domain.Observation, error) {
	if len(record) < numColumns {
		return domain.Observation{}, fmt.Errorf("want %d columns, got %d", numColumns, len(record))
	}

	t, err := time.ParseInLocation(layout, strings.TrimSpace(record[1]), time.UTC)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("parse time: %w", err)
	}

	var nums [4]float64
	for i, col := range []string{"longitude", "latitude", "magnitude", "depth"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+2]), 64)
		if err != nil {
			return domain.Observation{}, fmt.Errorf("parse %s: %w", col, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Observation{}, fmt.Errorf("parse %s: non-finite value %q", col, strings.TrimSpace(record[i+2]))
		}
		nums[i] = v
	}

	return domain.Observation{
		Name:                strings.TrimSpace(record[0]),
		Time:                t,
		Longitude:           nums[0],
		Latitude:            nums[1],
		Magnitude:           nums[2],
		Depth:               nums[3],
		LocationDescription: strings.TrimSpace(record[6]),
	}, nil
}
