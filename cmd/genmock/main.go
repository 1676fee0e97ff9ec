// Command genmock writes a synthetic aftershock catalog in the CSV layout the
// service reads. Event times follow Omori-Utsu decay after the mainshock and
// magnitudes follow a Gutenberg-Richter distribution, so the derived series
// look like a real sequence. Output is reproducible for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/catalog.csv \
//	  -mainshock "2024-04-03 07:58:00" -magnitude 7.2 \
//	  -count 500 -hours 72 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/seismic-catalog-stats/internal/config"
	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
)

// sequence describes the synthetic aftershock sequence.
type sequence struct {
	mainshock    time.Time
	magnitude    float64
	lon, lat     float64
	count        int
	hours        float64
	minMagnitude float64
	bValue       float64 // Gutenberg-Richter slope
	omoriC       float64 // hours
	omoriP       float64
	spreadDeg    float64 // epicentral scatter around the mainshock
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the catalog CSV")
	mainshock := flag.String("mainshock", "2024-04-03 07:58:00", "mainshock time (UTC)")
	magnitude := flag.Float64("magnitude", 7.2, "mainshock magnitude")
	lon := flag.Float64("lon", 121.67, "mainshock longitude")
	lat := flag.Float64("lat", 23.77, "mainshock latitude")
	count := flag.Int("count", 500, "number of aftershocks")
	hours := flag.Float64("hours", 72, "sequence duration in hours")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	t0, err := time.ParseInLocation(config.TimeLayout, *mainshock, time.UTC)
	if err != nil {
		return fmt.Errorf("parse -mainshock: %w", err)
	}

	seq := sequence{
		mainshock:    t0,
		magnitude:    *magnitude,
		lon:          *lon,
		lat:          *lat,
		count:        *count,
		hours:        *hours,
		minMagnitude: 3.0,
		bValue:       1.0,
		omoriC:       0.05,
		omoriP:       1.1,
		spreadDeg:    0.15,
	}

	observations := generate(seq, rand.New(rand.NewPCG(*seed, *seed)))

	if err := writeCSV(*out, observations); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	log.Printf("wrote %d observations: %s", len(observations), *out)

	// Fixed clock so the printed report is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(t0.Add(time.Duration(seq.hours * float64(time.Hour)))))
	defer domain.SetClock(nil)

	report, err := domain.Process(domain.NewCatalogFrom(observations), domain.DefaultOptions())
	if err != nil {
		return fmt.Errorf("process generated catalog: %w", err)
	}
	printStats(report)
	return nil
}

// generate returns the mainshock followed by seq.count aftershocks, sorted by time.
func generate(seq sequence, rng *rand.Rand) []domain.Observation {
	observations := make([]domain.Observation, 0, seq.count+1)
	observations = append(observations, domain.Observation{
		Name:                "000001",
		Time:                seq.mainshock,
		Longitude:           seq.lon,
		Latitude:            seq.lat,
		Magnitude:           seq.magnitude,
		Depth:               15.5,
		LocationDescription: "mainshock",
	})

	offsets := make([]time.Duration, seq.count)
	for i := range offsets {
		h := omoriOffset(rng.Float64(), seq.omoriC, seq.omoriP, seq.hours)
		// Source catalogs have second resolution; keep aftershocks strictly after the mainshock.
		offsets[i] = max(time.Duration(h*float64(time.Hour)).Truncate(time.Second), time.Second)
	}
	slices.Sort(offsets)

	for i, off := range offsets {
		observations = append(observations, domain.Observation{
			Name:                fmt.Sprintf("%06d", i+2),
			Time:                seq.mainshock.Add(off),
			Longitude:           round(seq.lon+rng.NormFloat64()*seq.spreadDeg, 2),
			Latitude:            round(seq.lat+rng.NormFloat64()*seq.spreadDeg, 2),
			Magnitude:           round(grMagnitude(rng.Float64(), seq.minMagnitude, seq.bValue, seq.magnitude-0.1), 1),
			Depth:               round(5+rng.Float64()*30, 1),
			LocationDescription: "",
		})
	}
	return observations
}

// omoriOffset inverts the Omori-Utsu CDF on [0, T] hours for p != 1.
func omoriOffset(u, c, p, T float64) float64 {
	q := 1 - p
	a := math.Pow(c, q)
	b := math.Pow(T+c, q)
	return math.Pow(a-u*(a-b), 1/q) - c
}

// grMagnitude samples a Gutenberg-Richter magnitude above minMag, capped at maxMag.
func grMagnitude(u, minMag, b, maxMag float64) float64 {
	// 1-u keeps log10 finite.
	return math.Min(minMag-math.Log10(1-u)/b, maxMag)
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func writeCSV(path string, observations []domain.Observation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := [][]string{
		{"Synthetic aftershock catalog", "", "", "", "", "", ""},
		{"Name", "Time", "Longitude", "Latitude", "Magnitude", "Depth", "Location"},
	}
	if err := w.WriteAll(header); err != nil {
		return err
	}
	for _, o := range observations {
		if err := w.Write([]string{
			o.Name,
			o.Time.Format(config.TimeLayout),
			strconv.FormatFloat(o.Longitude, 'f', -1, 64),
			strconv.FormatFloat(o.Latitude, 'f', -1, 64),
			strconv.FormatFloat(o.Magnitude, 'f', -1, 64),
			strconv.FormatFloat(o.Depth, 'f', -1, 64),
			o.LocationDescription,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func printStats(report domain.Report) {
	var peak domain.Point
	for _, p := range report.TimeAndCounts {
		if p.Value > peak.Value {
			peak = p
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Observations: %d\n", report.ObservationCount)
	fmt.Printf("Extent: %s .. %s\n", report.Begin.Format(time.RFC3339), report.End.Format(time.RFC3339))
	fmt.Printf("Grid points: %d (magnitude points: %d)\n", len(report.TimeAndCounts), len(report.TimeAndSummedMagnitudes))
	fmt.Printf("Peak rate: %.2f events/h at %s\n", peak.Value, peak.Time.Format(time.RFC3339))
	if len(report.CumulativeMagnitudes) > 0 {
		fmt.Printf("Total energy as magnitude: %.3f\n", report.CumulativeMagnitudes[0].Value)
	}
	fmt.Printf("Generated at: %s\n", report.GeneratedAt.Format(time.RFC3339))
}
