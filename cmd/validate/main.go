// Command validate loads an earthquake catalog CSV, derives the rolling and
// cumulative series, and checks the invariants the aggregation engine
// guarantees. It is meant for sanity-checking new catalog exports and the
// output of genmock before they are used as fixtures.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -catalog data/mock/catalog.csv \
//	  -window-hours 4 -step 1h
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/seismic-catalog-stats/internal/adapter/csvfile"
	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
)

// tolerance for comparisons that go through log10/pow.
const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catalogPath := flag.String("catalog", "", "path to the catalog CSV")
	headerRows := flag.Int("header-rows", csvfile.DefaultOptions().HeaderRows, "leading rows to skip")
	windowHours := flag.Float64("window-hours", domain.DefaultWindowHours, "rolling window width in hours")
	step := flag.Duration("step", domain.DefaultStep, "sampling grid step")
	flag.Parse()

	if *catalogPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := csvfile.DefaultOptions()
	opts.HeaderRows = *headerRows

	if code := run(*catalogPath, opts, domain.Options{WindowHours: *windowHours, Step: *step}); code != 0 {
		os.Exit(code)
	}
}

func run(path string, csvOpts csvfile.Options, opts domain.Options) int {
	// Fixed clock so repeated runs print identical reports.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 6, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Catalog Statistics Validation ===")
	fmt.Println()

	observations, err := csvfile.NewSource(path, csvOpts).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	catalog := domain.NewCatalogFrom(observations)
	report, err := domain.Process(catalog, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: process catalog: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateConversion(catalog),
		validateCounts(catalog, report, opts),
		validateMagnitudes(catalog, report, opts),
		validateCumulative(catalog, report),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Observations: %d, grid points: %d, magnitude points: %d, cumulative points: %d\n",
		report.ObservationCount, len(report.TimeAndCounts),
		len(report.TimeAndSummedMagnitudes), len(report.CumulativeMagnitudes))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Conversion ──
// Every magnitude in the catalog survives a magnitude → energy → magnitude round trip.

func validateConversion(c *domain.Catalog) *phase {
	p := &phase{name: "Phase 1: Magnitude/Energy Round Trip"}
	for i, o := range c.Observations() {
		got := domain.EnergyToMagnitude(domain.MagnitudeToEnergy(o.Magnitude))
		if math.Abs(got-o.Magnitude) > tolerance {
			p.errorf("observation %d (%s): magnitude %.3f round-trips to %.12f", i, o.Name, o.Magnitude, got)
		}
	}
	return p
}

// ── Phase 2: Rolling Counts ──
// One count point per grid instant, equal to Count/W over the centred window.

func validateCounts(c *domain.Catalog, r domain.Report, opts domain.Options) *phase {
	p := &phase{name: "Phase 2: Rolling Counts"}
	grid := domain.MakeTimeRange(r.Begin, r.End.Add(opts.Step), opts.Step)
	if len(grid) != len(r.TimeAndCounts) {
		p.errorf("expected %d grid points, got %d", len(grid), len(r.TimeAndCounts))
		return p
	}
	for i, pt := range r.TimeAndCounts {
		if !pt.Time.Equal(grid[i]) {
			p.errorf("point %d: time %s, want %s", i, pt.Time.Format(time.RFC3339), grid[i].Format(time.RFC3339))
		}
		begin, end := window(pt.Time, opts.WindowHours)
		want := float64(c.Count(begin, end)) / opts.WindowHours
		if math.Abs(pt.Value-want) > tolerance {
			p.errorf("point %d (%s): rate %.6f, want %.6f", i, pt.Time.Format(time.RFC3339), pt.Value, want)
		}
		if pt.Value < 0 {
			p.errorf("point %d: negative rate %.6f", i, pt.Value)
		}
	}
	return p
}

// ── Phase 3: Rolling Magnitudes ──
// Only positive values are kept, and each equals the magnitude of the windowed energy.

func validateMagnitudes(c *domain.Catalog, r domain.Report, opts domain.Options) *phase {
	p := &phase{name: "Phase 3: Rolling Energy Magnitudes"}
	if len(r.TimeAndSummedMagnitudes) > len(r.TimeAndCounts) {
		p.errorf("%d magnitude points exceed %d grid points", len(r.TimeAndSummedMagnitudes), len(r.TimeAndCounts))
	}
	for i, pt := range r.TimeAndSummedMagnitudes {
		if pt.Value <= 0 {
			p.errorf("point %d (%s): non-positive magnitude %.6f", i, pt.Time.Format(time.RFC3339), pt.Value)
		}
		if i > 0 && !pt.Time.After(r.TimeAndSummedMagnitudes[i-1].Time) {
			p.errorf("point %d: time %s not after previous point", i, pt.Time.Format(time.RFC3339))
		}
		begin, end := window(pt.Time, opts.WindowHours)
		want := domain.EnergyToMagnitude(c.Energy(begin, end))
		if math.Abs(pt.Value-want) > tolerance {
			p.errorf("point %d (%s): magnitude %.6f, want %.6f", i, pt.Time.Format(time.RFC3339), pt.Value, want)
		}
	}
	return p
}

// ── Phase 4: Cumulative Energy ──
// One point per observation; the earliest point carries the catalog's total
// energy and values never grow with time.

func validateCumulative(c *domain.Catalog, r domain.Report) *phase {
	p := &phase{name: "Phase 4: Cumulative Energy"}
	observations := c.Observations()
	if len(r.CumulativeMagnitudes) != len(observations) {
		p.errorf("expected %d cumulative points, got %d", len(observations), len(r.CumulativeMagnitudes))
		return p
	}

	var total float64
	for _, o := range observations {
		total += domain.MagnitudeToEnergy(o.Magnitude)
	}
	if first := r.CumulativeMagnitudes[0].Value; math.Abs(first-domain.EnergyToMagnitude(total)) > tolerance {
		p.errorf("first cumulative value %.6f, want total %.6f", first, domain.EnergyToMagnitude(total))
	}

	for i, pt := range r.CumulativeMagnitudes {
		if !pt.Time.Equal(observations[i].Time) {
			p.errorf("point %d: time %s, want observation time %s",
				i, pt.Time.Format(time.RFC3339), observations[i].Time.Format(time.RFC3339))
		}
		if i > 0 && pt.Value > r.CumulativeMagnitudes[i-1].Value+tolerance {
			p.errorf("point %d (%s): value %.6f grew from %.6f",
				i, pt.Time.Format(time.RFC3339), pt.Value, r.CumulativeMagnitudes[i-1].Value)
		}
	}
	return p
}

// window returns the half-open window of width hours centred on t.
func window(t time.Time, hours float64) (time.Time, time.Time) {
	half := time.Duration(hours / 2 * float64(time.Hour))
	return t.Add(-half), t.Add(half)
}
