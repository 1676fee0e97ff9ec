package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
	"github.com/couchcryptid/seismic-catalog-stats/internal/observability"
)

// Source supplies observations in ascending time order.
type Source interface {
	Load(ctx context.Context) ([]domain.Observation, error)
}

// Publisher hands a finished report to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// Settings configures the aggregation stages.
type Settings struct {
	Options    domain.Options
	Exclusions []domain.Box
	// PublishAttempts bounds publish retries; values below 1 mean a single attempt.
	PublishAttempts int
}

// Pipeline runs load → exclude → enrich → process → publish once per Run,
// passing the catalog and report between stages as explicit values.
type Pipeline struct {
	source    Source
	geocoder  domain.Geocoder
	publisher Publisher
	settings  Settings
	logger    *slog.Logger
	metrics   *observability.Metrics
	latest    atomic.Pointer[domain.Report]
}

// New creates a Pipeline. A nil geocoder disables enrichment and a nil
// publisher keeps reports local to the HTTP API.
func New(source Source, geocoder domain.Geocoder, publisher Publisher, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    source,
		geocoder:  geocoder,
		publisher: publisher,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a report has been derived.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.latest.Load() == nil {
		return errors.New("no report has been derived yet")
	}
	return nil
}

// Latest returns the most recent report.
func (p *Pipeline) Latest() (domain.Report, bool) {
	r := p.latest.Load()
	if r == nil {
		return domain.Report{}, false
	}
	return *r, true
}

// Run executes every stage once and returns the derived report.
func (p *Pipeline) Run(ctx context.Context) (domain.Report, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	observations, err := p.source.Load(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load catalog: %w", err)
	}
	p.metrics.ObservationsLoaded.Add(float64(len(observations)))
	p.logger.Info("catalog loaded", "observations", len(observations))

	catalog := domain.NewCatalogFrom(observations)

	excluded := Exclude(catalog, p.settings.Exclusions)
	p.metrics.ObservationsExcluded.Add(float64(excluded))
	if excluded > 0 {
		p.logger.Info("observations excluded", "excluded", excluded, "remaining", catalog.Len())
	}

	catalog = p.enrich(ctx, catalog)

	start := time.Now()
	report, err := domain.Process(catalog, p.settings.Options)
	if err != nil {
		return domain.Report{}, fmt.Errorf("process catalog: %w", err)
	}
	p.metrics.ProcessDuration.Observe(time.Since(start).Seconds())
	for _, name := range []string{domain.SeriesCounts, domain.SeriesMagnitudes, domain.SeriesCumulative} {
		p.metrics.SeriesPoints.WithLabelValues(name).Set(float64(len(report.Series(name))))
	}

	p.latest.Store(&report)
	p.logger.Info("report derived",
		"run_id", report.RunID,
		"begin", report.Begin,
		"end", report.End,
		"count_points", len(report.TimeAndCounts),
		"magnitude_points", len(report.TimeAndSummedMagnitudes),
		"cumulative_points", len(report.CumulativeMagnitudes),
	)

	return report, p.publish(ctx, report)
}

// Exclude removes every observation inside any of the boxes and returns the
// number removed.
func Exclude(catalog *domain.Catalog, boxes []domain.Box) int {
	removed := 0
	for _, b := range boxes {
		removed += catalog.RemoveEntriesBy(b.Longitude, b.Latitude)
	}
	return removed
}

func (p *Pipeline) enrich(ctx context.Context, catalog *domain.Catalog) *domain.Catalog {
	if p.geocoder == nil {
		return catalog
	}

	observations := catalog.Observations()
	for i := range observations {
		observations[i] = domain.EnrichWithGeocoding(ctx, observations[i], p.geocoder, p.logger)
	}
	return domain.NewCatalogFrom(observations)
}

// publish retries with exponential backoff: start at 200ms, double each
// attempt, cap at 5s.
func (p *Pipeline) publish(ctx context.Context, report domain.Report) error {
	if p.publisher == nil {
		return nil
	}

	attempts := max(p.settings.PublishAttempts, 1)
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = p.publisher.Publish(ctx, report); err == nil {
			p.metrics.PointsPublished.Add(float64(report.PointCount()))
			p.logger.Info("report published", "run_id", report.RunID, "points", report.PointCount())
			return nil
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish report failed", "error", err, "attempt", attempt, "max_attempts", attempts)

		if attempt == attempts || !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish report: %w", err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
