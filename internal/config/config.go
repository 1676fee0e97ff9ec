package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
)

// TimeLayout is the timestamp format used by the catalog source and the
// CATALOG_BEGIN / CATALOG_END variables.
const TimeLayout = "2006-01-02 15:04:05"

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Catalog source.
	CatalogPath       string
	CatalogBegin      time.Time // zero means unbounded
	CatalogEnd        time.Time // zero means unbounded
	CatalogHeaderRows int

	// Aggregation.
	WindowHours  float64
	SampleStep   time.Duration
	ExcludeBoxes []domain.Box

	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSinkTopic     string
	BatchSize          int
	BatchFlushInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	begin, err := parseTime("CATALOG_BEGIN")
	if err != nil {
		return nil, err
	}
	end, err := parseTime("CATALOG_END")
	if err != nil {
		return nil, err
	}

	headerRows, err := strconv.Atoi(sharedcfg.EnvOrDefault("CATALOG_HEADER_ROWS", "2"))
	if err != nil || headerRows < 0 {
		return nil, errors.New("invalid CATALOG_HEADER_ROWS")
	}

	windowHours, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("WINDOW_HOURS", "4"), 64)
	if err != nil || windowHours <= 0 {
		return nil, errors.New("invalid WINDOW_HOURS")
	}

	step, err := time.ParseDuration(sharedcfg.EnvOrDefault("SAMPLE_STEP", "1h"))
	if err != nil || step <= 0 {
		return nil, errors.New("invalid SAMPLE_STEP")
	}

	boxes, err := ParseBoxes(os.Getenv("EXCLUDE_BOXES"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXCLUDE_BOXES: %w", err)
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		CatalogPath:       sharedcfg.EnvOrDefault("CATALOG_PATH", "data/catalog.csv"),
		CatalogBegin:      begin,
		CatalogEnd:        end,
		CatalogHeaderRows: headerRows,

		WindowHours:  windowHours,
		SampleStep:   step,
		ExcludeBoxes: boxes,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "seismic-series"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if cfg.CatalogPath == "" {
		return nil, errors.New("CATALOG_PATH is required")
	}
	if !cfg.CatalogBegin.IsZero() && !cfg.CatalogEnd.IsZero() && cfg.CatalogEnd.Before(cfg.CatalogBegin) {
		return nil, errors.New("CATALOG_END is before CATALOG_BEGIN")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// ProcessOptions returns the aggregation options for domain.Process.
func (c *Config) ProcessOptions() domain.Options {
	return domain.Options{WindowHours: c.WindowHours, Step: c.SampleStep}
}

// ParseBoxes parses "lonMin:lonMax:latMin:latMax" boxes separated by ";".
// An empty string yields no boxes.
func ParseBoxes(s string) ([]domain.Box, error) {
	var boxes []domain.Box
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.Split(part, ":")
		if len(fields) != 4 {
			return nil, fmt.Errorf("box %q: want lonMin:lonMax:latMin:latMax", part)
		}

		var v [4]float64
		for i, f := range fields {
			n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("box %q: %w", part, err)
			}
			v[i] = n
		}

		boxes = append(boxes, domain.Box{
			Longitude: domain.Range{Min: v[0], Max: v[1]},
			Latitude:  domain.Range{Min: v[2], Max: v[3]},
		})
	}
	return boxes, nil
}

func parseTime(key string) (time.Time, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
