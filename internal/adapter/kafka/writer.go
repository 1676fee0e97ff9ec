package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/seismic-catalog-stats/internal/config"
	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
)

// PointMessage is the JSON value of one series point on the sink topic.
type PointMessage struct {
	RunID       string    `json:"run_id"`
	Series      string    `json:"series"`
	Time        time.Time `json:"time"`
	Value       float64   `json:"value"`
	WindowHours float64   `json:"window_hours"`
}

// Writer produces derived series to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes every point of the report's three series in a single
// WriteMessages call. Points are keyed by series name so each series stays
// ordered within one partition.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	msgs, err := reportMessages(report)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("report published", "run_id", report.RunID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// reportMessages flattens a report into one message per series point.
func reportMessages(report domain.Report) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, report.PointCount())
	for _, series := range []string{domain.SeriesCounts, domain.SeriesMagnitudes, domain.SeriesCumulative} {
		for _, p := range report.Series(series) {
			msg, err := serializeToMessage(report, series, p)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// serializeToMessage marshals one series point into a Kafka message.
func serializeToMessage(report domain.Report, series string, p domain.Point) (kafkago.Message, error) {
	data, err := json.Marshal(PointMessage{
		RunID:       report.RunID,
		Series:      series,
		Time:        p.Time,
		Value:       p.Value,
		WindowHours: report.WindowHours,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s point: %w", series, err)
	}
	return kafkago.Message{
		Key:   []byte(series),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "series", Value: []byte(series)},
			{Key: "run_id", Value: []byte(report.RunID)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
