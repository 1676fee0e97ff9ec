package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/seismic-catalog-stats/internal/adapter/http"
	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockReports struct {
	report *domain.Report
}

func (m *mockReports) Latest() (domain.Report, bool) {
	if m.report == nil {
		return domain.Report{}, false
	}
	return *m.report, true
}

var sampleTime = time.Date(2024, 4, 3, 7, 58, 0, 0, time.UTC)

func sampleReport() *domain.Report {
	return &domain.Report{
		RunID:            "run-1",
		WindowHours:      4,
		ObservationCount: 2,
		TimeAndCounts: []domain.Point{
			{Time: sampleTime, Value: 0.5},
			{Time: sampleTime.Add(time.Hour), Value: 0.5},
		},
		TimeAndSummedMagnitudes: []domain.Point{{Time: sampleTime, Value: 6.0}},
		CumulativeMagnitudes: []domain.Point{
			{Time: sampleTime, Value: 6.0},
			{Time: sampleTime.Add(time.Hour), Value: 4.0},
		},
	}
}

func newTestServer(readyErr error, report *domain.Report) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, &mockReports{report: report}, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil, sampleReport()), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("no report yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSeriesReturnsReport(t *testing.T) {
	rec := serve(newTestServer(nil, sampleReport()), "/series")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body domain.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, 2, body.ObservationCount)
	assert.Len(t, body.TimeAndCounts, 2)
	assert.Equal(t, sampleTime, body.CumulativeMagnitudes[0].Time)
}

func TestSeriesReturns503WithoutReport(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/series")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(newTestServer(nil, nil), "/series/"+domain.SeriesCounts)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSeriesByName(t *testing.T) {
	rec := serve(newTestServer(nil, sampleReport()), "/series/"+domain.SeriesCumulative)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID  string         `json:"run_id"`
		Series string         `json:"series"`
		Points []domain.Point `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, domain.SeriesCumulative, body.Series)
	assert.Equal(t, sampleReport().CumulativeMagnitudes, body.Points)
}

func TestSeriesUnknownName(t *testing.T) {
	rec := serve(newTestServer(nil, sampleReport()), "/series/depths")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeriesReturns500WhenReportUnencodable(t *testing.T) {
	report := sampleReport()
	report.CumulativeMagnitudes[0].Value = math.NaN()

	tests := []struct {
		name string
		path string
	}{
		{"full report", "/series"},
		{"single series", "/series/" + domain.SeriesCumulative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(nil, report), tt.path)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
		})
	}
}
