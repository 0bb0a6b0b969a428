package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
)

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_Disabled(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.MetricExporter = "none"

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.Registry)
	assert.NotNil(t, providers.Meter, "noop meter keeps instruments usable")

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordLoad(context.Background(), "orders", 3)
}

func TestOTelInitialization_UnknownExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, nil)
	assert.Error(t, err)
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.Default().Telemetry)
	assert.Equal(t, "retailpulse", cfg.ServiceName)
	assert.Equal(t, "none", cfg.TraceExporter)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
}

func TestPipelineMetrics_ExportedThroughPrometheus(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordLoad(ctx, "customers", 10)
	metrics.RecordClean(ctx, "customers", 8, 2)
	metrics.RecordStage(ctx, "clean_customers", 25*time.Millisecond, true)
	metrics.RecordRun(ctx, "standard", nil)
	metrics.RecordRun(ctx, "standard", errors.New("load failed"))

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, " ")
	for _, prefix := range []string{
		"retailpulse_rows_loaded",
		"retailpulse_rows_kept",
		"retailpulse_rows_dropped",
		"retailpulse_stage_duration",
		"retailpulse_runs",
	} {
		assert.Contains(t, joined, prefix)
	}

	runs, err := promtestutil.GatherAndCount(providers.Registry, "retailpulse_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, runs, "one series per outcome")

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `entity="customers"`)
}

func TestPipelineMetrics_NilReceiver(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordLoad(ctx, "orders", 1)
		m.RecordClean(ctx, "orders", 1, 0)
		m.RecordStage(ctx, "clean_orders", time.Second, false)
		m.RecordRun(ctx, "legacy", nil)
		m.RecordRequest(ctx, "/api/report", 200)
	})
}
