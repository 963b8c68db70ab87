package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/fd1az/rewards-distributor/internal/logger"
)

func TestPrometheusProvider_ServesInstruments(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	reg := promclient.NewRegistry()
	mp, err := NewMetricProvider(
		WithServiceName("test"),
		WithProviderConfig(NewPrometheusConfig()),
		WithRegisterer(reg),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	counter, err := mp.Meter("test").Int64Counter("unit_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	srv := NewPrometheusServer(0, reg, logger.NewNop())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unit_events")
}
