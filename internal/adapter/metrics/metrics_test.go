package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := NewRegistry()
	store := NewStoreMetrics(reg)
	store.MutationsTotal.WithLabelValues("set_task_state").Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `aci_tracker_store_mutations_total{operation="set_task_state"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
	assert.Contains(t, rec.Body.String(), "aci_tracker_build_info{")
}

func TestHTTPMetrics_RecordsRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/data", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/api/data", "/api/data", "/healthz"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/data", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/healthz", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ResponseSize))
}

func TestWebSocketMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebSocketMetrics(reg)

	m.ActiveChannels.Inc()
	m.MessagesBroadcast.WithLabelValues("task_state_updated").Add(3)

	expected := `
# HELP aci_tracker_websocket_active_channels Number of registered real-time channels.
# TYPE aci_tracker_websocket_active_channels gauge
aci_tracker_websocket_active_channels 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "aci_tracker_websocket_active_channels"))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MessagesBroadcast.WithLabelValues("task_state_updated")))
}
