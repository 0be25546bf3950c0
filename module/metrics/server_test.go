package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayguard/banhammer/module/metrics"
	"github.com/relayguard/banhammer/utils/unittest"
)

func TestServer_ServesGatheredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewEngineCollectorWithRegisterer(reg).InputDropped()

	server := metrics.NewServer(unittest.Logger(), 0, reg)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "banhammer_engine_inputs_dropped_total 1")

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
