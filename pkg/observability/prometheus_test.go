package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
	"github.com/Sumatoshi-tech/maxscore/pkg/observability"
)

func scrape(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	return rec
}

func TestPrometheusProvider_ServesMetrics(t *testing.T) {
	t.Parallel()

	mp, handler, err := observability.PrometheusProvider()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	rec := scrape(t, handler)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "target_info")
}

func TestPrometheusProvider_ExportsScanMetrics(t *testing.T) {
	t.Parallel()

	mp, handler, err := observability.PrometheusProvider()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	sm, err := observability.NewScanMetrics(mp.Meter("test"))
	require.NoError(t, err)

	sm.RecordScan(context.Background(), mss.Stats{Elements: 7, Emitted: 2})

	assert.Regexp(t, `maxscore[._]scan[._]elements`, scrape(t, handler).Body.String())
}

func TestPrometheusProvider_IndependentRegistries(t *testing.T) {
	t.Parallel()

	for range 2 {
		mp, _, err := observability.PrometheusProvider()
		require.NoError(t, err)
		require.NoError(t, mp.Shutdown(context.Background()))
	}
}
