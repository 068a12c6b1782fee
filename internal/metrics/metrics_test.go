package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesInstruments(t *testing.T) {
	Analyses.WithLabelValues(OutcomeDegraded).Inc()
	ObserveLoad("csv", time.Now().Add(-10*time.Millisecond))
	Correlation.Observe(-42)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `pricecorr_load_duration_seconds_count{format="csv"}`), body)
	assert.Contains(t, body, `pricecorr_analyses_total{outcome="degraded"}`)
	assert.Contains(t, body, "pricecorr_correlation_percent_bucket")
}
