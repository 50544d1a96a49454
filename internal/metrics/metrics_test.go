package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/go-lms-portal/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.AuthInit("authenticated")
	m.TokenRefresh("ok")
	m.GuardDecision("render")
	m.BackendRequest("me", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Exposition(t *testing.T) {
	m := metrics.New()
	m.AuthInit("authenticated")
	m.AuthInit("authenticated")
	m.BackendRequest("me", "unauthorized")

	count, err := testutil.GatherAndCount(m.Registry(), "lms_portal_auth_init_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.True(t, strings.Contains(body, `lms_portal_auth_init_total{result="authenticated"} 2`))
	require.True(t, strings.Contains(body, `lms_portal_backend_requests_total{endpoint="me",outcome="unauthorized"} 1`))
}
