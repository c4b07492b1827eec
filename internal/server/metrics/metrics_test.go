package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/api/v1/posts", "200", 20*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/posts", "200", 30*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/posts", "500", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/posts", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/posts", "500")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestAuthEvent(t *testing.T) {
	m := New()

	m.AuthEvent("login", true)
	m.AuthEvent("login", false)
	m.AuthEvent("login", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", OutcomeFailure)))
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.AuthEvent("refresh", true)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.authEvents.WithLabelValues("refresh", OutcomeSuccess)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.AuthEvent("logout", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gopherblog_auth_events_total{event="logout",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
