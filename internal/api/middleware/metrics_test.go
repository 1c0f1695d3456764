package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route string
	status        int
}

type recordingMetrics struct {
	seen []observation
}

func (m *recordingMetrics) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	m.seen = append(m.seen, observation{method, route, status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &recordingMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/reservations/{reservationId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reservations/42", nil))

	require.Len(t, m.seen, 1)
	assert.Equal(t, observation{http.MethodGet, "/reservations/{reservationId}", http.StatusNotFound}, m.seen[0])
}
