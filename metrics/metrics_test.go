package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsExposed(t *testing.T) {
	m := New(Options{})
	m.IncDecision("redirect")
	m.IncDecision("redirect")
	m.IncDecision("allow")
	m.IncRedirect("fuzzy")
	m.MeasureRoute(time.Now().Add(-time.Millisecond))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()

	assert.Contains(t, body, `edgegate_router_decisions_total{kind="redirect"} 2`)
	assert.Contains(t, body, `edgegate_router_decisions_total{kind="allow"} 1`)
	assert.Contains(t, body, `edgegate_router_redirects_total{reason="fuzzy"} 1`)
	assert.Contains(t, body, "edgegate_router_route_duration_seconds")
}

func TestMetricsPrefix(t *testing.T) {
	m := New(Options{Prefix: "edge"})
	m.IncDecision("allow")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), "edge_router_decisions_total"))
}
