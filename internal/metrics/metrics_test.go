package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("momodash")

	c.RecordAPIRequest("transactions", "ok", 20*time.Millisecond)
	c.RecordAPIRequest("transactions", "ok", 30*time.Millisecond)
	c.RecordAPIRequest("search", "error", time.Millisecond)
	c.RecordStaleResponse("table")
	c.RecordCircuitState(CircuitOpen)
	c.RecordChartRender("monthly-chart", true)
	c.SetActiveSessions(3)

	out := scrape(t, c)
	for _, want := range []string{
		`momodash_api_requests_total{endpoint="transactions",outcome="ok"} 2`,
		`momodash_api_requests_total{endpoint="search",outcome="error"} 1`,
		`momodash_stale_responses_total{kind="table"} 1`,
		`momodash_api_circuit_state 1`,
		`momodash_api_circuit_opens_total 1`,
		`momodash_chart_renders_total{chart="monthly-chart",result="ok"} 1`,
		`momodash_active_sessions 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCircuitCloseDoesNotCountAsOpen(t *testing.T) {
	c := NewCollector("momodash")
	c.RecordCircuitState(CircuitHalfOpen)
	c.RecordCircuitState(CircuitClosed)

	out := scrape(t, c)
	if !strings.Contains(out, "momodash_api_circuit_opens_total 0") {
		t.Errorf("unexpected opens count:\n%s", out)
	}
}

func TestNoOpSatisfiesRecorder(t *testing.T) {
	var r Recorder = NoOp{}
	r.RecordAPIRequest("overview", "ok", time.Second)
	r.SetActiveSessions(1)
}
