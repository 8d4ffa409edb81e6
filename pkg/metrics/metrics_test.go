package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	r := New()
	c := r.Counter("asks_total", "Questions answered")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Fatalf("value = %d", c.Value())
	}
	// Same name returns the same counter.
	if r.Counter("asks_total", "") != c {
		t.Fatal("counter not deduped by name")
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("active", "")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != 9 {
		t.Fatalf("value = %d", g.Value())
	}
}

func TestHistogramBuckets(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)
	h.Observe(50) // over every bucket, only counts toward +Inf

	out := r.Render()
	for _, line := range []string{
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 2`,
		`latency_seconds_bucket{le="10"} 3`,
		`latency_seconds_bucket{le="+Inf"} 4`,
		`latency_seconds_count 4`,
	} {
		if !strings.Contains(out, line) {
			t.Errorf("render missing %q:\n%s", line, out)
		}
	}
}

func TestWithLabels(t *testing.T) {
	got := WithLabels("http_requests_total", "method", "GET", "status", "200")
	want := `http_requests_total{method="GET",status="200"}`
	if got != want {
		t.Fatalf("got %q", got)
	}
	if WithLabels("plain") != "plain" {
		t.Fatal("no labels should leave name untouched")
	}
	if WithLabels("odd", "k") != "odd" {
		t.Fatal("odd label pairs should leave name untouched")
	}
}

func TestRenderLabeledSeries(t *testing.T) {
	r := New()
	r.Counter(WithLabels("reqs_total", "path", "/a"), "Requests").Inc()
	r.Counter(WithLabels("reqs_total", "path", "/b"), "").Add(2)

	out := r.Render()
	if !strings.Contains(out, "# HELP reqs_total Requests") {
		t.Errorf("missing HELP line:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE reqs_total counter") {
		t.Errorf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, `reqs_total{path="/a"} 1`) || !strings.Contains(out, `reqs_total{path="/b"} 2`) {
		t.Errorf("labeled series missing:\n%s", out)
	}
	if strings.Count(out, "# TYPE reqs_total") != 1 {
		t.Errorf("TYPE emitted more than once:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("x_total", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "x_total 1") {
		t.Fatalf("body missing metric:\n%s", rec.Body.String())
	}
}
