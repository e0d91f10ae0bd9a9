package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// newTestMetrics initializes the singleton against a private registry.
// Later calls reuse the singleton, so every test shares this registry.
var testRegistry = prometheus.NewRegistry()

func testHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

func TestPrometheus_CountsRequests(t *testing.T) {
	h := Prometheus(WithRegistry(testRegistry))(testHandler(http.StatusOK))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/pages/home", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
	}

	families, err := testRegistry.Gather()
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, mf := range families {
		if mf.GetName() != "strato_requests_total" {
			continue
		}
		found = true
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		if total < 3 {
			t.Errorf("strato_requests_total = %v, want >= 3", total)
		}
	}
	if !found {
		t.Error("strato_requests_total not registered")
	}
}

func TestPrometheus_RecordsErrorStatus(t *testing.T) {
	h := Prometheus(WithRegistry(testRegistry))(testHandler(http.StatusInternalServerError))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/broken", nil))

	families, err := testRegistry.Gather()
	if err != nil {
		t.Fatal(err)
	}

	var sawStatus500 bool
	for _, mf := range families {
		if mf.GetName() != "strato_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == "500" {
					sawStatus500 = true
				}
			}
		}
	}
	if !sawStatus500 {
		t.Error("expected a requests_total series with status=500")
	}
}

func TestHookObserver(t *testing.T) {
	// Ensure the singleton exists.
	Prometheus(WithRegistry(testRegistry))

	obs := HookObserver()
	obs("ready", nil)
	obs("ready", errors.New("boom"))

	families, err := testRegistry.Gather()
	if err != nil {
		t.Fatal(err)
	}

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "strato_hook_callbacks_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var status string
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" {
					status = l.GetValue()
				}
			}
			counts[status] += m.GetCounter().GetValue()
		}
	}

	if counts["success"] < 1 {
		t.Errorf("success callbacks = %v, want >= 1", counts["success"])
	}
	if counts["error"] < 1 {
		t.Errorf("error callbacks = %v, want >= 1", counts["error"])
	}
}

func TestRecorders_NoPanicAndRecorded(t *testing.T) {
	Prometheus(WithRegistry(testRegistry))

	RecordModuleLoaded()
	RecordReadyDuration(125 * time.Millisecond)

	families, err := testRegistry.Gather()
	if err != nil {
		t.Fatal(err)
	}

	var ready float64
	for _, mf := range families {
		if mf.GetName() == "strato_ready_duration_seconds" {
			ready = mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	if ready <= 0 {
		t.Errorf("ready_duration = %v, want > 0", ready)
	}
}

func TestOpenTelemetry_PassThrough(t *testing.T) {
	// No tracer provider configured: spans are no-ops, but the middleware
	// must still serve the request and preserve the response.
	h := OpenTelemetry()(testHandler(http.StatusTeapot))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/tea", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusTeapot)
	}
}

func TestOpenTelemetry_FilterSkips(t *testing.T) {
	var served bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
	})

	h := OpenTelemetry(WithRequestFilter(func(r *http.Request) bool {
		return false
	}))(inner)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/skip", nil))

	if !served {
		t.Error("filtered requests must still reach the handler")
	}
}
