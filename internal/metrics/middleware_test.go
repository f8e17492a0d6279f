package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	req := httptest.NewRequest("POST", "/search", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	requestsVal := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/search", "200"))
	if requestsVal < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", requestsVal)
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_RecordsErrorStatuses(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	req := httptest.NewRequest("GET", "/broken", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/broken", "503"))
	if val < 1 {
		t.Errorf("expected requests_total for 503 >= 1, got %f", val)
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath(""); got != "unknown" {
		t.Errorf("normalizePath(\"\") = %q", got)
	}
	if got := normalizePath("/health"); got != "/health" {
		t.Errorf("normalizePath(/health) = %q", got)
	}
}
