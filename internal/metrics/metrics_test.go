package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("nil registry is a no-op", func(t *testing.T) {
		t.Parallel()
		var r *Registry
		r.ObserveFetch("page", "ok", time.Second)
		r.ObserveAnalysis("assembled", time.Second)
		r.ObserveAssistant(http.StatusOK)

		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 from nil registry handler, got %d", rec.Code)
		}
	})

	t.Run("observations are exported", func(t *testing.T) {
		t.Parallel()
		r := New()
		r.ObserveFetch("CSS", "timeout", 20*time.Millisecond)
		r.ObserveFetch("page", "ok", 0)
		r.ObserveAnalysis("assembled", 300*time.Millisecond)
		r.ObserveAssistant(http.StatusServiceUnavailable)

		srv := httptest.NewServer(r.Handler())
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		if err != nil {
			t.Fatalf("failed to scrape: %v", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		text := string(body)

		wants := []string{
			`sitescope_fetches_total{kind="CSS",outcome="timeout"} 1`,
			`sitescope_fetches_total{kind="page",outcome="ok"} 1`,
			`sitescope_analyses_total{state="assembled"} 1`,
			`sitescope_assistant_requests_total{status="Service Unavailable"} 1`,
			`sitescope_analysis_duration_seconds_count 1`,
		}
		for _, want := range wants {
			if !strings.Contains(text, want) {
				t.Errorf("expected exposition to contain %q", want)
			}
		}
	})
}
