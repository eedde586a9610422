package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/sitescope/internal/assistant"
	"github.com/nao1215/sitescope/internal/metrics"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
)

type mockAnalyzer struct {
	fn func(ctx context.Context, target string) (*model.AnalysisReport, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, target string) (*model.AnalysisReport, error) {
	return m.fn(ctx, target)
}

func okAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{fn: func(_ context.Context, target string) (*model.AnalysisReport, error) {
		report := model.NewAnalysisReport(target)
		report.Title = "Hola"
		report.Keywords = []model.KeywordCount{{Word: "canción", Count: 3}}
		report.Headings["h1"] = model.HeadingGroup{Count: 1, Texts: []string{"Mundo"}}
		report.ObsoleteTags = map[string]int{"font": 2, "center": 1}
		return report, nil
	}}
}

type mockAssistant struct {
	mu    sync.Mutex
	calls []assistant.Request
	reply *assistant.Reply
}

func (m *mockAssistant) Ask(_ context.Context, req assistant.Request) *assistant.Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	return m.reply
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Analyzer == nil {
		cfg.Analyzer = okAnalyzer()
	}
	if cfg.Assistant == nil {
		cfg.Assistant = &mockAssistant{reply: &assistant.Reply{StatusCode: http.StatusOK, Response: "ok"}}
	}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg)
}

func do(s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	t.Parallel()

	t.Run("GET renders empty form", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, Config{})
		rec := do(s, http.MethodGet, "/", "", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `name="url"`) {
			t.Error("expected the url form field")
		}
		if strings.Contains(body, "analysis-data") {
			t.Error("expected no report on GET")
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected HTML, got %q", ct)
		}
	})

	t.Run("POST renders the report", func(t *testing.T) {
		t.Parallel()
		var got string
		analyzer := okAnalyzer()
		inner := analyzer.fn
		analyzer.fn = func(ctx context.Context, target string) (*model.AnalysisReport, error) {
			got = target
			return inner(ctx, target)
		}
		s := newTestServer(t, Config{Analyzer: analyzer})
		rec := do(s, http.MethodPost, "/", "application/x-www-form-urlencoded", "url=+https%3A%2F%2Fexample.com%2F+")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got != "https://example.com/" {
			t.Errorf("expected trimmed target, got %q", got)
		}
		body := rec.Body.String()
		for _, want := range []string{"Hola", "canción", "Mundo", "&lt;center&gt;: 1", `id="analysis-data"`, `"titulo":"Hola"`} {
			if !strings.Contains(body, want) {
				t.Errorf("expected page to contain %q", want)
			}
		}
		if strings.Index(body, "&lt;center&gt;") > strings.Index(body, "&lt;font&gt;") {
			t.Error("expected obsolete tags in name order")
		}
	})

	t.Run("POST shows analysis error", func(t *testing.T) {
		t.Parallel()
		analyzer := &mockAnalyzer{fn: func(context.Context, string) (*model.AnalysisReport, error) {
			return nil, &pipeline.AnalysisError{Kind: pipeline.ErrConnectivity, Cause: errors.New("no such host")}
		}}
		s := newTestServer(t, Config{Analyzer: analyzer})
		rec := do(s, http.MethodPost, "/", "application/x-www-form-urlencoded", "url=https%3A%2F%2Fnope.invalid")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Error al conectar con la URL") {
			t.Error("expected connectivity message on the page")
		}
	})
}

func TestAskAI(t *testing.T) {
	t.Parallel()

	t.Run("relays request and reply", func(t *testing.T) {
		t.Parallel()
		bridge := &mockAssistant{reply: &assistant.Reply{StatusCode: http.StatusServiceUnavailable, Response: "sin clave"}}
		s := newTestServer(t, Config{Assistant: bridge})
		rec := do(s, http.MethodPost, "/ask_ai", "application/json",
			`{"question":"¿Qué falta?","analysis_data":{"titulo":"Hola"}}`)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected reply status, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body["response"] != "sin clave" {
			t.Errorf("expected response text, got %v", body)
		}
		if len(bridge.calls) != 1 || bridge.calls[0].Question != "¿Qué falta?" {
			t.Fatalf("expected question to be forwarded, got %+v", bridge.calls)
		}
		if string(bridge.calls[0].AnalysisData) != `{"titulo":"Hola"}` {
			t.Errorf("expected raw analysis data, got %s", bridge.calls[0].AnalysisData)
		}
	})

	t.Run("unreadable body is an empty question", func(t *testing.T) {
		t.Parallel()
		bridge := &mockAssistant{reply: &assistant.Reply{StatusCode: http.StatusBadRequest, Response: "pregunta"}}
		s := newTestServer(t, Config{Assistant: bridge})
		rec := do(s, http.MethodPost, "/ask_ai", "application/json", `{not json`)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if len(bridge.calls) != 1 || bridge.calls[0].Question != "" {
			t.Errorf("expected an empty request, got %+v", bridge.calls)
		}
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, Config{})
		rec := do(s, http.MethodGet, "/ask_ai", "", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestAPIAnalyze(t *testing.T) {
	t.Parallel()

	failing := func(err error) *mockAnalyzer {
		return &mockAnalyzer{fn: func(context.Context, string) (*model.AnalysisReport, error) { return nil, err }}
	}

	tests := []struct {
		name     string
		analyzer *mockAnalyzer
		body     string
		want     int
		contains string
	}{
		{name: "success", body: `{"url":"https://example.com/"}`, want: http.StatusOK, contains: `"titulo":"Hola"`},
		{name: "bad json", body: `{`, want: http.StatusBadRequest, contains: "invalid JSON body"},
		{name: "missing url", body: `{"url":"  "}`, want: http.StatusBadRequest, contains: "url is required"},
		{name: "invalid url", body: `{"url":"ftp://example.com"}`, want: http.StatusBadRequest, contains: "invalid url"},
		{
			name:     "connectivity",
			analyzer: failing(&pipeline.AnalysisError{Kind: pipeline.ErrConnectivity, Cause: errors.New("refused")}),
			body:     `{"url":"https://example.com/"}`,
			want:     http.StatusBadGateway,
			contains: "Error al conectar con la URL",
		},
		{
			name:     "processing",
			analyzer: failing(&pipeline.AnalysisError{Kind: pipeline.ErrProcessing, Cause: errors.New("secret detail")}),
			body:     `{"url":"https://example.com/"}`,
			want:     http.StatusInternalServerError,
			contains: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{}
			if tt.analyzer != nil {
				cfg.Analyzer = tt.analyzer
			}
			s := newTestServer(t, cfg)
			rec := do(s, http.MethodPost, "/api/analyze", "application/json", tt.body)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("expected body to contain %q, got %s", tt.contains, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "secret detail") {
				t.Error("expected internal details to be hidden")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{})

	rec := do(s, http.MethodGet, "/healthz", "", "")
	if id := rec.Header().Get(requestIDHeader); len(id) != 36 {
		t.Errorf("expected a generated UUID, got %q", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if id := rec.Header().Get(requestIDHeader); id != "abc-123" {
		t.Errorf("expected client ID to be echoed, got %q", id)
	}

	ctx := context.WithValue(context.Background(), requestIDKey, "xyz")
	if RequestID(ctx) != "xyz" || RequestID(context.Background()) != "" {
		t.Error("unexpected RequestID lookup")
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{RateLimit: 0.001, RateBurst: 1})

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"url":"https://example.com/"}`))
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("198.51.100.7"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send("198.51.100.7"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
	if code := send("198.51.100.8, 10.0.0.1"); code != http.StatusOK {
		t.Errorf("expected another client to pass, got %d", code)
	}

	// The form page is never limited on GET.
	for range 3 {
		if rec := do(s, http.MethodGet, "/", "", ""); rec.Code != http.StatusOK {
			t.Errorf("expected GET / to pass, got %d", rec.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remote    string
		forwarded string
		want      string
	}{
		{remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{remote: "192.0.2.1:1234", forwarded: "203.0.113.5, 10.0.0.1", want: "203.0.113.5"},
		{remote: "192.0.2.1:1234", forwarded: "203.0.113.9:5555", want: "203.0.113.9"},
		{remote: "pipe", want: "pipe"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if tt.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tt.forwarded)
		}
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q, %q) = %q, expected %q", tt.remote, tt.forwarded, got, tt.want)
		}
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	t.Parallel()

	m := newRateLimiterMap(time.Minute)
	first := m.getLimiter("a", 1, 1)
	if again := m.getLimiter("a", 1, 1); again != first {
		t.Error("expected the same limiter for the same IP")
	}
	m.getLimiter("b", 1, 1)

	m.cleanup(time.Now())
	if m.size() != 2 {
		t.Errorf("expected fresh limiters to stay, got %d", m.size())
	}
	m.cleanup(time.Now().Add(2 * time.Minute))
	if m.size() != 0 {
		t.Errorf("expected idle limiters to be dropped, got %d", m.size())
	}
}

func TestGzip(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("expected gzip encoding, got headers %v", rec.Header())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	reg := metrics.New()
	reg.ObserveAnalysis("assembled", time.Second)
	s := newTestServer(t, Config{Metrics: reg.Handler()})

	rec := do(s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(s, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sitescope_analyses_total") {
		t.Error("expected sitescope metrics in exposition")
	}

	bare := newTestServer(t, Config{})
	if rec := do(bare, http.MethodGet, "/metrics", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without metrics, got %d", rec.Code)
	}
}

func TestServeShutdown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
