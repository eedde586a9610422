package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type statusRecorder struct{ statuses []int }

func (r *statusRecorder) ObserveAssistant(status int) { r.statuses = append(r.statuses, status) }

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestAskValidationOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		question string
		status   int
		err      error
		response string
	}{
		{name: "empty question without key", key: "", question: "", status: 400, err: ErrValidation, response: msgValidation},
		{name: "empty question with key", key: "k", question: "   ", status: 400, err: ErrValidation, response: msgValidation},
		{name: "question without key", key: "", question: "¿Qué mejoro?", status: 503, err: ErrConfiguration, response: msgConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &statusRecorder{}
			c := NewClient(WithAPIKey(tt.key), WithEndpoint("http://127.0.0.1:1"), WithRecorder(rec))
			reply := c.Ask(context.Background(), Request{Question: tt.question})
			if reply.StatusCode != tt.status || !errors.Is(reply.Err, tt.err) || reply.Response != tt.response {
				t.Errorf("unexpected reply %+v", reply)
			}
			if len(rec.statuses) != 1 || rec.statuses[0] != tt.status {
				t.Errorf("expected recorder to see %d, got %v", tt.status, rec.statuses)
			}
		})
	}
}

func TestAskSuccess(t *testing.T) {
	t.Parallel()

	type captured struct{ path, key, prompt string }
	seen := make(chan captured, 1)
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		c := captured{path: r.URL.Path, key: r.Header.Get("X-goog-api-key")}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			c.prompt = req.Contents[0].Parts[0].Text
		}
		seen <- c
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Añade una CSP."}]}}]}`))
	})

	c := NewClient(WithAPIKey("secret"), WithEndpoint(srv.URL+"/"), WithModel("gemini-test"))
	reply := c.Ask(context.Background(), Request{
		Question:     "¿Qué cabecera falta?",
		AnalysisData: json.RawMessage(`{"titulo":"Inicio","analisis_cabeceras":{"CSP":"AUSENTE: RIESGO ALTO"}}`),
	})

	if reply.StatusCode != http.StatusOK || reply.Response != "Añade una CSP." || reply.Err != nil {
		t.Fatalf("unexpected reply %+v", reply)
	}
	got := <-seen
	gotPath, gotKey, gotPrompt := got.path, got.key, got.prompt
	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if !strings.Contains(gotPrompt, "PREGUNTA DEL USUARIO: ¿Qué cabecera falta?") {
		t.Errorf("prompt misses the question: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "{\n  \"titulo\": \"Inicio\",\n  \"analisis_cabeceras\"") {
		t.Errorf("prompt misses indented data in source order: %q", gotPrompt)
	}
}

func TestAskUpstreamFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		err      error
		response string
	}{
		{
			name:     "auth failure",
			status:   http.StatusForbidden,
			body:     `{"error":{"message":"API key not valid"}}`,
			err:      ErrUpstreamAuth,
			response: "**Error de la API de Gemini:** Error HTTP 403. **(AUTENTICACIÓN FALLIDA - Revisa tu clave API)**. Mensaje de Google: API key not valid",
		},
		{
			name:     "quota",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"message":"Resource exhausted"}}`,
			err:      ErrUpstreamQuota,
			response: "**Error de la API de Gemini:** Error HTTP 429. **(Límite de cuota excedido)**. Mensaje de Google: Resource exhausted",
		},
		{
			name:     "generic without message",
			status:   http.StatusBadGateway,
			body:     `not json`,
			err:      ErrUpstreamGeneric,
			response: "**Error de la API de Gemini:** Error HTTP 502. Mensaje de Google: No hay mensaje detallado de Google.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := NewClient(WithAPIKey("k"), WithEndpoint(srv.URL))
			reply := c.Ask(context.Background(), Request{Question: "hola"})
			if reply.StatusCode != http.StatusInternalServerError {
				t.Errorf("expected 500, got %d", reply.StatusCode)
			}
			if !errors.Is(reply.Err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, reply.Err)
			}
			if reply.Response != tt.response {
				t.Errorf("expected %q, got %q", tt.response, reply.Response)
			}
		})
	}
}

func TestAskEmptyAnswer(t *testing.T) {
	t.Parallel()

	t.Run("with feedback", func(t *testing.T) {
		t.Parallel()
		srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
		})
		reply := NewClient(WithAPIKey("k"), WithEndpoint(srv.URL)).Ask(context.Background(), Request{Question: "q"})
		if reply.StatusCode != 500 || !errors.Is(reply.Err, ErrUpstreamEmpty) {
			t.Fatalf("unexpected reply %+v", reply)
		}
		if !strings.Contains(reply.Response, `"blockReason": "SAFETY"`) {
			t.Errorf("expected feedback in response, got %q", reply.Response)
		}
	})

	t.Run("without feedback", func(t *testing.T) {
		t.Parallel()
		srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[]}}]}`))
		})
		reply := NewClient(WithAPIKey("k"), WithEndpoint(srv.URL)).Ask(context.Background(), Request{Question: "q"})
		want := "**Error de la IA (No Response):** La IA no pudo generar una respuesta. Razón: Desconocida"
		if reply.Response != want {
			t.Errorf("expected %q, got %q", want, reply.Response)
		}
	})
}

func TestAskTimeoutAndTransport(t *testing.T) {
	t.Parallel()

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		})
		c := NewClient(WithAPIKey("k"), WithEndpoint(srv.URL), WithTimeout(50*time.Millisecond))
		reply := c.Ask(context.Background(), Request{Question: "q"})
		if reply.StatusCode != 500 || !errors.Is(reply.Err, ErrUpstreamTimeout) {
			t.Fatalf("unexpected reply %+v", reply)
		}
		if !strings.Contains(reply.Response, "tiempo límite de 50ms") {
			t.Errorf("unexpected message %q", reply.Response)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		reply := NewClient(WithAPIKey("k"), WithEndpoint(addr)).Ask(context.Background(), Request{Question: "q"})
		if reply.StatusCode != 500 || !strings.HasPrefix(reply.Response, "**Error Interno del Servidor/Conexión:**") {
			t.Errorf("unexpected reply %+v", reply)
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("defaults to empty object", func(t *testing.T) {
		t.Parallel()
		for _, data := range []json.RawMessage{nil, json.RawMessage("null"), json.RawMessage("  ")} {
			p, err := BuildPrompt(data, "q")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(p, "---\n{}\n---") {
				t.Errorf("expected {} block, got %q", p)
			}
		}
	})

	t.Run("keeps non-ascii text", func(t *testing.T) {
		t.Parallel()
		p, err := BuildPrompt(json.RawMessage(`{"titulo":"Canción"}`), "¿por qué?")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(p, `"titulo": "Canción"`) || !strings.HasPrefix(p, "Eres un experto en SEO") {
			t.Errorf("unexpected prompt %q", p)
		}
		if !strings.HasSuffix(p, "Genera una respuesta clara, concisa y profesional.") {
			t.Errorf("unexpected prompt ending %q", p)
		}
	})

	t.Run("rejects invalid data", func(t *testing.T) {
		t.Parallel()
		if _, err := BuildPrompt(json.RawMessage(`{bad`), "q"); err == nil {
			t.Error("expected error")
		}
	})
}
