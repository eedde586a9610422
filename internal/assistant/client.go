package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/sitescope/internal/config"
)

// maxResponseSize caps the bytes read from the API.
const maxResponseSize = 2 << 20

// Reply messages.
const (
	msgValidation    = "Por favor, ingresa una pregunta para el asistente."
	msgConfiguration = "**Error de Configuración (503):** La clave API de Gemini no está configurada. El asistente no está disponible."
	msgNoResponse    = "**Error de la IA (No Response):** La IA no pudo generar una respuesta. Razón: %s"
	msgUnknownReason = "Desconocida"
	msgAPIError      = "**Error de la API de Gemini:** %s"
	msgNoGoogleMsg   = "No hay mensaje detallado de Google."
	msgTimeout       = "**Error de la API de Gemini:** La solicitud superó el tiempo límite de %s sin respuesta. Inténtalo de nuevo."
	msgInternal      = "**Error Interno del Servidor/Conexión:** %v"
)

// Request is a question about a previous analysis.
type Request struct {
	Question string `json:"question"`
	// AnalysisData is the report JSON; empty means {}.
	AnalysisData json.RawMessage `json:"analysis_data"`
}

// Reply is the uniform answer returned to the caller.
type Reply struct {
	// StatusCode is the HTTP status the inbound surface responds with.
	StatusCode int `json:"-"`

	// Response is the answer text or an explanatory Spanish message.
	Response string `json:"response"`

	// Err classifies failures; nil on success.
	Err error `json:"-"`
}

// Recorder receives the status of every reply. metrics.Registry
// implements it.
type Recorder interface {
	ObserveAssistant(status int)
}

// Client calls the generateContent endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string
	timeout    time.Duration
	logger     *slog.Logger
	recorder   Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the credential. Empty leaves the assistant unavailable.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithEndpoint sets the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRecorder sets the reply recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a Client with the default model, endpoint and timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		model:      config.DefaultGeminiModel,
		endpoint:   config.DefaultGeminiEndpoint,
		timeout:    config.DefaultAssistantTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig wires a Client from cfg.
func NewClientFromConfig(cfg *config.Config, logger *slog.Logger, recorder Recorder) *Client {
	return NewClient(
		WithAPIKey(cfg.GeminiAPIKey),
		WithModel(cfg.GeminiModel),
		WithEndpoint(cfg.GeminiEndpoint),
		WithTimeout(cfg.AssistantTimeout),
		WithLogger(logger),
		WithRecorder(recorder),
	)
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Ask validates req, then forwards it. A blank question is rejected
// before the credential is checked.
func (c *Client) Ask(ctx context.Context, req Request) *Reply {
	reply := c.ask(ctx, req)
	if c.recorder != nil {
		c.recorder.ObserveAssistant(reply.StatusCode)
	}
	if reply.Err != nil {
		c.logger.Warn("assistant request failed", "status", reply.StatusCode, "error", reply.Err)
	}
	return reply
}

func (c *Client) ask(ctx context.Context, req Request) *Reply {
	if strings.TrimSpace(req.Question) == "" {
		return &Reply{StatusCode: http.StatusBadRequest, Response: msgValidation, Err: ErrValidation}
	}
	if !c.Configured() {
		return &Reply{StatusCode: http.StatusServiceUnavailable, Response: msgConfiguration, Err: ErrConfiguration}
	}

	prompt, err := BuildPrompt(req.AnalysisData, req.Question)
	if err != nil {
		return internalReply(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.generate(ctx, prompt)
	if err != nil {
		return c.errorReply(ctx, err)
	}

	if text := resp.firstText(); text != "" {
		return &Reply{StatusCode: http.StatusOK, Response: text}
	}
	return &Reply{
		StatusCode: http.StatusInternalServerError,
		Response:   fmt.Sprintf(msgNoResponse, resp.feedback()),
		Err:        ErrUpstreamEmpty,
	}
}

func (c *Client) errorReply(ctx context.Context, err error) *Reply {
	var upstream *UpstreamError
	switch {
	case errors.As(err, &upstream):
		return &Reply{
			StatusCode: http.StatusInternalServerError,
			Response:   fmt.Sprintf(msgAPIError, upstreamDetail(upstream)),
			Err:        err,
		}
	case isTimeout(ctx, err):
		return &Reply{
			StatusCode: http.StatusInternalServerError,
			Response:   fmt.Sprintf(msgTimeout, c.timeout),
			Err:        fmt.Errorf("%w: %w", ErrUpstreamTimeout, err),
		}
	default:
		return internalReply(err)
	}
}

func internalReply(err error) *Reply {
	return &Reply{StatusCode: http.StatusInternalServerError, Response: fmt.Sprintf(msgInternal, err), Err: err}
}

func upstreamDetail(e *UpstreamError) string {
	detail := fmt.Sprintf("Error HTTP %d.", e.StatusCode)
	switch {
	case errors.Is(e, ErrUpstreamAuth):
		detail += " **(AUTENTICACIÓN FALLIDA - Revisa tu clave API)**."
	case errors.Is(e, ErrUpstreamQuota):
		detail += " **(Límite de cuota excedido)**."
	}
	msg := e.Message
	if msg == "" {
		msg = msgNoGoogleMsg
	}
	return detail + " Mensaje de Google: " + msg
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback json.RawMessage `json:"promptFeedback"`
}

func (r *generateResponse) firstText() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

func (r *generateResponse) feedback() string {
	if len(r.PromptFeedback) == 0 || string(r.PromptFeedback) == "null" {
		return msgUnknownReason
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.PromptFeedback, "", "  "); err != nil {
		return string(r.PromptFeedback)
	}
	return buf.String()
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generate performs the POST and decodes a 2xx body.
func (c *Client) generate(ctx context.Context, prompt string) (*generateResponse, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.apiKey)

	c.logger.Debug("calling assistant", "model", c.model, "prompt_bytes", len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		_ = json.Unmarshal(data, &ae)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: ae.Error.Message}
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode assistant response: %w", err)
	}
	return &out, nil
}
