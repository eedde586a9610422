package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nao1215/sitescope/internal/assistant"
	"github.com/nao1215/sitescope/internal/fetch"
	"github.com/nao1215/sitescope/internal/pipeline"
)

var (
	errInvalidBody = errors.New("invalid JSON body")
	errMissingURL  = errors.New("url is required")
)

// analyzeRequest is the body of POST /api/analyze.
type analyzeRequest struct {
	URL string `json:"url"`
}

// handleIndex renders the form, and on POST the analysis of its url
// field. Analysis failures are shown on the page, not as HTTP errors.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := &pageData{}
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		target := strings.TrimSpace(r.PostFormValue("url"))
		page.URL = target

		report, err := s.cfg.Analyzer.Analyze(r.Context(), target)
		if err != nil {
			s.requestLogger(r).Warn("analysis failed", "url", target, "error", err)
			page.Error = err.Error()
		} else {
			page.setReport(report)
		}
	}
	s.render(w, r, page)
}

// handleAskAI relays a question to the assistant. The reply's status code
// is the response status.
func (s *Server) handleAskAI(w http.ResponseWriter, r *http.Request) {
	var req assistant.Request
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		// An unreadable body carries no question, so the assistant
		// answers it with its validation reply.
		s.requestLogger(r).Debug("unreadable assistant request", "error", err)
		req = assistant.Request{}
	}

	reply := s.cfg.Assistant.Ask(r.Context(), req)
	writeJSON(w, reply.StatusCode, reply)
}

// handleAnalyze is the JSON form of the analysis.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errInvalidBody)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.writeError(w, r, http.StatusBadRequest, errMissingURL)
		return
	}
	if _, err := fetch.ParseTarget(req.URL); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid url %q", req.URL))
		return
	}

	report, err := s.cfg.Analyzer.Analyze(r.Context(), req.URL)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, pipeline.ErrConnectivity):
		s.writeError(w, r, http.StatusBadGateway, err)
	default:
		s.writeError(w, r, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
