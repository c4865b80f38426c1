package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/labplan/internal/metrics"
	"github.com/GoSim-25-26J-441/labplan/internal/tools"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
)

const maxBodyBytes = 1 << 20

// HTTPServer exposes the tool registry over JSON/HTTP
type HTTPServer struct {
	mux      *http.ServeMux
	registry *tools.Registry
}

// NewHTTPServer routes /healthz, /metrics and /v1/tools
func NewHTTPServer(registry *tools.Registry) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		registry: registry,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("/v1/tools", s.handleListTools)
	s.mux.HandleFunc("/v1/tools/", s.handleToolByName)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleListTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.List()})
}

// handleToolByName serves /v1/tools/{name}:call and /v1/tools/{name}
func (s *HTTPServer) handleToolByName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/tools/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "parse_error", "tool name is required")
		return
	}

	if name, ok := strings.CutSuffix(path, ":call"); ok {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		s.handleCallTool(w, r, name)
		return
	}

	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	tool, ok := s.registry.Lookup(path)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown_tool", "unknown tool: "+path)
		return
	}
	s.writeJSON(w, http.StatusOK, tool)
}

func (s *HTTPServer) handleCallTool(w http.ResponseWriter, r *http.Request, name string) {
	raw := map[string]any{}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "parse_error", "invalid JSON body: "+err.Error())
		return
	}

	args, err := tools.ArgsFromMap(raw)
	if err != nil {
		s.writeToolError(w, err)
		return
	}

	res, err := s.registry.Call(r.Context(), name, args)
	if err != nil {
		s.writeToolError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, res.Text)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) writeToolError(w http.ResponseWriter, err error) {
	class := classify(err)
	s.writeError(w, class.httpCode, class.kind, err.Error())
}

// writeJSON encodes v before committing the status so an unencodable value
// turns into a 500 with an error body instead of an empty success.
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{
			"error": "failed to encode response: " + err.Error(),
			"kind":  "internal",
		})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, kind, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}
