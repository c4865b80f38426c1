package server

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/labplan/internal/optimizer"
	"github.com/GoSim-25-26J-441/labplan/internal/tools"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
)

func newTestRegistry() *tools.Registry {
	return tools.New(tools.Deps{
		Optimizer: optimizer.New(optimizer.NewScoreModel(1), optimizer.WithLogger(logger.Discard())),
		Logger:    logger.Discard(),
	})
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewHTTPServer(newTestRegistry()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHTTPHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body)
	}
}

func TestHTTPListTools(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/tools")
	if err != nil {
		t.Fatalf("GET /v1/tools: %v", err)
	}
	body := decodeBody(t, resp)
	list, ok := body["tools"].([]any)
	if !ok || len(list) == 0 {
		t.Fatalf("expected tool list, got %v", body)
	}

	names := map[string]bool{}
	for _, item := range list {
		names[item.(map[string]any)["name"].(string)] = true
	}
	for _, want := range []string{
		"validate_labware", "find_labware", "check_deck_layout", "suggest_deck_layout",
		"validate_protocol_params", "simulate_protocol", "optimize_parameters", "calculate_assay_metrics",
	} {
		if !names[want] {
			t.Errorf("tool %s not listed", want)
		}
	}
}

func TestHTTPGetTool(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/tools/simulate_protocol_execution")
	if err != nil {
		t.Fatalf("GET tool: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["name"] != "simulate_protocol" {
		t.Fatalf("expected alias to resolve, got %v", body["name"])
	}
}

func TestHTTPCallTool(t *testing.T) {
	ts := newTestServer(t)

	payload := `{"aspiration_speed": 50, "dispense_speed": 50, "mix_volume": 100, "mix_repetitions": 3, "transfer_volume": 200}`
	resp, err := http.Post(ts.URL+"/v1/tools/simulate_protocol:call", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST call: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["tool"] != "simulate_protocol" || body["call_id"] == "" {
		t.Fatalf("unexpected envelope %v", body)
	}
	data := body["data"].(map[string]any)
	if data["passed"] != true {
		t.Fatalf("expected passed simulation, got %v", data)
	}
	if data["total_volume_handled"] != float64(1200) {
		t.Fatalf("expected 1200 µL handled, got %v", data["total_volume_handled"])
	}
}

func TestHTTPCallToolText(t *testing.T) {
	ts := newTestServer(t)

	payload := `{"name": "corning_96_wellplate_360ul_flat"}`
	resp, err := http.Post(ts.URL+"/v1/tools/validate_labware:call?format=text", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST call: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
	text, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(text), "corning_96_wellplate_360ul_flat") {
		t.Fatalf("expected report mentioning labware, got %q", text)
	}
}

func TestHTTPCallToolErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{"unknown tool", "/v1/tools/launch_rocket:call", `{}`, http.StatusNotFound, "unknown_tool"},
		{"invalid json", "/v1/tools/simulate_protocol:call", `{"aspiration_speed":`, http.StatusBadRequest, "parse_error"},
		{"malformed number", "/v1/tools/simulate_protocol:call",
			`{"aspiration_speed": "fast", "dispense_speed": 50, "mix_volume": 100, "mix_repetitions": 3, "transfer_volume": 200}`,
			http.StatusBadRequest, "parse_error"},
		{"missing argument", "/v1/tools/validate_labware:call", `{}`, http.StatusBadRequest, "parse_error"},
		{"concentrations do not match curve", "/v1/tools/calculate_assay_metrics:call",
			`{"absorbance_values": "0.9,0.1,0.5,0.2,0.8,0.3", "concentrations": "0,10"}`,
			http.StatusBadRequest, "parse_error"},
		{"overflowing readings", "/v1/tools/calculate_assay_metrics:call",
			`{"absorbance_values": "1e308,1e308,1e308,1e308,1e308,1e308"}`,
			http.StatusBadRequest, "parse_error"},
		{"reader not configured", "/v1/tools/connect_plate_reader:call", `{}`, http.StatusServiceUnavailable, "not_configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+tt.path, "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			body := decodeBody(t, resp)
			if body["kind"] != tt.wantKind {
				t.Fatalf("expected kind %s, got %v", tt.wantKind, body)
			}
			if msg, _ := body["error"].(string); msg == "" {
				t.Fatalf("expected an error message, got %v", body)
			}
		})
	}
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	s := NewHTTPServer(newTestRegistry())
	rec := httptest.NewRecorder()

	s.writeJSON(rec, http.StatusOK, map[string]float64{"r_squared": math.NaN()})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q: %v", rec.Body.String(), err)
	}
	if body["kind"] != "internal" || !strings.Contains(body["error"], "unsupported value") {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/tools/simulate_protocol:call")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/v1/tools", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHTTPMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/tools/find_labware:call", "application/json", strings.NewReader(`{"description": "reservoir"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	text, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(text), `labplan_tool_calls_total{outcome="ok",tool="find_labware"}`) {
		t.Fatalf("expected tool call counter in metrics output")
	}
}
