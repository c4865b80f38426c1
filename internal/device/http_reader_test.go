package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoSim-25-26J-441/labplan/pkg/config"
)

func newBridge(t *testing.T, slot SlotState) (*httptest.Server, *[]int) {
	t.Helper()
	var armed []int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"devices": []string{"abs96 001"}})
	})
	mux.HandleFunc("GET /devices/{id}/slot", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "abs96 001" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"state": slot})
	})
	mux.HandleFunc("GET /devices/{id}/wavelengths", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"wavelengths": []int{450, 600}})
	})
	mux.HandleFunc("POST /devices/{id}/absorbance", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Wavelength int `json:"wavelength"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		armed = append(armed, body.Wavelength)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /devices/{id}/absorbance", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("wavelength") != "450" {
			http.Error(w, "unsupported wavelength", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": []float64{0.05, 0.1}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &armed
}

func TestHTTPReaderEndToEnd(t *testing.T) {
	srv, armed := newBridge(t, SlotEmpty)
	reader, err := NewHTTPReader(&config.PlateReaderConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewHTTPReader: %v", err)
	}
	ctx := context.Background()

	devices, err := reader.Devices(ctx)
	if err != nil || len(devices) != 1 {
		t.Fatalf("Devices = %v, %v", devices, err)
	}
	state, err := reader.SlotState(ctx, devices[0])
	if err != nil || state != SlotEmpty {
		t.Fatalf("SlotState = %v, %v", state, err)
	}
	wls, err := reader.Wavelengths(ctx, devices[0])
	if err != nil || len(wls) != 2 {
		t.Fatalf("Wavelengths = %v, %v", wls, err)
	}
	if err := reader.InitializeMeasurement(ctx, devices[0], 450); err != nil {
		t.Fatalf("InitializeMeasurement: %v", err)
	}
	if len(*armed) != 1 || (*armed)[0] != 450 {
		t.Fatalf("expected bridge to be armed at 450, got %v", *armed)
	}
	values, err := reader.Measure(ctx, devices[0], 450)
	if err != nil || len(values) != 2 {
		t.Fatalf("Measure = %v, %v", values, err)
	}
	if _, err := reader.Measure(ctx, devices[0], 600); err == nil {
		t.Fatal("expected bridge error to surface")
	}
}

func TestConnectionOverHTTP(t *testing.T) {
	srv, _ := newBridge(t, SlotOccupied)
	reader, err := NewHTTPReader(&config.PlateReaderConfig{BaseURL: srv.URL + "/", Timeout: "1s"})
	if err != nil {
		t.Fatalf("NewHTTPReader: %v", err)
	}
	conn := NewConnection(reader)
	ctx := context.Background()
	if _, err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	values, err := conn.Measure(ctx, DefaultWavelength)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %v", values)
	}
}

func TestNewHTTPReaderValidation(t *testing.T) {
	if _, err := NewHTTPReader(nil); err == nil {
		t.Fatal("expected error for missing config")
	}
	if _, err := NewHTTPReader(&config.PlateReaderConfig{BaseURL: "http://reader", Timeout: "x"}); err == nil {
		t.Fatal("expected error for bad timeout")
	}
}
