package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/labplan/pkg/config"
)

// HTTPReader drives a plate reader through its REST bridge
type HTTPReader struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPReader creates a driver from the plate_reader config section
func NewHTTPReader(cfg *config.PlateReaderConfig) (*HTTPReader, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid plate reader timeout: %w", err)
	}
	return &HTTPReader{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Devices lists attached readers
func (r *HTTPReader) Devices(ctx context.Context) ([]string, error) {
	var out struct {
		Devices []string `json:"devices"`
	}
	if err := r.do(ctx, http.MethodGet, "/devices", nil, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// SlotState reports whether a plate is in the drawer
func (r *HTTPReader) SlotState(ctx context.Context, deviceID string) (SlotState, error) {
	var out struct {
		State SlotState `json:"state"`
	}
	if err := r.do(ctx, http.MethodGet, devicePath(deviceID, "slot"), nil, &out); err != nil {
		return SlotUnknown, err
	}
	if out.State == "" {
		return SlotUnknown, nil
	}
	return out.State, nil
}

// Wavelengths lists the measurable wavelengths in nm
func (r *HTTPReader) Wavelengths(ctx context.Context, deviceID string) ([]int, error) {
	var out struct {
		Wavelengths []int `json:"wavelengths"`
	}
	if err := r.do(ctx, http.MethodGet, devicePath(deviceID, "wavelengths"), nil, &out); err != nil {
		return nil, err
	}
	return out.Wavelengths, nil
}

// InitializeMeasurement arms a single absorbance measurement
func (r *HTTPReader) InitializeMeasurement(ctx context.Context, deviceID string, wavelength int) error {
	body := map[string]int{"wavelength": wavelength}
	return r.do(ctx, http.MethodPost, devicePath(deviceID, "absorbance"), body, nil)
}

// Measure reads one value per well
func (r *HTTPReader) Measure(ctx context.Context, deviceID string, wavelength int) ([]float64, error) {
	var out struct {
		Values []float64 `json:"values"`
	}
	path := devicePath(deviceID, "absorbance") + "?wavelength=" + strconv.Itoa(wavelength)
	if err := r.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

func devicePath(deviceID, resource string) string {
	return "/devices/" + url.PathEscape(deviceID) + "/" + resource
}

func (r *HTTPReader) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("plate reader %s %s returned status %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
