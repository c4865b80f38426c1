// Package device owns connections to bench instruments. The plate reader is
// the one shared, mutable resource in the system, so every operation on it goes
// through a Connection that grants exclusive access.
package device

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotConnected is returned when an operation needs an open connection
	ErrNotConnected = errors.New("plate reader not connected")
	// ErrDeviceBusy is returned when exclusive access could not be obtained in time
	ErrDeviceBusy = errors.New("plate reader busy")
	// ErrNoDevices is returned when discovery finds nothing to connect to
	ErrNoDevices = errors.New("no plate reader devices found")
	// ErrNotConfigured is returned when no plate reader bridge is configured
	ErrNotConfigured = errors.New("plate reader not configured")
)

// DefaultWavelength is the tartrazine absorbance peak in nm
const DefaultWavelength = 450

// SlotState is the plate drawer state
type SlotState string

const (
	SlotEmpty    SlotState = "empty"
	SlotOccupied SlotState = "occupied"
	SlotUnknown  SlotState = "unknown"
)

// Step names the two phases of a single absorbance read
type Step string

const (
	StepInitialize Step = "initialize"
	StepMeasure    Step = "measure"
)

// ParseStep validates a step name
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepInitialize, StepMeasure:
		return Step(s), nil
	default:
		return "", fmt.Errorf("invalid step %q: use %q or %q", s, StepInitialize, StepMeasure)
	}
}

// PlateReader is the driver surface of an absorbance plate reader
type PlateReader interface {
	Devices(ctx context.Context) ([]string, error)
	SlotState(ctx context.Context, deviceID string) (SlotState, error)
	Wavelengths(ctx context.Context, deviceID string) ([]int, error)
	InitializeMeasurement(ctx context.Context, deviceID string, wavelength int) error
	Measure(ctx context.Context, deviceID string, wavelength int) ([]float64, error)
}

// SlotError reports the drawer in the wrong state for a step
type SlotError struct {
	Step  Step
	State SlotState
}

func (e *SlotError) Error() string {
	if e.Step == StepInitialize {
		return fmt.Sprintf("remove plate first - slot status: %s", e.State)
	}
	return "no plate detected - insert plate first"
}

// WavelengthError reports a wavelength the reader cannot measure
type WavelengthError struct {
	Wavelength int
	Available  []int
}

func (e *WavelengthError) Error() string {
	return fmt.Sprintf("wavelength %d not available, available: %v", e.Wavelength, e.Available)
}

func checkWavelength(wavelength int, available []int) error {
	if !slices.Contains(available, wavelength) {
		return &WavelengthError{Wavelength: wavelength, Available: available}
	}
	return nil
}
