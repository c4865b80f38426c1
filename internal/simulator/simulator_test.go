package simulator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

func params(asp, disp, mix float64, reps int, transfer float64) models.ProtocolParameters {
	return models.ProtocolParameters{
		AspirationSpeed: asp,
		DispenseSpeed:   disp,
		MixVolume:       mix,
		MixRepetitions:  reps,
		TransferVolume:  transfer,
	}
}

func TestSimulateDefaultsPass(t *testing.T) {
	r := Simulate(models.DefaultProtocolParameters())
	if !r.Passed {
		t.Fatalf("expected default protocol to pass, errors: %v", r.Errors)
	}
	if r.TotalVolumeHandled != 1200 {
		t.Fatalf("expected 1200 µL handled, got %g", r.TotalVolumeHandled)
	}
	// per well: 200/50+200/50+5 = 13, 3*(100/50+100/50)+2 = 14
	if want := 6.0 * 27; math.Abs(r.EstimatedTimeSeconds-want) > 1e-9 {
		t.Fatalf("expected %g seconds, got %g", want, r.EstimatedTimeSeconds)
	}
	if r.Pipette != models.PipetteMedium {
		t.Fatalf("expected medium pipette, got %s", r.Pipette)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", r.Warnings)
	}

	wells := 0
	for _, line := range r.Log {
		if strings.HasPrefix(line, "Well A") {
			wells++
		}
	}
	if wells != StandardCurvePoints {
		t.Fatalf("expected %d well log lines, got %d", StandardCurvePoints, wells)
	}
}

func TestSimulateMixExceedsTransferFails(t *testing.T) {
	r := Simulate(params(50, 50, 300, 3, 200))
	if r.Passed {
		t.Fatal("expected simulation to fail")
	}
	if len(r.Errors) != 1 || !strings.Contains(r.Errors[0], "Mix volume (300µL) exceeds transfer volume (200µL)") {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	var infeasible *models.PhysicalInfeasibilityError
	if !errors.As(r.Err()[0], &infeasible) {
		t.Fatalf("expected PhysicalInfeasibilityError, got %T", r.Err()[0])
	}
	if r.EstimatedTimeSeconds <= 0 {
		t.Fatal("timing is still accumulated when a rule fails")
	}
}

func TestSimulateInvalidParametersStopEarly(t *testing.T) {
	r := Simulate(params(2000, 50, 100, 25, 200))
	if r.Passed {
		t.Fatal("expected failure")
	}
	if len(r.Errors) != 2 {
		t.Fatalf("expected both range errors, got %v", r.Errors)
	}
	if len(r.Log) != 0 || r.EstimatedTimeSeconds != 0 || r.TotalVolumeHandled != 0 {
		t.Fatalf("no stage should run after validation fails: %+v", r)
	}
	var rangeErr *models.RangeError
	if !errors.As(r.Err()[0], &rangeErr) {
		t.Fatalf("expected RangeError, got %T", r.Err()[0])
	}
}

func TestSimulateWarnings(t *testing.T) {
	tests := []struct {
		name string
		p    models.ProtocolParameters
		want string
	}{
		{"near maximum", params(100, 100, 100, 3, 960), "near pipette maximum"},
		{"bubble risk", params(400, 100, 10, 3, 40), "air bubbles"},
		{"small pipette", params(50, 50, 10, 3, 15), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Simulate(tt.p)
			if !r.Passed {
				t.Fatalf("warnings must not fail the run: %v", r.Errors)
			}
			if tt.want == "" {
				if len(r.Warnings) != 0 {
					t.Fatalf("expected no warnings, got %v", r.Warnings)
				}
				return
			}
			if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], tt.want) {
				t.Fatalf("expected warning containing %q, got %v", tt.want, r.Warnings)
			}
		})
	}
}

func TestSimulateIsRepeatable(t *testing.T) {
	p := params(120, 80, 50, 4, 150)
	a, b := Simulate(p), Simulate(p)
	if a.Text() != b.Text() {
		t.Fatalf("expected identical reports:\n%s\n---\n%s", a.Text(), b.Text())
	}
}

func TestReportText(t *testing.T) {
	text := Simulate(params(50, 50, 300, 3, 200)).Text()
	for _, want := range []string{"ERRORS", "SIMULATION FAILED", "Total volume handled: 1200µL"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in report:\n%s", want, text)
		}
	}
}
