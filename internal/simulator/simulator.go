// Package simulator dry-runs the standard-curve protocol: it re-validates the
// parameters, walks the fixed well sequence accumulating time and volume, and
// applies the heuristic safety rules that decide whether a run may proceed.
package simulator

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/labplan/internal/protocol"
	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

const (
	// StandardCurvePoints is the number of wells the protocol fills
	StandardCurvePoints = 6

	transferOverheadSeconds = 5
	mixOverheadSeconds      = 2

	nearMaxTransferVolume = 950
	bubbleRiskSpeed       = 300
	bubbleRiskVolume      = 50
	smallPipetteVolume    = 20
)

// Report is the outcome of one simulation. Passed is true iff Errors is empty.
type Report struct {
	Log                  []string            `json:"log"`
	Warnings             []string            `json:"warnings"`
	Errors               []string            `json:"errors"`
	EstimatedTimeSeconds float64             `json:"estimated_time_seconds"`
	TotalVolumeHandled   float64             `json:"total_volume_handled"`
	Pipette              models.PipetteModel `json:"pipette_model,omitempty"`
	Passed               bool                `json:"passed"`

	failures []error
}

// Err returns the typed errors that failed the simulation, or nil if it passed.
func (r *Report) Err() []error {
	return r.failures
}

func (r *Report) fail(err error) {
	r.failures = append(r.failures, err)
	r.Errors = append(r.Errors, err.Error())
}

// Simulate runs the protocol described by p without touching hardware.
func Simulate(p models.ProtocolParameters) *Report {
	report := &Report{
		Log:      []string{},
		Warnings: []string{},
		Errors:   []string{},
	}

	if errs := protocol.Validate(p); len(errs) > 0 {
		for _, err := range errs {
			report.fail(err)
		}
		return report
	}
	report.Log = append(report.Log, "Parameter validation passed")

	report.Pipette = protocol.SelectPipette(p.TransferVolume)
	if report.Pipette == models.PipetteSmall && p.MixVolume > smallPipetteVolume {
		report.Warnings = append(report.Warnings, "Mix volume exceeds pipette capacity for selected transfer volume")
	}
	report.Log = append(report.Log, "Selected pipette: "+report.Pipette.InstrumentName())
	report.Log = append(report.Log, "Labware loading simulation passed")

	for i := 0; i < StandardCurvePoints; i++ {
		transfer := p.TransferVolume/p.AspirationSpeed + p.TransferVolume/p.DispenseSpeed + transferOverheadSeconds
		mix := float64(p.MixRepetitions)*(p.MixVolume/p.AspirationSpeed+p.MixVolume/p.DispenseSpeed) + mixOverheadSeconds
		report.EstimatedTimeSeconds += transfer + mix
		report.Log = append(report.Log, fmt.Sprintf("Well A%d: Transfer %gµL + Mix %dx%gµL",
			i+1, p.TransferVolume, p.MixRepetitions, p.MixVolume))
	}

	if p.TransferVolume > nearMaxTransferVolume {
		report.Warnings = append(report.Warnings, "Transfer volume near pipette maximum - consider smaller volume")
	}
	if p.MixVolume > p.TransferVolume {
		report.fail(&models.PhysicalInfeasibilityError{
			Reason: fmt.Sprintf("Mix volume (%gµL) exceeds transfer volume (%gµL)", p.MixVolume, p.TransferVolume),
		})
	}
	if p.AspirationSpeed > bubbleRiskSpeed && p.TransferVolume < bubbleRiskVolume {
		report.Warnings = append(report.Warnings, "High aspiration speed with small volume may cause air bubbles")
	}

	report.TotalVolumeHandled = StandardCurvePoints * p.TransferVolume
	report.Passed = len(report.Errors) == 0
	return report
}

// Text renders the report for humans.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("PROTOCOL SIMULATION RESULTS\n\n")

	if len(r.Errors) > 0 {
		b.WriteString("ERRORS (will prevent execution):\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
		b.WriteString("\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("WARNINGS (may affect performance):\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
		b.WriteString("\n")
	}
	if len(r.Log) > 0 {
		b.WriteString("Simulation log:\n")
		for _, l := range r.Log {
			fmt.Fprintf(&b, "  %s\n", l)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Estimated runtime: %.1f seconds (%.1f minutes)\n", r.EstimatedTimeSeconds, r.EstimatedTimeSeconds/60)
	fmt.Fprintf(&b, "Total volume handled: %gµL\n\n", r.TotalVolumeHandled)

	if r.Passed {
		b.WriteString("SIMULATION PASSED - protocol ready for execution")
	} else {
		b.WriteString("SIMULATION FAILED - fix errors before execution")
	}
	return b.String()
}
