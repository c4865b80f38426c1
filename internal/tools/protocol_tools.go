package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/labplan/internal/metrics"
	"github.com/GoSim-25-26J-441/labplan/internal/protocol"
	"github.com/GoSim-25-26J-441/labplan/internal/simulator"
	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

type paramsCheck struct {
	Valid        bool                `json:"valid"`
	Errors       []string            `json:"errors"`
	PipetteModel models.PipetteModel `json:"pipette_model,omitempty"`
	Instrument   string              `json:"instrument,omitempty"`
}

func (s *service) registerProtocolTools(r *Registry) {
	defaults := models.DefaultProtocolParameters()

	r.mustRegister(Tool{
		Name:        "validate_protocol_params",
		Description: "Check liquid-handling parameters against physical limits and pick a pipette",
		Params:      protocolParamSpecs(nil),
		Handler:     s.validateProtocolParams,
	})
	r.mustRegister(Tool{
		Name:        "simulate_protocol",
		Aliases:     []string{"simulate_protocol_execution"},
		Description: "Dry-run the standard-curve protocol and estimate runtime",
		Params:      protocolParamSpecs(nil),
		Handler:     s.simulateProtocol,
	})
	r.mustRegister(Tool{
		Name:        "create_assay_protocol",
		Aliases:     []string{"create_tartrazine_assay_protocol"},
		Description: "Generate the tartrazine standard-curve protocol script",
		Params:      protocolParamSpecs(&defaults),
		Handler:     s.createAssayProtocol,
	})
	r.mustRegister(Tool{
		Name:        "generate_optimized_protocol",
		Description: "Generate the protocol script with the optimized parameters",
		Handler:     s.generateOptimizedProtocol,
	})
}

func (s *service) validateProtocolParams(_ context.Context, args Args) (*Result, error) {
	p, err := protocolParams(args)
	if err != nil {
		return nil, err
	}

	errs := protocol.Validate(p)
	if len(errs) > 0 {
		msgs := protocol.Messages(errs)
		return &Result{
			Data: paramsCheck{Errors: msgs},
			Text: "Parameter validation failed:\n  - " + strings.Join(msgs, "\n  - "),
		}, nil
	}

	pipette := protocol.SelectPipette(p.TransferVolume)
	return &Result{
		Data: paramsCheck{Valid: true, Errors: []string{}, PipetteModel: pipette, Instrument: pipette.InstrumentName()},
		Text: fmt.Sprintf("Parameters valid. Selected pipette: %s (%s)", pipette.InstrumentName(), pipette),
	}, nil
}

func (s *service) simulateProtocol(_ context.Context, args Args) (*Result, error) {
	p, err := protocolParams(args)
	if err != nil {
		return nil, err
	}
	report := simulator.Simulate(p)
	metrics.RecordSimulation(report.Passed)
	return &Result{Data: report, Text: report.Text()}, nil
}

func (s *service) createAssayProtocol(_ context.Context, args Args) (*Result, error) {
	p, err := protocolParams(args)
	if err != nil {
		return nil, err
	}
	script, err := protocol.Generate(p)
	if err != nil {
		return nil, err
	}
	return &Result{Data: script, Text: script.Source}, nil
}

func (s *service) generateOptimizedProtocol(context.Context, Args) (*Result, error) {
	p := models.DefaultProtocolParameters()
	script, err := protocol.Generate(p)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("OPTIMIZED TARTRAZINE PROTOCOL\n\n")
	b.WriteString("Using optimized parameters from automated experimentation:\n")
	fmt.Fprintf(&b, "- Aspiration Speed: %g µL/s\n", p.AspirationSpeed)
	fmt.Fprintf(&b, "- Dispense Speed: %g µL/s\n", p.DispenseSpeed)
	fmt.Fprintf(&b, "- Mix Repetitions: %d\n\n", p.MixRepetitions)
	b.WriteString(script.Source)
	return &Result{Data: script, Text: b.String()}, nil
}
