package tools

import (
	"context"

	"github.com/GoSim-25-26J-441/labplan/internal/assay"
	"github.com/GoSim-25-26J-441/labplan/internal/metrics"
	"github.com/GoSim-25-26J-441/labplan/internal/optimizer"
)

func (s *service) registerExperimentTools(r *Registry) {
	r.mustRegister(Tool{
		Name:        "optimize_parameters",
		Aliases:     []string{"run_parameter_optimization_experiment"},
		Description: "Search speed and mix-repetition combinations for the best standard curve",
		Params: []Param{
			{Name: "speed_range", Default: "20,50,100", Description: "Comma-separated flow rates in µL/s, used for both aspiration and dispense"},
			{Name: "mix_rep_range", Default: "2,3,5", Description: "Comma-separated mix repetition counts"},
			{Name: "target_r_squared", Default: "0.95", Description: "Minimum acceptable R²"},
			{Name: "target_cv", Default: "10", Description: "Maximum acceptable CV in percent"},
		},
		Handler: s.optimizeParameters,
	})
	r.mustRegister(Tool{
		Name:        "calculate_assay_metrics",
		Description: "Compute standard-curve R² and replicate CV from absorbance readings",
		Params: []Param{
			{Name: "absorbance_values", Required: true, Description: "Comma-separated absorbance readings"},
			{Name: "concentrations", Default: "0,10,20,50,100,200", Description: "Comma-separated standard concentrations"},
		},
		Handler: s.calculateAssayMetrics,
	})
}

func (s *service) optimizeParameters(ctx context.Context, args Args) (*Result, error) {
	speeds, err := args.FloatList("speed_range")
	if err != nil {
		return nil, err
	}
	reps, err := args.IntList("mix_rep_range")
	if err != nil {
		return nil, err
	}
	targetR2, err := args.Float("target_r_squared")
	if err != nil {
		return nil, err
	}
	targetCV, err := args.Float("target_cv")
	if err != nil {
		return nil, err
	}

	res, err := s.Optimizer.Optimize(ctx, optimizer.Request{
		Speeds:         speeds,
		MixRepetitions: reps,
		TargetRSquared: targetR2,
		TargetCV:       targetCV,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordOptimizerGrid(res.Tested, res.GridSize)
	return &Result{Data: res, Text: res.Text()}, nil
}

func (s *service) calculateAssayMetrics(_ context.Context, args Args) (*Result, error) {
	absorbance, err := args.FloatList("absorbance_values")
	if err != nil {
		return nil, err
	}
	concentrations, err := args.FloatList("concentrations")
	if err != nil {
		return nil, err
	}
	m, err := assay.Compute(absorbance, concentrations)
	if err != nil {
		return nil, err
	}
	return &Result{Data: m, Text: m.Text()}, nil
}
