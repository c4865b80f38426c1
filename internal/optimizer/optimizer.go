// Package optimizer searches a grid of liquid-handling parameters for the
// combination that best calibrates the standard-curve assay.
package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/labplan/internal/simulator"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

// Fixed volumes used for every grid point
const (
	GridMixVolume      = 100
	GridTransferVolume = 200

	DefaultTopN        = 5
	DefaultParallelism = 4
)

// Request describes one optimization experiment
type Request struct {
	Speeds         []float64
	MixRepetitions []int
	TargetRSquared float64
	TargetCV       float64
}

// Candidate is one feasible grid point and its estimated quality
type Candidate struct {
	AspirationSpeed float64 `json:"aspiration_speed"`
	DispenseSpeed   float64 `json:"dispense_speed"`
	MixRepetitions  int     `json:"mix_repetitions"`
	RSquared        float64 `json:"r_squared"`
	CV              float64 `json:"cv"`
	Score           float64 `json:"score"`
}

// Parameters returns the full protocol parameters the candidate stands for
func (c Candidate) Parameters() models.ProtocolParameters {
	return models.ProtocolParameters{
		AspirationSpeed: c.AspirationSpeed,
		DispenseSpeed:   c.DispenseSpeed,
		MixVolume:       GridMixVolume,
		MixRepetitions:  c.MixRepetitions,
		TransferVolume:  GridTransferVolume,
	}
}

// Meets reports whether the candidate satisfies both targets
func (c Candidate) Meets(targetRSquared, targetCV float64) bool {
	return c.RSquared >= targetRSquared && c.CV <= targetCV
}

// Result is the ranked outcome of an experiment
type Result struct {
	TargetRSquared float64     `json:"target_r_squared"`
	TargetCV       float64     `json:"target_cv"`
	GridSize       int         `json:"grid_size"`
	Tested         int         `json:"tested"`
	Top            []Candidate `json:"top"`
	Optimal        *Candidate  `json:"optimal,omitempty"`
	TargetMet      bool        `json:"target_met"`

	ranked []Candidate
}

// Ranked returns every feasible candidate in score order
func (r *Result) Ranked() []Candidate {
	return r.ranked
}

// Optimizer runs grid experiments
type Optimizer struct {
	model       ScoreModel
	parallelism int
	topN        int
	logger      *slog.Logger
}

// Option configures an Optimizer
type Option func(*Optimizer)

// WithParallelism bounds the number of grid points simulated at once
func WithParallelism(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithTopN sets how many ranked candidates the result reports
func WithTopN(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.topN = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an optimizer scoring candidates with model
func New(model ScoreModel, opts ...Option) *Optimizer {
	o := &Optimizer{
		model:       model,
		parallelism: DefaultParallelism,
		topN:        DefaultTopN,
		logger:      logger.Component("optimizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize enumerates speeds × speeds × mix repetitions, drops combinations the
// simulator rejects and ranks the rest by score.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*Result, error) {
	if len(req.Speeds) == 0 {
		return nil, &models.ParseError{Field: "speed_range", Reason: "at least one speed is required"}
	}
	if len(req.MixRepetitions) == 0 {
		return nil, &models.ParseError{Field: "mix_rep_range", Reason: "at least one mix repetition count is required"}
	}

	grid := Grid(req.Speeds, req.MixRepetitions)
	feasible, err := o.filterFeasible(ctx, grid)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate grid: %w", err)
	}

	// Scored sequentially so a seeded noise source yields the same draws
	// regardless of parallelism.
	candidates := make([]Candidate, 0, len(grid))
	for i, p := range grid {
		if !feasible[i] {
			continue
		}
		r2, cv := o.model.Estimate(p)
		candidates = append(candidates, Candidate{
			AspirationSpeed: p.AspirationSpeed,
			DispenseSpeed:   p.DispenseSpeed,
			MixRepetitions:  p.MixRepetitions,
			RSquared:        r2,
			CV:              cv,
			Score:           Score(r2, cv),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	result := &Result{
		TargetRSquared: req.TargetRSquared,
		TargetCV:       req.TargetCV,
		GridSize:       len(grid),
		Tested:         len(candidates),
		ranked:         candidates,
	}
	result.Top = candidates[:min(o.topN, len(candidates))]
	result.Optimal, result.TargetMet = selectOptimal(candidates, req.TargetRSquared, req.TargetCV)

	o.logger.Debug("optimization finished",
		"grid_size", result.GridSize,
		"tested", result.Tested,
		"target_met", result.TargetMet)
	return result, nil
}

// selectOptimal returns the first ranked candidate meeting both targets, or the
// best-scoring one with met=false.
func selectOptimal(ranked []Candidate, targetRSquared, targetCV float64) (*Candidate, bool) {
	if len(ranked) == 0 {
		return nil, false
	}
	for i := range ranked {
		if ranked[i].Meets(targetRSquared, targetCV) {
			c := ranked[i]
			return &c, true
		}
	}
	best := ranked[0]
	return &best, false
}

// Grid enumerates aspiration speed, then dispense speed, then mix repetitions.
// Candidate values are sets: repeats are dropped, keeping first-seen order.
func Grid(speeds []float64, mixReps []int) []models.ProtocolParameters {
	speeds, mixReps = unique(speeds), unique(mixReps)
	grid := make([]models.ProtocolParameters, 0, len(speeds)*len(speeds)*len(mixReps))
	for _, asp := range speeds {
		for _, disp := range speeds {
			for _, reps := range mixReps {
				grid = append(grid, models.ProtocolParameters{
					AspirationSpeed: asp,
					DispenseSpeed:   disp,
					MixVolume:       GridMixVolume,
					MixRepetitions:  reps,
					TransferVolume:  GridTransferVolume,
				})
			}
		}
	}
	return grid
}

func unique[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (o *Optimizer) filterFeasible(ctx context.Context, grid []models.ProtocolParameters) ([]bool, error) {
	feasible := make([]bool, len(grid))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for i := range grid {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			feasible[i] = simulator.Simulate(grid[i]).Passed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feasible, nil
}
