package optimizer

import (
	"math"

	"github.com/GoSim-25-26J-441/labplan/pkg/models"
	"github.com/GoSim-25-26J-441/labplan/pkg/utils"
)

// Scoring model bounds
const (
	MinRSquared = 0.70
	MaxRSquared = 0.99
	MinCV       = 5.0
	MaxCV       = 30.0

	RSquaredNoise = 0.02
	CVNoise       = 2.0
)

// Noise draws a uniformly distributed value in [min, max).
// *utils.RandSource satisfies it.
type Noise interface {
	UniformFloat64(min, max float64) float64
}

// NoiseFunc adapts a plain function to Noise
type NoiseFunc func(min, max float64) float64

func (f NoiseFunc) UniformFloat64(min, max float64) float64 { return f(min, max) }

// NoNoise always returns the midpoint of the range, which is zero for the
// symmetric ranges the scoring model uses.
var NoNoise Noise = NoiseFunc(func(min, max float64) float64 { return (min + max) / 2 })

// ScoreModel estimates the assay quality a parameter set would produce.
//
// This is a simulated ground truth: a smooth preference for an aspiration speed
// of 50 µL/s and three mix repetitions, perturbed by bounded noise. It stands in
// for a measurement loop that actually runs the protocol and reads the plate.
type ScoreModel struct {
	Noise Noise
}

// NewScoreModel creates a model drawing noise from a source seeded with seed.
// A zero seed seeds from the clock.
func NewScoreModel(seed int64) ScoreModel {
	return ScoreModel{Noise: utils.NewRandSource(seed)}
}

// Estimate returns the expected R² and CV (%) for p.
func (m ScoreModel) Estimate(p models.ProtocolParameters) (rSquared, cv float64) {
	noise := m.Noise
	if noise == nil {
		noise = NoNoise
	}

	speedFit := 1 / (math.Abs(p.AspirationSpeed-50) + 1)
	mixFit := 1 / (math.Abs(float64(p.MixRepetitions)-3) + 1)

	rSquared = 0.85 + 0.1*speedFit + 0.05*mixFit
	rSquared += noise.UniformFloat64(-RSquaredNoise, RSquaredNoise)

	cv = 25 - 5*speedFit - 3*mixFit
	cv += noise.UniformFloat64(-CVNoise, CVNoise)

	return utils.ClampFloat64(rSquared, MinRSquared, MaxRSquared), utils.ClampFloat64(cv, MinCV, MaxCV)
}

// Score combines R² and CV into a single figure of merit; higher is better.
func Score(rSquared, cv float64) float64 {
	return rSquared - cv/100
}
