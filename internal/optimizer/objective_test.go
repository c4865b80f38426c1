package optimizer

import (
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

func TestScoreModelEstimate(t *testing.T) {
	tests := []struct {
		name   string
		noise  Noise
		asp    float64
		reps   int
		wantR2 float64
		wantCV float64
	}{
		{"peak clamps r2", NoNoise, 50, 3, 0.99, 17},
		{"off peak", NoNoise, 100, 1, 0.85 + 0.1/51 + 0.05/3, 25 - 5.0/51 - 1},
		{"max noise", NoiseFunc(func(_, max float64) float64 { return max }), 20, 5, 0.85 + 0.1/31 + 0.05/3 + 0.02, 25 - 5.0/31 - 1 + 2},
		{"cv floor", NoiseFunc(func(min, _ float64) float64 { return min * 10 }), 50, 3, 0.8, MinCV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ScoreModel{Noise: tt.noise}
			p := models.ProtocolParameters{AspirationSpeed: tt.asp, DispenseSpeed: 50, MixVolume: 100, MixRepetitions: tt.reps, TransferVolume: 200}
			r2, cv := m.Estimate(p)
			if math.Abs(r2-tt.wantR2) > 1e-9 {
				t.Errorf("r2 = %g, want %g", r2, tt.wantR2)
			}
			if math.Abs(cv-tt.wantCV) > 1e-9 {
				t.Errorf("cv = %g, want %g", cv, tt.wantCV)
			}
		})
	}
}

func TestScoreModelNilNoise(t *testing.T) {
	r2, cv := ScoreModel{}.Estimate(models.DefaultProtocolParameters())
	if r2 != 0.99 || cv != 17 {
		t.Fatalf("expected noiseless estimate, got r2=%g cv=%g", r2, cv)
	}
}

func TestScore(t *testing.T) {
	if got := Score(0.95, 10); math.Abs(got-0.85) > 1e-12 {
		t.Fatalf("Score = %g, want 0.85", got)
	}
}
