// Package assay computes calibration statistics from plate-reader absorbance data.
package assay

import (
	"fmt"
	"math"
	"strconv"

	"github.com/GoSim-25-26J-441/labplan/pkg/models"
	"github.com/GoSim-25-26J-441/labplan/pkg/utils"
)

const (
	curvePoints   = 6
	replicateSize = 3
	maxReplicateN = 18
	minCurve      = 2
)

// StandardConcentrations is the tartrazine standard curve in µg/mL
var StandardConcentrations = []float64{0, 10, 20, 50, 100, 200}

// Metrics summarises curve linearity and replicate precision
type Metrics struct {
	RSquared   float64 `json:"r_squared"`
	AverageCV  float64 `json:"average_cv"`
	Replicates int     `json:"replicate_groups"`
}

// Compute derives R² from the first six readings against concentrations and the
// mean CV of consecutive triplicates within the first 18 readings. A nil or
// empty concentrations slice selects StandardConcentrations.
//
// Every curve reading needs exactly one concentration, and at least two curve
// points are required. Readings large enough to overflow the statistics are
// rejected rather than reported as NaN or Inf.
func Compute(absorbance, concentrations []float64) (Metrics, error) {
	if len(concentrations) == 0 {
		concentrations = StandardConcentrations
	}

	curve := absorbance[:min(curvePoints, len(absorbance))]
	if len(curve) < minCurve {
		return Metrics{}, &models.ParseError{
			Field:  "absorbance_values",
			Input:  strconv.Itoa(len(absorbance)) + " readings",
			Reason: fmt.Sprintf("at least %d readings are needed for a standard curve", minCurve),
		}
	}
	if len(concentrations) != len(curve) {
		return Metrics{}, &models.ParseError{
			Field:  "concentrations",
			Input:  strconv.Itoa(len(concentrations)) + " values",
			Reason: fmt.Sprintf("expected %d concentrations to pair with the curve readings", len(curve)),
		}
	}

	var m Metrics
	if r, ok := utils.Pearson(concentrations, curve); ok {
		m.RSquared = r * r
	}

	readings := absorbance[:min(maxReplicateN, len(absorbance))]
	var cvs []float64
	for i := 0; i+replicateSize <= len(readings); i += replicateSize {
		group := readings[i : i+replicateSize]
		mean := utils.Mean(group)
		if mean == 0 {
			continue
		}
		cvs = append(cvs, utils.SampleStdDev(group)/mean*100)
	}
	m.Replicates = len(cvs)
	if len(cvs) > 0 {
		m.AverageCV = utils.Mean(cvs)
	}

	if !finite(m.RSquared) || !finite(m.AverageCV) {
		return Metrics{}, &models.ParseError{
			Field:  "absorbance_values",
			Input:  fmt.Sprintf("R²=%g CV=%g", m.RSquared, m.AverageCV),
			Reason: "readings overflow the numeric range",
		}
	}
	return m, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Text renders the metrics the way the assay report prints them
func (m Metrics) Text() string {
	return fmt.Sprintf("R²: %.4f, Average CV: %.2f%%", m.RSquared, m.AverageCV)
}
