// Package protocol validates liquid-handling parameters, picks a pipette and renders
// the robot protocol script for the standard-curve assay.
package protocol

import (
	"errors"
	"math"

	"github.com/GoSim-25-26J-441/labplan/pkg/models"
	"github.com/go-playground/validator/v10"
)

var paramsValidate *validator.Validate

// field metadata for the range messages; order is the order errors are reported in
var fieldInfo = map[string]struct {
	name  string
	unit  string
	order int
}{
	"AspirationSpeed": {"Aspiration speed", "µL/s", 0},
	"DispenseSpeed":   {"Dispense speed", "µL/s", 1},
	"MixVolume":       {"Mix volume", "µL", 2},
	"TransferVolume":  {"Transfer volume", "µL", 3},
	"MixRepetitions":  {"Mix repetitions", "", 4},
}

// rules mirrors the validate tags; a FieldError only carries the bound it broke.
var rules = map[string][2]float64{
	"AspirationSpeed": {1, 1000},
	"DispenseSpeed":   {1, 1000},
	"MixVolume":       {1, 1000},
	"TransferVolume":  {1, 1000},
	"MixRepetitions":  {1, 20},
}

func init() {
	paramsValidate = validator.New()
}

// Validate checks every parameter against its physical range and returns one
// *models.RangeError per violation, in a fixed field order. An empty result means valid.
func Validate(p models.ProtocolParameters) []*models.RangeError {
	err := paramsValidate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// validator.InvalidValidationError only occurs for non-struct input
		return []*models.RangeError{{Field: "parameters", Value: math.NaN()}}
	}

	out := make([]*models.RangeError, len(fieldInfo))
	for _, fe := range verrs {
		info, ok := fieldInfo[fe.StructField()]
		if !ok || out[info.order] != nil {
			continue
		}
		bounds := rules[fe.StructField()]
		out[info.order] = &models.RangeError{
			Field: info.name,
			Value: fieldValue(fe.Value()),
			Min:   bounds[0],
			Max:   bounds[1],
			Unit:  info.unit,
		}
	}

	compact := out[:0]
	for _, e := range out {
		if e != nil {
			compact = append(compact, e)
		}
	}
	return compact
}

// Messages flattens range errors into operator-facing strings
func Messages(errs []*models.RangeError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func fieldValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return math.NaN()
	}
}

// SelectPipette picks the pipette for a transfer volume. Callers validate first.
func SelectPipette(transferVolume float64) models.PipetteModel {
	switch {
	case transferVolume <= 20:
		return models.PipetteSmall
	case transferVolume <= 300:
		return models.PipetteMedium
	default:
		return models.PipetteLarge
	}
}
