package models

import "fmt"

// ProtocolParameters are the tunable liquid-handling settings of the standard-curve
// protocol. Speeds are in µL/s, volumes in µL.
type ProtocolParameters struct {
	AspirationSpeed float64 `json:"aspiration_speed" validate:"gte=1,lte=1000"`
	DispenseSpeed   float64 `json:"dispense_speed" validate:"gte=1,lte=1000"`
	MixVolume       float64 `json:"mix_volume" validate:"gte=1,lte=1000"`
	MixRepetitions  int     `json:"mix_repetitions" validate:"gte=1,lte=20"`
	TransferVolume  float64 `json:"transfer_volume" validate:"gte=1,lte=1000"`
}

// DefaultProtocolParameters are the settings the optimizer settled on for the
// tartrazine assay and the defaults for protocol generation.
func DefaultProtocolParameters() ProtocolParameters {
	return ProtocolParameters{
		AspirationSpeed: 50,
		DispenseSpeed:   50,
		MixVolume:       100,
		MixRepetitions:  3,
		TransferVolume:  200,
	}
}

func (p ProtocolParameters) String() string {
	return fmt.Sprintf("aspirate=%g µL/s dispense=%g µL/s mix=%dx%gµL transfer=%gµL",
		p.AspirationSpeed, p.DispenseSpeed, p.MixRepetitions, p.MixVolume, p.TransferVolume)
}

// PipetteModel is the single-channel pipette size picked for a transfer volume
type PipetteModel string

const (
	PipetteSmall  PipetteModel = "small"
	PipetteMedium PipetteModel = "medium"
	PipetteLarge  PipetteModel = "large"
)

// InstrumentName is the robot's load name for the pipette
func (m PipetteModel) InstrumentName() string {
	switch m {
	case PipetteSmall:
		return "flex_1channel_20"
	case PipetteMedium:
		return "flex_1channel_300"
	case PipetteLarge:
		return "flex_1channel_1000"
	default:
		return ""
	}
}

// MaxVolume is the pipette's nominal capacity in µL
func (m PipetteModel) MaxVolume() float64 {
	switch m {
	case PipetteSmall:
		return 20
	case PipetteMedium:
		return 300
	case PipetteLarge:
		return 1000
	default:
		return 0
	}
}
