package protocol

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

// StandardCurve is the tartrazine concentration series in µg/mL, one well per point
var StandardCurve = []float64{0, 10, 20, 50, 100, 200}

// Script is a rendered protocol ready to upload to the robot
type Script struct {
	Pipette    models.PipetteModel `json:"pipette_model"`
	Instrument string              `json:"instrument"`
	Mount      string              `json:"mount"`
	Source     string              `json:"source"`
}

// InvalidParametersError carries every range violation found before generation
type InvalidParametersError struct {
	Errors []*models.RangeError
}

func (e *InvalidParametersError) Error() string {
	return "validation errors: " + strings.Join(Messages(e.Errors), "; ")
}

var scriptTemplate = template.Must(template.New("assay").Funcs(template.FuncMap{"num": formatNum}).Parse(`from opentrons import protocol_api

def run(protocol: protocol_api.ProtocolContext):
    # Load labware for tartrazine assay
    assay_plate = protocol.load_labware('corning_96_wellplate_360ul_flat', 1)
    reagent_reservoir = protocol.load_labware('nest_12_reservoir_15ml', 2)
    tip_rack = protocol.load_labware('opentrons_flex_96_tiprack_1000ul', 3)

    # Load auto-selected pipette: {{.Instrument}}
    pipette = protocol.load_instrument('{{.Instrument}}', '{{.Mount}}', tip_racks=[tip_rack])
    pipette.flow_rate.aspirate = {{num .Params.AspirationSpeed}}
    pipette.flow_rate.dispense = {{num .Params.DispenseSpeed}}

    # Create tartrazine standard curve ({{.CurveLabel}} µg/mL)
    concentrations = [{{.CurveList}}]

    for i, conc in enumerate(concentrations):
        # Dispense tartrazine solution
        pipette.transfer({{num .Params.TransferVolume}}, reagent_reservoir[f'A{i+1}'], assay_plate[f'A{i+1}'])
        # Mix with optimization parameters
        pipette.mix({{.Params.MixRepetitions}}, {{num .Params.MixVolume}}, assay_plate[f'A{i+1}'])

    # DECK LAYOUT for operator:
    # Position 1: 96-well assay plate
    # Position 2: 12-well reagent reservoir ({{.ReservoirMap}})
    # Position 3: Tip rack
`))

type scriptData struct {
	Instrument   string
	Mount        string
	Params       models.ProtocolParameters
	CurveLabel   string
	CurveList    string
	ReservoirMap string
}

// Generate validates p and renders the standard-curve protocol for it
func Generate(p models.ProtocolParameters) (*Script, error) {
	if errs := Validate(p); len(errs) > 0 {
		return nil, &InvalidParametersError{Errors: errs}
	}

	pipette := SelectPipette(p.TransferVolume)
	data := scriptData{
		Instrument: pipette.InstrumentName(),
		Mount:      "left",
		Params:     p,
	}

	labels := make([]string, len(StandardCurve))
	wells := make([]string, len(StandardCurve))
	for i, c := range StandardCurve {
		labels[i] = formatNum(c)
		wells[i] = fmt.Sprintf("A%d=%sµg/mL", i+1, formatNum(c))
	}
	data.CurveLabel = strings.Join(labels, ", ")
	data.CurveList = strings.Join(labels, ", ")
	data.ReservoirMap = strings.Join(wells, ", ")

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render protocol: %w", err)
	}

	return &Script{
		Pipette:    pipette,
		Instrument: data.Instrument,
		Mount:      data.Mount,
		Source:     buf.String(),
	}, nil
}

func formatNum(v float64) string {
	return fmt.Sprintf("%g", v)
}
