package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

// Args are flat string arguments. Numeric lists are comma-separated.
type Args map[string]string

// ArgsFromMap converts decoded JSON (or structpb) values to Args. Numbers are
// rendered without exponent, lists are comma-joined.
func ArgsFromMap(m map[string]any) (Args, error) {
	args := make(Args, len(m))
	for k, v := range m {
		s, err := argString(k, v)
		if err != nil {
			return nil, err
		}
		args[k] = s
	}
	return args, nil
}

func argString(key string, v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			s, err := argString(key, item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	default:
		return "", &models.ParseError{Field: key, Input: strings.TrimSpace(stringify(v)), Reason: "unsupported argument type"}
	}
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func (a Args) lookup(name string, aliases ...string) (string, bool) {
	if v, ok := a[name]; ok {
		return v, true
	}
	for _, alias := range aliases {
		if v, ok := a[alias]; ok {
			return v, true
		}
	}
	return "", false
}

// String returns the trimmed argument
func (a Args) String(name string) string {
	return strings.TrimSpace(a[name])
}

// Float parses a finite number
func (a Args) Float(name string) (float64, error) {
	return parseFloat(name, a.String(name))
}

// Int parses an integer
func (a Args) Int(name string) (int, error) {
	return parseInt(name, a.String(name))
}

// FloatList parses "a,b,c" into numbers
func (a Args) FloatList(name string) ([]float64, error) {
	items, err := a.items(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if out[i], err = parseFloat(name, item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// IntList parses "a,b,c" into integers
func (a Args) IntList(name string) ([]int, error) {
	items, err := a.items(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(items))
	for i, item := range items {
		if out[i], err = parseInt(name, item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// StringList splits "a,b,c", trimming items and dropping empty ones
func (a Args) StringList(name string) []string {
	var out []string
	for _, item := range strings.Split(a[name], ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (a Args) items(name string) ([]string, error) {
	raw := a.String(name)
	if raw == "" {
		return nil, &models.ParseError{Field: name, Input: raw, Reason: "expected a comma-separated list of numbers"}
	}
	items := strings.Split(raw, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
		if items[i] == "" {
			return nil, &models.ParseError{Field: name, Input: raw, Reason: "empty list item"}
		}
	}
	return items, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &models.ParseError{Field: name, Input: s, Reason: "not a finite number"}
	}
	return v, nil
}

func parseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &models.ParseError{Field: name, Input: s, Reason: "not an integer"}
	}
	return v, nil
}

// protocolParams reads the five liquid-handling parameters
func protocolParams(a Args) (models.ProtocolParameters, error) {
	var (
		p   models.ProtocolParameters
		err error
	)
	if p.AspirationSpeed, err = a.Float("aspiration_speed"); err != nil {
		return p, err
	}
	if p.DispenseSpeed, err = a.Float("dispense_speed"); err != nil {
		return p, err
	}
	if p.MixVolume, err = a.Float("mix_volume"); err != nil {
		return p, err
	}
	if p.MixRepetitions, err = a.Int("mix_repetitions"); err != nil {
		return p, err
	}
	if p.TransferVolume, err = a.Float("transfer_volume"); err != nil {
		return p, err
	}
	return p, nil
}

func protocolParamSpecs(defaults *models.ProtocolParameters) []Param {
	specs := []Param{
		{Name: "aspiration_speed", Description: "Aspiration flow rate in µL/s (1-1000)"},
		{Name: "dispense_speed", Description: "Dispense flow rate in µL/s (1-1000)"},
		{Name: "mix_volume", Description: "Mix volume in µL (1-1000)"},
		{Name: "mix_repetitions", Description: "Mix repetitions (1-20)"},
		{Name: "transfer_volume", Description: "Transfer volume in µL (1-1000)"},
	}
	if defaults == nil {
		for i := range specs {
			specs[i].Required = true
		}
		return specs
	}
	specs[0].Default = formatFloat(defaults.AspirationSpeed)
	specs[1].Default = formatFloat(defaults.DispenseSpeed)
	specs[2].Default = formatFloat(defaults.MixVolume)
	specs[3].Default = strconv.Itoa(defaults.MixRepetitions)
	specs[4].Default = formatFloat(defaults.TransferVolume)
	return specs
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
