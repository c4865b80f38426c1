package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GoSim-25-26J-441/labplan/internal/device"
	"github.com/GoSim-25-26J-441/labplan/internal/metrics"
	"github.com/GoSim-25-26J-441/labplan/internal/robot"
)

type readerStatus struct {
	Connected bool   `json:"connected"`
	DeviceID  string `json:"device_id,omitempty"`
}

type absorbanceRead struct {
	Step       device.Step `json:"step"`
	Wavelength int         `json:"wavelength"`
	Values     []float64   `json:"values,omitempty"`
}

func (s *service) registerDeviceTools(r *Registry) {
	robotTool := func(name, description, label string, fetch func(RobotAPI, context.Context) (map[string]any, error)) Tool {
		return Tool{
			Name:        name,
			Description: description,
			Handler: func(ctx context.Context, _ Args) (*Result, error) {
				if s.Robot == nil {
					return nil, robot.ErrNotConfigured
				}
				out, err := fetch(s.Robot, ctx)
				metrics.RecordDeviceOperation("robot", name, err)
				if err != nil {
					return nil, err
				}
				return &Result{Data: out, Text: label + ": " + compactJSON(out)}, nil
			},
		}
	}
	r.mustRegister(robotTool("get_robot_health", "Get the robot's health status", "Robot status", RobotAPI.Health))
	r.mustRegister(robotTool("get_instruments", "List pipettes attached to the robot", "Available instruments", RobotAPI.Instruments))
	r.mustRegister(robotTool("list_protocols", "List protocols stored on the robot", "Available protocols", RobotAPI.Protocols))

	r.mustRegister(Tool{
		Name:        "connect_plate_reader",
		Aliases:     []string{"connect_byonoy_reader"},
		Description: "Open exclusive access to the first plate reader found",
		Handler:     s.connectPlateReader,
	})
	r.mustRegister(Tool{
		Name:        "read_absorbance",
		Aliases:     []string{"read_tartrazine_absorbance"},
		Description: "Read absorbance: run step=initialize with the drawer empty, insert the plate, then step=measure",
		Params: []Param{
			{Name: "wavelength", Default: "450", Description: "Wavelength in nm"},
			{Name: "step", Default: string(device.StepInitialize), Description: "initialize or measure"},
		},
		Handler: s.readAbsorbance,
	})
	r.mustRegister(Tool{
		Name:        "disconnect_plate_reader",
		Description: "Release the plate reader",
		Handler:     s.disconnectPlateReader,
	})
}

func (s *service) connectPlateReader(ctx context.Context, _ Args) (*Result, error) {
	if s.PlateReader == nil {
		return nil, device.ErrNotConfigured
	}
	id, err := s.PlateReader.Connect(ctx)
	metrics.RecordDeviceOperation("plate_reader", "connect", err)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data: readerStatus{Connected: true, DeviceID: id},
		Text: fmt.Sprintf("Connected to plate reader %s", id),
	}, nil
}

func (s *service) readAbsorbance(ctx context.Context, args Args) (*Result, error) {
	if s.PlateReader == nil {
		return nil, device.ErrNotConfigured
	}
	wavelength, err := args.Int("wavelength")
	if err != nil {
		return nil, err
	}
	step, err := device.ParseStep(args.String("step"))
	if err != nil {
		return nil, err
	}

	if step == device.StepInitialize {
		err := s.PlateReader.Initialize(ctx, wavelength)
		metrics.RecordDeviceOperation("plate_reader", "initialize", err)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data: absorbanceRead{Step: step, Wavelength: wavelength},
			Text: fmt.Sprintf("Measurement initialized at %dnm. Insert plate now, then run with step='measure'", wavelength),
		}, nil
	}

	values, err := s.PlateReader.Measure(ctx, wavelength)
	metrics.RecordDeviceOperation("plate_reader", "measure", err)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data: absorbanceRead{Step: step, Wavelength: wavelength, Values: values},
		Text: fmt.Sprintf("Absorbance values at %dnm: %v", wavelength, values),
	}, nil
}

func (s *service) disconnectPlateReader(ctx context.Context, _ Args) (*Result, error) {
	if s.PlateReader == nil {
		return nil, device.ErrNotConfigured
	}
	err := s.PlateReader.Disconnect(ctx)
	metrics.RecordDeviceOperation("plate_reader", "disconnect", err)
	if err != nil {
		return nil, err
	}
	return &Result{Data: readerStatus{}, Text: "Plate reader disconnected"}, nil
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
