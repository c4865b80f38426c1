package tools

import (
	"context"
	"log/slog"

	"github.com/GoSim-25-26J-441/labplan/internal/deck"
	"github.com/GoSim-25-26J-441/labplan/internal/device"
	"github.com/GoSim-25-26J-441/labplan/internal/optimizer"
)

// RobotAPI is the part of the robot client the tools use
type RobotAPI interface {
	Health(ctx context.Context) (map[string]any, error)
	Instruments(ctx context.Context) (map[string]any, error)
	Protocols(ctx context.Context) (map[string]any, error)
}

// Deps are the collaborators the built-in tools run against. Robot and
// PlateReader may be nil; their tools then report that they are not configured.
type Deps struct {
	Checker     *deck.Checker
	Optimizer   *optimizer.Optimizer
	Robot       RobotAPI
	PlateReader *device.Connection
	Logger      *slog.Logger
}

type service struct {
	Deps
}

// New creates a registry holding every built-in tool
func New(deps Deps) *Registry {
	if deps.Checker == nil {
		deps.Checker = deck.NewChecker(deck.SeverityWarning)
	}
	if deps.Optimizer == nil {
		deps.Optimizer = optimizer.New(optimizer.NewScoreModel(0))
	}

	r := NewRegistry(deps.Logger)
	s := &service{Deps: deps}
	s.registerCatalogTools(r)
	s.registerProtocolTools(r)
	s.registerExperimentTools(r)
	s.registerDeviceTools(r)
	return r
}
