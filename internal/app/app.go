// Package app assembles the tool registry from configuration.
package app

import (
	"fmt"
	"log/slog"

	"github.com/GoSim-25-26J-441/labplan/internal/deck"
	"github.com/GoSim-25-26J-441/labplan/internal/device"
	"github.com/GoSim-25-26J-441/labplan/internal/optimizer"
	"github.com/GoSim-25-26J-441/labplan/internal/robot"
	"github.com/GoSim-25-26J-441/labplan/internal/tools"
	"github.com/GoSim-25-26J-441/labplan/pkg/config"
)

// NewRegistry wires every built-in tool against the collaborators cfg
// describes. The robot and plate reader are only set up when configured.
func NewRegistry(cfg *config.Config, l *slog.Logger) (*tools.Registry, error) {
	severity, err := deck.ParseSeverity(cfg.Deck.AdjacencySeverity)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}

	opt := optimizer.New(
		optimizer.NewScoreModel(cfg.Optimizer.Seed),
		optimizer.WithParallelism(cfg.Optimizer.Parallelism),
		optimizer.WithTopN(cfg.Optimizer.TopN),
		optimizer.WithLogger(l.With("component", "optimizer")),
	)

	deps := tools.Deps{
		Checker:   deck.NewChecker(severity),
		Optimizer: opt,
		Logger:    l.With("component", "tools"),
	}

	if cfg.Robot != nil {
		client, err := robot.NewClient(cfg.Robot)
		if err != nil {
			return nil, fmt.Errorf("robot: %w", err)
		}
		deps.Robot = client
	}

	if cfg.PlateReader != nil {
		reader, err := device.NewHTTPReader(cfg.PlateReader)
		if err != nil {
			return nil, fmt.Errorf("plate reader: %w", err)
		}
		deps.PlateReader = device.NewConnection(reader)
	}

	return tools.New(deps), nil
}
