package app

import (
	"context"
	"errors"
	"testing"

	"github.com/GoSim-25-26J-441/labplan/internal/robot"
	"github.com/GoSim-25-26J-441/labplan/internal/tools"
	"github.com/GoSim-25-26J-441/labplan/pkg/config"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
)

func TestNewRegistryDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Optimizer.Seed = 7

	reg, err := NewRegistry(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if _, err := reg.Call(context.Background(), "get_robot_health", nil); !errors.Is(err, robot.ErrNotConfigured) {
		t.Fatalf("expected robot not configured, got %v", err)
	}

	res, err := reg.Call(context.Background(), "check_deck_layout", tools.Args{
		"spec": "1:corning_96_wellplate_360ul_flat,2:opentrons_flex_96_tiprack_1000ul",
	})
	if err != nil {
		t.Fatalf("check_deck_layout: %v", err)
	}
	if res.Text == "" {
		t.Fatal("expected text report")
	}
}

func TestNewRegistryWithDevices(t *testing.T) {
	cfg, err := config.ParseConfigYAMLString(`
deck:
  adjacency_severity: error
robot:
  base_url: "http://127.0.0.1:31950"
plate_reader:
  base_url: "http://127.0.0.1:8765"
`)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if _, err := NewRegistry(cfg, logger.Discard()); err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
}

func TestNewRegistryBadSeverity(t *testing.T) {
	cfg := config.Default()
	cfg.Deck.AdjacencySeverity = "fatal"
	if _, err := NewRegistry(cfg, logger.Discard()); err == nil {
		t.Fatal("expected error for unknown severity")
	}
}
