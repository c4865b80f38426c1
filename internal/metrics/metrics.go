// Package metrics exposes Prometheus collectors for tool dispatch, simulation
// outcomes, optimizer grids and device operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool call outcomes
const (
	OutcomeOK          = "ok"
	OutcomeParseError  = "parse_error"
	OutcomeRangeError  = "range_error"
	OutcomeUnknownTool = "unknown_tool"
	OutcomeError       = "error"
)

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labplan_tool_calls_total",
		Help: "Tool calls by tool and outcome",
	}, []string{"tool", "outcome"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "labplan_tool_call_duration_seconds",
		Help:    "Tool call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"tool"})

	simulations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labplan_simulations_total",
		Help: "Protocol simulations by result",
	}, []string{"result"})

	optimizerGridPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labplan_optimizer_grid_points_total",
		Help: "Optimizer grid points by feasibility",
	}, []string{"feasibility"})

	deviceOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labplan_device_operations_total",
		Help: "Device driver operations by device, operation and result",
	}, []string{"device", "operation", "result"})
)

// RecordToolCall records one dispatched tool call
func RecordToolCall(tool, outcome string, d time.Duration) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
	toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// RecordSimulation records a simulation verdict
func RecordSimulation(passed bool) {
	simulations.WithLabelValues(passFail(passed)).Inc()
}

// RecordOptimizerGrid records how many grid points survived simulation
func RecordOptimizerGrid(feasible, total int) {
	optimizerGridPoints.WithLabelValues("feasible").Add(float64(feasible))
	optimizerGridPoints.WithLabelValues("infeasible").Add(float64(total - feasible))
}

// RecordDeviceOperation records a robot or plate reader call
func RecordDeviceOperation(device, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	deviceOperations.WithLabelValues(device, operation, result).Inc()
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}

func passFail(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
