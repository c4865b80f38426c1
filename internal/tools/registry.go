// Package tools dispatches named tool calls with flat string arguments to the
// planning components and renders each outcome both as structured data and as
// an operator-readable report.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/labplan/internal/metrics"
	"github.com/GoSim-25-26J-441/labplan/internal/protocol"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

// ErrUnknownTool is returned for a name no tool is registered under
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes a tool with normalized arguments
type Handler func(ctx context.Context, args Args) (*Result, error)

// Param describes one tool argument
type Param struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Default     string   `json:"default,omitempty"`
	Required    bool     `json:"required"`
}

// Tool is a named operation callers can invoke
type Tool struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Params      []Param  `json:"params"`
	Handler     Handler  `json:"-"`
}

// Result is what a tool call produces
type Result struct {
	CallID string `json:"call_id"`
	Tool   string `json:"tool"`
	Data   any    `json:"data"`
	Text   string `json:"text"`
}

// Registry holds tools by name and alias
type Registry struct {
	tools   map[string]*Tool
	aliases map[string]string
	logger  *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(l *slog.Logger) *Registry {
	if l == nil {
		l = logger.Component("tools")
	}
	return &Registry{
		tools:   make(map[string]*Tool),
		aliases: make(map[string]string),
		logger:  l,
	}
}

// Register adds a tool. Names and aliases must be unique.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" || t.Handler == nil {
		return fmt.Errorf("tool requires a name and a handler")
	}
	for _, name := range append([]string{t.Name}, t.Aliases...) {
		if _, ok := r.resolve(name); ok {
			return fmt.Errorf("tool name %q already registered", name)
		}
	}
	tool := t
	r.tools[t.Name] = &tool
	for _, alias := range t.Aliases {
		r.aliases[alias] = t.Name
	}
	return nil
}

func (r *Registry) mustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

func (r *Registry) resolve(name string) (string, bool) {
	if _, ok := r.tools[name]; ok {
		return name, true
	}
	canonical, ok := r.aliases[name]
	return canonical, ok
}

// Lookup finds a tool by name or alias
func (r *Registry) Lookup(name string) (Tool, bool) {
	canonical, ok := r.resolve(name)
	if !ok {
		return Tool{}, false
	}
	return *r.tools[canonical], true
}

// List returns all tools sorted by name
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call runs the named tool. Arguments are matched to parameters by name or
// alias, defaults are filled in and missing required arguments fail with a
// *models.ParseError before the handler runs.
func (r *Registry) Call(ctx context.Context, name string, args Args) (res *Result, err error) {
	callID := uuid.NewString()
	start := time.Now()

	canonical, ok := r.resolve(name)
	if !ok {
		metrics.RecordToolCall(name, metrics.OutcomeUnknownTool, time.Since(start))
		r.logger.Warn("unknown tool", "tool", name, "call_id", callID)
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	tool := r.tools[canonical]

	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("tool %s failed: %v", canonical, p)
		}
		duration := time.Since(start)
		metrics.RecordToolCall(canonical, outcome(err), duration)
		if err != nil {
			r.logger.Warn("tool call failed", "tool", canonical, "call_id", callID, "duration", duration, "error", err)
			return
		}
		r.logger.Info("tool call", "tool", canonical, "call_id", callID, "duration", duration)
	}()

	normalized, err := tool.normalize(args)
	if err != nil {
		return nil, err
	}
	res, err = tool.Handler(ctx, normalized)
	if err != nil {
		return nil, err
	}
	res.CallID = callID
	res.Tool = canonical
	return res, nil
}

func (t *Tool) normalize(args Args) (Args, error) {
	out := make(Args, len(t.Params))
	for _, p := range t.Params {
		value, ok := args.lookup(p.Name, p.Aliases...)
		if !ok || strings.TrimSpace(value) == "" {
			if p.Required {
				return nil, &models.ParseError{Field: p.Name, Reason: "required argument missing"}
			}
			value = p.Default
		}
		out[p.Name] = value
	}
	return out, nil
}

func outcome(err error) string {
	var (
		parseErr   *models.ParseError
		rangeErr   *models.RangeError
		invalidErr *protocol.InvalidParametersError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &parseErr):
		return metrics.OutcomeParseError
	case errors.As(err, &rangeErr), errors.As(err, &invalidErr):
		return metrics.OutcomeRangeError
	default:
		return metrics.OutcomeError
	}
}
