package deck

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/labplan/internal/labware"
	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

// Severity decides what a tall-labware adjacency conflict does to a layout check
type Severity int

const (
	// SeverityWarning reports conflicts but accepts the layout
	SeverityWarning Severity = iota
	// SeverityError rejects the layout with a *ConflictError
	SeverityError
)

// ParseSeverity maps "warning"/"error" to a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityWarning, fmt.Errorf("unknown adjacency severity %q", s)
	}
}

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Conflict is a pair of adjacent tall labware
type Conflict struct {
	Position        Position
	Labware         string
	Neighbor        Position
	NeighborLabware string
}

// Message is the operator-facing description of the conflict
func (c Conflict) Message() string {
	return fmt.Sprintf("Tall labware at position %d (%s) may interfere with tall labware at position %d (%s)",
		c.Position, c.Labware, c.Neighbor, c.NeighborLabware)
}

// ConflictError rejects a layout when adjacency is configured as an error
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	msgs := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		msgs[i] = c.Message()
	}
	return "layout rejected: " + strings.Join(msgs, "; ")
}

// ValidationResult is a parsed, checked layout
type ValidationResult struct {
	Layout    Layout
	Conflicts []Conflict
	// Warnings carries one message per conflict
	Warnings []string
	// UnknownLabware lists assigned ids missing from the catalog, in slot order.
	// They are accepted; the robot may know labware the catalog does not.
	UnknownLabware []string
}

// Checker validates layouts with a configurable conflict severity
type Checker struct {
	severity Severity
}

// NewChecker creates a Checker with the given adjacency severity
func NewChecker(severity Severity) *Checker {
	return &Checker{severity: severity}
}

// Severity returns the configured adjacency severity
func (c *Checker) Severity() Severity {
	return c.severity
}

// ValidateLayout checks a layout with warning severity
func ValidateLayout(spec string) (*ValidationResult, error) {
	return NewChecker(SeverityWarning).Validate(spec)
}

// ParseLayout parses "pos:labware,pos:labware" into a Layout. It fails on the first
// malformed pair, out-of-range slot or repeated slot.
func ParseLayout(spec string) (Layout, error) {
	layout := make(Layout)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		fields := strings.Split(pair, ":")
		if len(fields) != 2 {
			return nil, &models.ParseError{Field: "layout", Input: pair, Reason: "expected position:labware"}
		}

		rawPos := strings.TrimSpace(fields[0])
		n, err := strconv.Atoi(rawPos)
		if err != nil {
			return nil, &models.ParseError{Field: "layout", Input: rawPos, Reason: "position is not an integer"}
		}
		id := strings.TrimSpace(fields[1])
		if id == "" {
			return nil, &models.ParseError{Field: "layout", Input: pair, Reason: "labware id is empty"}
		}

		pos := Position(n)
		if !pos.Valid() {
			return nil, &models.RangeError{Field: "deck position", Value: float64(n), Min: MinPosition, Max: MaxPosition}
		}
		if existing, dup := layout[pos]; dup {
			return nil, &models.DuplicatePositionError{Position: n, Existing: existing, Incoming: id}
		}
		layout[pos] = id
	}
	return layout, nil
}

// Validate parses spec and scans it for tall-labware adjacency conflicts
func (c *Checker) Validate(spec string) (*ValidationResult, error) {
	layout, err := ParseLayout(spec)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{Layout: layout}
	for _, pos := range layout.Positions() {
		if _, ok := labware.Lookup(layout[pos]); !ok {
			result.UnknownLabware = append(result.UnknownLabware, layout[pos])
		}
	}

	result.Conflicts = FindConflicts(layout)
	for _, conflict := range result.Conflicts {
		result.Warnings = append(result.Warnings, conflict.Message())
	}

	if len(result.Conflicts) > 0 && c.severity == SeverityError {
		return nil, &ConflictError{Conflicts: result.Conflicts}
	}
	return result, nil
}

// FindConflicts returns one Conflict per adjacent pair of tall labware, lower slot first
func FindConflicts(layout Layout) []Conflict {
	var conflicts []Conflict
	for _, pos := range layout.Positions() {
		id := layout[pos]
		if !labware.IsTall(id) {
			continue
		}
		for _, n := range pos.Neighbors() {
			// each unordered pair once
			if n < pos {
				continue
			}
			other, occupied := layout[n]
			if occupied && labware.IsTall(other) {
				conflicts = append(conflicts, Conflict{Position: pos, Labware: id, Neighbor: n, NeighborLabware: other})
			}
		}
	}
	return conflicts
}
