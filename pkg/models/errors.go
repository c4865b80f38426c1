package models

import (
	"fmt"
	"strconv"
)

// ParseError reports textual input that could not be parsed
type ParseError struct {
	Field  string // argument or field name, may be empty
	Input  string // offending text
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse error in %s: %q: %s", e.Field, e.Input, e.Reason)
	}
	return fmt.Sprintf("parse error: %q: %s", e.Input, e.Reason)
}

// RangeError reports a numeric value outside its physical bound
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
	Unit  string
}

func (e *RangeError) Error() string {
	unit := ""
	if e.Unit != "" {
		unit = " " + e.Unit
	}
	return fmt.Sprintf("%s %s outside range %s-%s%s",
		e.Field, formatNumber(e.Value), formatNumber(e.Min), formatNumber(e.Max), unit)
}

// DuplicatePositionError reports a deck slot assigned twice
type DuplicatePositionError struct {
	Position int
	Existing string
	Incoming string
}

func (e *DuplicatePositionError) Error() string {
	return fmt.Sprintf("position conflict: position %d used twice (%s and %s)", e.Position, e.Existing, e.Incoming)
}

// PhysicalInfeasibilityError reports parameters that cannot be executed physically
type PhysicalInfeasibilityError struct {
	Reason string
}

func (e *PhysicalInfeasibilityError) Error() string {
	return "physically infeasible: " + e.Reason
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
