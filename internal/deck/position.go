package deck

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MinPosition = 1
	MaxPosition = 12
	columns     = 3
)

// Position is a deck slot, 1..12, laid out as 3 columns by 4 rows
type Position int

// Valid reports whether p is a real deck slot
func (p Position) Valid() bool {
	return p >= MinPosition && p <= MaxPosition
}

// Column is the zero-based column of the slot
func (p Position) Column() int { return (int(p) - 1) % columns }

// Row is the zero-based row of the slot
func (p Position) Row() int { return (int(p) - 1) / columns }

// Adjacent reports whether a and b are horizontal or vertical neighbors.
// Horizontal neighbors must share a row, so 3 and 4 are not adjacent.
func Adjacent(a, b Position) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	switch d := int(a) - int(b); {
	case d == columns || d == -columns:
		return true
	case d == 1 || d == -1:
		return a.Row() == b.Row()
	default:
		return false
	}
}

// Neighbors returns the adjacent slots of p: up, down, left, right, skipping off-deck ones
func (p Position) Neighbors() []Position {
	candidates := []Position{p - columns, p + columns, p - 1, p + 1}
	out := make([]Position, 0, len(candidates))
	for _, c := range candidates {
		if Adjacent(p, c) {
			out = append(out, c)
		}
	}
	return out
}

// Layout maps deck slots to catalog labware ids
type Layout map[Position]string

// Positions returns the occupied slots in ascending order
func (l Layout) Positions() []Position {
	out := make([]Position, 0, len(l))
	for p := range l {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders one "Position N: labware" line per occupied slot
func (l Layout) String() string {
	var b strings.Builder
	for _, p := range l.Positions() {
		fmt.Fprintf(&b, "Position %d: %s\n", p, l[p])
	}
	return b.String()
}
