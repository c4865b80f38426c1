package deck

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/labplan/internal/labware"
)

// placement groups in priority order; group i owns band [3i+1, 3i+3]
const (
	groupPlate = iota
	groupReservoir
	groupTipRack
	groupOther
	groupCount
)

// Suggestion is a proposed layout for a list of labware
type Suggestion struct {
	Layout   Layout
	Unplaced []string
	Warnings []string
}

// placementGroup picks the band for id: catalog category first, then name keywords.
// Tube racks and anything unrecognised share the last band.
func placementGroup(id string) int {
	if def, ok := labware.Lookup(id); ok {
		switch def.Category {
		case labware.CategoryPlate:
			return groupPlate
		case labware.CategoryReservoir:
			return groupReservoir
		case labware.CategoryTipRack:
			return groupTipRack
		default:
			return groupOther
		}
	}

	lower := strings.ToLower(id)
	switch {
	case strings.Contains(lower, "plate"):
		return groupPlate
	case strings.Contains(lower, "reservoir"):
		return groupReservoir
	case strings.Contains(lower, "tip"):
		return groupTipRack
	default:
		return groupOther
	}
}

// SuggestLayout places required labware into priority bands: plates in 1-3, reservoirs
// in 4-6, tip racks in 7-9, tube racks and the rest in 10-12. A full band spills into
// the slot after the cursor, which pushes later groups back. Input order is kept within
// a group. Items that do not fit are reported as unplaced; it never fails.
func SuggestLayout(required []string) *Suggestion {
	groups := make([][]string, groupCount)
	for _, id := range required {
		g := placementGroup(id)
		groups[g] = append(groups[g], id)
	}

	s := &Suggestion{Layout: make(Layout)}
	cursor := Position(MinPosition)
	for g, items := range groups {
		bandStart := Position(g*columns + 1)
		if cursor < bandStart {
			cursor = bandStart
		}
		for _, id := range items {
			if !cursor.Valid() {
				s.Unplaced = append(s.Unplaced, id)
				continue
			}
			s.Layout[cursor] = id
			cursor++
		}
	}

	if len(s.Unplaced) > 0 {
		s.Warnings = append(s.Warnings, fmt.Sprintf(
			"Deck capacity exceeded: %d of %d item(s) could not be placed (%d slots available)",
			len(s.Unplaced), len(required), MaxPosition))
	}
	return s
}
