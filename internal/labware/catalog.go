package labware

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Category classifies labware for deck placement
type Category string

const (
	CategoryPlate     Category = "plate"
	CategoryReservoir Category = "reservoir"
	CategoryTipRack   Category = "tiprack"
	CategoryTubeRack  Category = "tuberack"
)

// DisplayName is the heading used when listing the catalog
func (c Category) DisplayName() string {
	switch c {
	case CategoryPlate:
		return "Plates"
	case CategoryReservoir:
		return "Reservoirs"
	case CategoryTipRack:
		return "Tip Racks"
	case CategoryTubeRack:
		return "Tube Racks"
	default:
		return string(c)
	}
}

// Categories lists every category in listing order
var Categories = []Category{CategoryPlate, CategoryReservoir, CategoryTipRack, CategoryTubeRack}

// Definition describes one catalog entry
type Definition struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	IsTall      bool     `json:"is_tall"`
}

var definitions = []Definition{
	{ID: "corning_96_wellplate_360ul_flat", Description: "96-well flat bottom plate", Category: CategoryPlate},
	{ID: "nest_96_wellplate_200ul_flat", Description: "96-well NEST plate", Category: CategoryPlate},
	{ID: "biorad_96_wellplate_200ul_pcr", Description: "96-well PCR plate", Category: CategoryPlate},

	{ID: "nest_12_reservoir_15ml", Description: "12-channel reservoir", Category: CategoryReservoir},
	{ID: "nest_1_reservoir_195ml", Description: "Single reservoir", Category: CategoryReservoir},
	{ID: "agilent_1_reservoir_290ml", Description: "Agilent reservoir", Category: CategoryReservoir},

	{ID: "opentrons_flex_96_tiprack_1000ul", Description: "1000µL tip rack", Category: CategoryTipRack},
	{ID: "opentrons_flex_96_tiprack_200ul", Description: "200µL tip rack", Category: CategoryTipRack},
	{ID: "opentrons_flex_96_tiprack_50ul", Description: "50µL tip rack", Category: CategoryTipRack},

	{ID: "opentrons_24_tuberack_eppendorf_1.5ml_safelock_snapcap", Description: "24-tube rack", Category: CategoryTubeRack, IsTall: true},
	{ID: "nest_15_tuberack_15000ul", Description: "15mL tube rack", Category: CategoryTubeRack, IsTall: true},
}

// keywordEntry maps a description fragment to catalog ids. Order matters only for
// readability; results are deduplicated and sorted.
type keywordEntry struct {
	keyword string
	ids     []string
}

var keywords = []keywordEntry{
	{"96 well", []string{"corning_96_wellplate_360ul_flat", "nest_96_wellplate_200ul_flat"}},
	{"plate", []string{"corning_96_wellplate_360ul_flat", "nest_96_wellplate_200ul_flat"}},
	{"reservoir", []string{"nest_12_reservoir_15ml", "nest_1_reservoir_195ml"}},
	{"tip", []string{"opentrons_flex_96_tiprack_1000ul", "opentrons_flex_96_tiprack_200ul", "opentrons_flex_96_tiprack_50ul"}},
	{"1000", []string{"opentrons_flex_96_tiprack_1000ul"}},
	{"200", []string{"opentrons_flex_96_tiprack_200ul", "nest_96_wellplate_200ul_flat"}},
	{"50", []string{"opentrons_flex_96_tiprack_50ul"}},
	{"tube", []string{"opentrons_24_tuberack_eppendorf_1.5ml_safelock_snapcap"}},
}

// SearchHints is what operators are told to try when a description matches nothing
var SearchHints = []string{"96 well", "reservoir", "tip rack", "tube rack"}

const maxSuggestions = 3

var byID map[string]Definition

func init() {
	byID = make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		byID[d.ID] = d
	}
}

// Lookup returns the definition for an exact catalog id
func Lookup(id string) (Definition, bool) {
	d, ok := byID[id]
	return d, ok
}

// All returns a copy of the catalog in its canonical order
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// ByCategory returns catalog ids grouped by category, in catalog order
func ByCategory() map[Category][]string {
	out := make(map[Category][]string, len(Categories))
	for _, d := range definitions {
		out[d.Category] = append(out[d.Category], d.ID)
	}
	return out
}

// IsTall reports whether id names tall labware. Unknown ids are not tall.
func IsTall(id string) bool {
	return byID[id].IsTall
}

// SearchByKeyword returns the ids whose keywords appear in text (case-insensitive).
// The result is sorted and free of duplicates.
func SearchByKeyword(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	for _, entry := range keywords {
		if !strings.Contains(lower, entry.keyword) {
			continue
		}
		for _, id := range entry.ids {
			seen[id] = true
		}
	}

	matches := make([]string, 0, len(seen))
	for id := range seen {
		matches = append(matches, id)
	}
	sort.Strings(matches)
	return matches
}

// Suggest returns up to three catalog ids containing partial (case-insensitive),
// in catalog order.
func Suggest(partial string) []string {
	lower := strings.ToLower(partial)
	out := make([]string, 0, maxSuggestions)
	for _, d := range definitions {
		if strings.Contains(strings.ToLower(d.ID), lower) {
			out = append(out, d.ID)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// Closest ranks the whole catalog by edit distance to name and returns the first n ids.
// Ties keep catalog order.
func Closest(name string, n int) []string {
	if n <= 0 {
		return nil
	}
	lower := strings.ToLower(name)
	type ranked struct {
		id   string
		dist int
	}
	all := make([]ranked, len(definitions))
	for i, d := range definitions {
		all[i] = ranked{id: d.ID, dist: levenshtein.ComputeDistance(lower, strings.ToLower(d.ID))}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].dist < all[j].dist })

	out := make([]string, 0, min(n, len(all)))
	for _, r := range all[:min(n, len(all))] {
		out = append(out, r.id)
	}
	return out
}
