package labware

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookup(t *testing.T) {
	d, ok := Lookup("nest_12_reservoir_15ml")
	if !ok {
		t.Fatal("expected reservoir to be in catalog")
	}
	if d.Category != CategoryReservoir || d.IsTall {
		t.Fatalf("unexpected definition: %+v", d)
	}

	if _, ok := Lookup("NEST_12_RESERVOIR_15ML"); ok {
		t.Fatal("lookup must be exact")
	}
	if _, ok := Lookup("mystery_plate"); ok {
		t.Fatal("expected unknown id to miss")
	}
}

func TestTallLabware(t *testing.T) {
	tall := 0
	for _, d := range All() {
		if d.IsTall {
			tall++
			if d.Category != CategoryTubeRack {
				t.Errorf("only tube racks are tall, got %s", d.ID)
			}
		}
	}
	if tall != 2 {
		t.Fatalf("expected 2 tall entries, got %d", tall)
	}
	if !IsTall("nest_15_tuberack_15000ul") {
		t.Fatal("expected 15mL tube rack to be tall")
	}
	if IsTall("unknown") {
		t.Fatal("unknown labware must not be tall")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].ID = "mutated"
	if _, ok := Lookup("corning_96_wellplate_360ul_flat"); !ok {
		t.Fatal("catalog must not be mutable through All()")
	}
	if All()[0].ID == "mutated" {
		t.Fatal("All() must return a copy")
	}
}

func TestSearchByKeyword(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"tip rack", []string{"opentrons_flex_96_tiprack_1000ul", "opentrons_flex_96_tiprack_200ul", "opentrons_flex_96_tiprack_50ul"}},
		{"Reservoir", []string{"nest_12_reservoir_15ml", "nest_1_reservoir_195ml"}},
		{"96 well plate", []string{"corning_96_wellplate_360ul_flat", "nest_96_wellplate_200ul_flat"}},
		{"200 ul", []string{"nest_96_wellplate_200ul_flat", "opentrons_flex_96_tiprack_200ul"}},
		{"TUBE", []string{"opentrons_24_tuberack_eppendorf_1.5ml_safelock_snapcap"}},
		{"centrifuge", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SearchByKeyword(tt.text)); diff != "" {
				t.Fatalf("SearchByKeyword(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestSearchByKeywordDeduplicates(t *testing.T) {
	// "plate" and "96 well" both list the same two plates.
	got := SearchByKeyword("96 well plate")
	if len(got) != 2 {
		t.Fatalf("expected 2 unique matches, got %v", got)
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		partial string
		want    []string
	}{
		{"reservoir", []string{"nest_12_reservoir_15ml", "nest_1_reservoir_195ml", "agilent_1_reservoir_290ml"}},
		{"NEST", []string{"nest_96_wellplate_200ul_flat", "nest_12_reservoir_15ml", "nest_1_reservoir_195ml"}},
		{"tuberack", []string{"opentrons_24_tuberack_eppendorf_1.5ml_safelock_snapcap", "nest_15_tuberack_15000ul"}},
		{"pipette", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.partial, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Suggest(tt.partial)); diff != "" {
				t.Fatalf("Suggest(%q) mismatch (-want +got):\n%s", tt.partial, diff)
			}
		})
	}
}

func TestClosest(t *testing.T) {
	got := Closest("nest_12_reservoir_15m", 1)
	if diff := cmp.Diff([]string{"nest_12_reservoir_15ml"}, got); diff != "" {
		t.Fatalf("Closest mismatch (-want +got):\n%s", diff)
	}
	if got := Closest("anything", 50); len(got) != len(All()) {
		t.Fatalf("expected whole catalog when n exceeds size, got %d", len(got))
	}
	if got := Closest("anything", 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}

func TestByCategory(t *testing.T) {
	groups := ByCategory()
	for _, c := range Categories {
		if len(groups[c]) == 0 {
			t.Errorf("expected entries for %s", c)
		}
	}
	if groups[CategoryTipRack][0] != "opentrons_flex_96_tiprack_1000ul" {
		t.Fatalf("expected catalog order within category, got %v", groups[CategoryTipRack])
	}
	if CategoryTipRack.DisplayName() != "Tip Racks" {
		t.Fatalf("unexpected display name %q", CategoryTipRack.DisplayName())
	}
}
