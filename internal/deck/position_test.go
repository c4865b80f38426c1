package deck

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPositionGrid(t *testing.T) {
	tests := []struct {
		pos      Position
		row, col int
	}{
		{1, 0, 0},
		{3, 0, 2},
		{4, 1, 0},
		{12, 3, 2},
	}
	for _, tt := range tests {
		if tt.pos.Row() != tt.row || tt.pos.Column() != tt.col {
			t.Errorf("position %d: got row=%d col=%d, want row=%d col=%d",
				tt.pos, tt.pos.Row(), tt.pos.Column(), tt.row, tt.col)
		}
	}
}

func TestAdjacent(t *testing.T) {
	tests := []struct {
		a, b Position
		want bool
	}{
		{1, 2, true},
		{1, 4, true},
		{5, 8, true},
		{3, 4, false}, // different rows
		{6, 7, false},
		{1, 5, false},
		{2, 2, false},
		{12, 13, false},
		{0, 1, false},
	}
	for _, tt := range tests {
		if got := Adjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("Adjacent(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := Adjacent(tt.b, tt.a); got != tt.want {
			t.Errorf("Adjacent(%d, %d) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestNeighbors(t *testing.T) {
	tests := []struct {
		pos  Position
		want []Position
	}{
		{1, []Position{4, 2}},
		{3, []Position{6, 2}},
		{5, []Position{2, 8, 4, 6}},
		{10, []Position{7, 11}},
		{12, []Position{9, 11}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.pos.Neighbors()); diff != "" {
			t.Errorf("Neighbors(%d) mismatch (-want +got):\n%s", tt.pos, diff)
		}
	}
}

func TestLayoutString(t *testing.T) {
	l := Layout{3: "c", 1: "a"}
	want := "Position 1: a\nPosition 3: c\n"
	if l.String() != want {
		t.Fatalf("got %q, want %q", l.String(), want)
	}
}
