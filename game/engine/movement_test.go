package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLegalMoves(t *testing.T) {
	open3 := MustGrid("...", "...", "...")
	open5 := MustGrid(".....", ".....", ".....", ".....", ".....")

	tests := []struct {
		name     string
		grid     *Grid
		state    RodState
		expected []Action
	}{
		{"3x3 start", open3, StartState, []Action{South}},
		{"3x3 centre horizontal", open3, NewRodState(1, 1, Horizontal), []Action{North, South, Rotate}},
		{"3x3 centre vertical", open3, NewRodState(1, 1, Vertical), []Action{West, East, Rotate}},
		{"3x3 right column vertical", open3, NewRodState(2, 1, Vertical), []Action{West}},
		{"3x3 bottom row", open3, NewRodState(1, 2, Horizontal), []Action{North}},
		{"5x5 centre horizontal", open5, NewRodState(2, 2, Horizontal), []Action{West, East, North, South, Rotate}},
		{"5x5 centre vertical", open5, NewRodState(2, 2, Vertical), []Action{West, East, North, South, Rotate}},
		{"5x5 start", open5, StartState, []Action{East, South}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := LegalMoves(test.grid, test.state)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("LegalMoves(%v) mismatch (-want +got):\n%s", test.state, diff)
			}
		})
	}
}

func TestLegalMoves_Walls(t *testing.T) {
	tests := []struct {
		name     string
		rows     []string
		state    RodState
		expected []Action
	}{
		{
			name:     "wall beyond west end blocks west",
			rows:     []string{".....", ".....", "#....", ".....", "....."},
			state:    NewRodState(2, 2, Horizontal),
			expected: []Action{East, North, South, Rotate},
		},
		{
			name:     "wall two cells east blocks east only",
			rows:     []string{".....", ".....", "....#", ".....", "....."},
			state:    NewRodState(2, 2, Horizontal),
			expected: []Action{West, North, South, Rotate},
		},
		{
			name:     "diagonal wall blocks north sweep and rotation",
			rows:     []string{".....", "...#.", ".....", ".....", "....."},
			state:    NewRodState(2, 2, Horizontal),
			expected: []Action{West, East, South},
		},
		{
			name:     "wall two cells below blocks vertical south",
			rows:     []string{".....", ".....", ".....", ".....", "..#.."},
			state:    NewRodState(2, 2, Vertical),
			expected: []Action{West, East, North, Rotate},
		},
		{
			name:     "wall beside vertical rod end blocks west and rotation",
			rows:     []string{".....", "#....", ".....", ".....", "....."},
			state:    NewRodState(1, 2, Vertical),
			expected: []Action{East, North, South},
		},
		{
			name:     "fully enclosed",
			rows:     []string{"#####", "#...#", "#####"},
			state:    NewRodState(2, 1, Horizontal),
			expected: []Action{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := LegalMoves(MustGrid(test.rows...), test.state)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("LegalMoves(%v) mismatch (-want +got):\n%s", test.state, diff)
			}
		})
	}
}

func TestLegalMoves_StayInBounds(t *testing.T) {
	g := MustGrid(
		"......",
		"..#...",
		"......",
		"....#.",
		"......",
	)

	// Every legal move from a fitting state must land on a fitting state.
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			for _, o := range []Orientation{Horizontal, Vertical} {
				s := NewRodState(x, y, o)
				if !g.Fits(s) {
					continue
				}
				for _, a := range LegalMoves(g, s) {
					if next := NextState(s, a); !g.Fits(next) {
						t.Errorf("%v --%v--> %v leaves the open cells", s, a, next)
					}
				}
			}
		}
	}
}

func TestNextState(t *testing.T) {
	start := NewRodState(3, 3, Horizontal)

	tests := []struct {
		action   Action
		expected RodState
	}{
		{West, NewRodState(2, 3, Horizontal)},
		{East, NewRodState(4, 3, Horizontal)},
		{North, NewRodState(3, 2, Horizontal)},
		{South, NewRodState(3, 4, Horizontal)},
		{Rotate, NewRodState(3, 3, Vertical)},
	}

	for _, test := range tests {
		t.Run(test.action.Name(), func(t *testing.T) {
			got := NextState(start, test.action)
			if got != test.expected {
				t.Errorf("NextState(%v, %v): expected %v, got %v", start, test.action, test.expected, got)
			}
		})
	}

	if start != NewRodState(3, 3, Horizontal) {
		t.Errorf("NextState must not modify its input, got %v", start)
	}
}

func TestCanMove(t *testing.T) {
	g := MustGrid("...", "...", "...")

	if !CanMove(g, StartState, South) {
		t.Error("expected South to be legal from start")
	}
	if CanMove(g, StartState, Rotate) {
		t.Error("expected Rotate to be illegal on the top edge")
	}
}

func TestExpand(t *testing.T) {
	g := MustGrid("...", "...", "...")

	got := Expand(g, []RodState{NewRodState(1, 1, Horizontal), NewRodState(1, 1, Vertical)})
	expected := []RodState{
		NewRodState(1, 0, Horizontal),
		NewRodState(1, 2, Horizontal),
		NewRodState(1, 1, Vertical),
		NewRodState(0, 1, Vertical),
		NewRodState(2, 1, Vertical),
		NewRodState(1, 1, Horizontal),
	}

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Expand mismatch (-want +got):\n%s", diff)
	}

	if got := Expand(g, nil); len(got) != 0 {
		t.Errorf("Expand of nothing should be empty, got %v", got)
	}
}

func TestExpand_KeepsDuplicates(t *testing.T) {
	g := MustGrid(".....", ".....", ".....")

	// Both sources can reach (2,1,H).
	got := Expand(g, []RodState{NewRodState(1, 1, Horizontal), NewRodState(3, 1, Horizontal)})

	count := 0
	for _, s := range got {
		if s == NewRodState(2, 1, Horizontal) {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected (2,1,horizontal) twice, got %d times in %v", count, got)
	}
}
