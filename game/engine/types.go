package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// WallChar marks an impassable cell in a layout row
	WallChar = '#'

	// Validation constants
	MinGridWidth  = 3
	MinGridHeight = 1
	MaxGridSize   = 500
	NoSolution    = -1
)

// Orientation is the axis the rod lies along
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns the lowercase orientation name
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("orientation(%d)", uint8(o))
}

// Flip returns the other orientation
func (o Orientation) Flip() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// MarshalText encodes the orientation by name
func (o Orientation) MarshalText() ([]byte, error) {
	if o != Horizontal && o != Vertical {
		return nil, fmt.Errorf("invalid orientation %d", uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText accepts "horizontal"/"h" and "vertical"/"v"
func (o *Orientation) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "horizontal", "h":
		*o = Horizontal
	case "vertical", "v":
		*o = Vertical
	default:
		return fmt.Errorf("invalid orientation %q", string(text))
	}
	return nil
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RodState is one node of the search space. It is a plain comparable value:
// == compares all three fields and the struct can be used as a map key.
type RodState struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Orientation Orientation `json:"orientation"`
}

// StartState is where every search begins: centred one cell right of the
// top-left corner, lying along the top row.
var StartState = RodState{X: 1, Y: 0, Orientation: Horizontal}

// NewRodState builds a state from its anchor and orientation
func NewRodState(x, y int, o Orientation) RodState {
	return RodState{X: x, Y: y, Orientation: o}
}

// IsFinal reports whether the rod rests in the bottom-right corner of a w×h grid
func (s RodState) IsFinal(w, h int) bool {
	if s.Orientation == Horizontal {
		return s.X == w-2 && s.Y == h-1
	}
	return s.X == w-1 && s.Y == h-2
}

// Cells returns the three cells covered by the rod, centred on the anchor.
func (s RodState) Cells() [3]Position {
	if s.Orientation == Horizontal {
		return [3]Position{{s.X - 1, s.Y}, {s.X, s.Y}, {s.X + 1, s.Y}}
	}
	return [3]Position{{s.X, s.Y - 1}, {s.X, s.Y}, {s.X, s.Y + 1}}
}

func (s RodState) String() string {
	return fmt.Sprintf("x:%d y:%d o:%s", s.X, s.Y, s.Orientation)
}

// Action is a single step the rod can take
type Action uint8

const (
	West Action = iota
	East
	North
	South
	Rotate
)

// Actions lists the action alphabet in the order legal moves are reported
var Actions = []Action{West, East, North, South, Rotate}

// String returns the one-letter action code
func (a Action) String() string {
	switch a {
	case West:
		return "W"
	case East:
		return "E"
	case North:
		return "N"
	case South:
		return "S"
	case Rotate:
		return "R"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Name returns the long action name
func (a Action) Name() string {
	switch a {
	case West:
		return "west"
	case East:
		return "east"
	case North:
		return "north"
	case South:
		return "south"
	case Rotate:
		return "rotate"
	}
	return a.String()
}

// MarshalJSON encodes the action by its one-letter code
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes any spelling accepted by ParseAction
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction accepts action codes (W/E/N/S/R), names (west, rotate, ...)
// and screen directions (left/right/up/down). Matching is case-insensitive.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "west", "left":
		return West, nil
	case "e", "east", "right":
		return East, nil
	case "n", "north", "up":
		return North, nil
	case "s", "south", "down":
		return South, nil
	case "r", "rotate":
		return Rotate, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// MazeConfig represents a maze definition from JSON
type MazeConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Layout      []string `json:"layout"`
}

// GameState represents the complete state of an interactive rod session
type GameState struct {
	Layout      []string           `json:"layout"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Rod         RodState           `json:"rod"`
	RodCells    []Position         `json:"rod_cells"`
	Moves       int                `json:"moves"`
	Solved      bool               `json:"solved"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`
}

// Clone returns a deep copy of the state. Engines mutate their state in
// place, so anything read after the caller's lock is released must be a clone.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Layout = append([]string(nil), gs.Layout...)
	c.RodCells = append([]Position(nil), gs.RodCells...)
	c.MoveHistory = append([]MoveHistoryEntry{}, gs.MoveHistory...)
	return &c
}

// MoveHistoryEntry represents a single attempted action in the session history
type MoveHistoryEntry struct {
	Action     string   `json:"action"`
	From       RodState `json:"from"`
	To         RodState `json:"to"`
	Timestamp  int64    `json:"timestamp"`
	Success    bool     `json:"success"`
	MoveNumber int      `json:"move_number"`
}
