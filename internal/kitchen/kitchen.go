// Package kitchen holds the static content a match is built from: the
// kitchen layout and the recipe book. Nothing in here has behaviour beyond
// lookups and validation.
package kitchen

import (
	"errors"
	"fmt"
)

type Ingredient string

const (
	Fish     Ingredient = "fish"
	Rice     Ingredient = "rice"
	Seaweed  Ingredient = "seaweed"
	Shrimp   Ingredient = "shrimp"
	Cucumber Ingredient = "cucumber"
	Salmon   Ingredient = "salmon"
)

type ItemState string

const (
	Raw     ItemState = "raw"
	Chopped ItemState = "chopped"
	Cooked  ItemState = "cooked"
	Burned  ItemState = "burned"
	Plated  ItemState = "plated"
)

type StationType string

const (
	IngredientBox StationType = "ingredient_box"
	CuttingBoard  StationType = "cutting_board"
	Stove         StationType = "stove"
	Counter       StationType = "counter"
	PlateStation  StationType = "plate_station"
	Delivery      StationType = "delivery"
	Trash         StationType = "trash"
)

// Holds reports whether items left on this station type stay there between
// ticks. Everything else is pass-through.
func (t StationType) Holds() bool {
	switch t {
	case Counter, CuttingBoard, Stove:
		return true
	}
	return false
}

// Cell is an integer grid cell.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point is a continuous position in tile units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type StationConfig struct {
	Type       StationType
	Position   Cell
	Ingredient Ingredient // ingredient boxes only
}

type Layout struct {
	Width       int
	Height      int
	Stations    []StationConfig
	SpawnPoints []Point
}

var ErrInvalidLayout = errors.New("invalid kitchen layout")

// Validate checks the invariants the engine relies on: every station sits
// inside the grid on its own cell, boxes name an ingredient, and there is a
// spawn point for each of the two seats.
func (l Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: non-positive size %dx%d", ErrInvalidLayout, l.Width, l.Height)
	}
	if len(l.SpawnPoints) < 2 {
		return fmt.Errorf("%w: need 2 spawn points, have %d", ErrInvalidLayout, len(l.SpawnPoints))
	}
	seen := make(map[Cell]bool, len(l.Stations))
	for i, s := range l.Stations {
		if s.Position.X < 0 || s.Position.X >= l.Width || s.Position.Y < 0 || s.Position.Y >= l.Height {
			return fmt.Errorf("%w: station %d at %v outside grid", ErrInvalidLayout, i, s.Position)
		}
		if seen[s.Position] {
			return fmt.Errorf("%w: station %d shares cell %v", ErrInvalidLayout, i, s.Position)
		}
		seen[s.Position] = true
		if s.Type == IngredientBox && s.Ingredient == "" {
			return fmt.Errorf("%w: ingredient box %d has no ingredient", ErrInvalidLayout, i)
		}
	}
	return nil
}

// Spawn returns the spawn point for a seat index, wrapping if the layout has
// fewer points than seats.
func (l Layout) Spawn(seat int) Point {
	if len(l.SpawnPoints) == 0 {
		return Point{}
	}
	return l.SpawnPoints[seat%len(l.SpawnPoints)]
}
