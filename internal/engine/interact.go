package engine

import (
	"slices"

	"github.com/DoyleJ11/kitchen-coop-server/internal/kitchen"
)

func (m *Match) interact(p *Participant) error {
	s := m.nearestStation(p.Position)
	if s == nil {
		return ErrNoStation
	}

	switch s.Type {
	case kitchen.IngredientBox:
		if p.Holding != nil {
			return ErrNoEffect
		}
		p.Holding = &Item{ID: m.newID(), Type: s.Ingredient, State: kitchen.Raw}
		return nil

	case kitchen.CuttingBoard:
		// Chopping is instant and happens in hand.
		if p.Holding == nil || s.Item != nil || p.Holding.State != kitchen.Raw {
			return ErrNoEffect
		}
		p.Holding.advance(kitchen.Chopped)
		return nil

	case kitchen.Stove, kitchen.Counter:
		if moveItem(&s.Item, &p.Holding) || moveItem(&p.Holding, &s.Item) {
			return nil
		}
		return ErrNoEffect

	case kitchen.PlateStation:
		if p.Holding == nil || !p.Holding.advance(kitchen.Plated) {
			return ErrNoEffect
		}
		return nil

	case kitchen.Delivery:
		if p.Holding == nil || p.Holding.State != kitchen.Plated {
			return ErrNoEffect
		}
		i := m.matchOrder(p.Holding.Type)
		if i < 0 {
			return ErrNoMatchingOrder
		}
		m.Score += m.Orders[i].Recipe.Points
		m.Orders = slices.Delete(m.Orders, i, i+1)
		p.Holding = nil
		return nil

	case kitchen.Trash:
		if p.Holding == nil {
			return ErrNoEffect
		}
		p.Holding = nil
		return nil
	}
	return ErrNoEffect
}

// drop puts the held item down on a holding station without the
// station-specific handling interact does.
func (m *Match) drop(p *Participant) error {
	s := m.nearestStation(p.Position)
	if s == nil {
		return ErrNoStation
	}
	if !s.Type.Holds() || !moveItem(&s.Item, &p.Holding) {
		return ErrNoEffect
	}
	return nil
}

// matchOrder picks the first active order whose recipe uses the ingredient
// at all. Preparation states and the rest of the recipe are not checked.
func (m *Match) matchOrder(t kitchen.Ingredient) int {
	return slices.IndexFunc(m.Orders, func(o *Order) bool {
		return o.Recipe.Uses(t)
	})
}
