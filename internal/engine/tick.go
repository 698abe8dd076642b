package engine

import "github.com/DoyleJ11/kitchen-coop-server/internal/kitchen"

type TickResult struct {
	Ended   bool // countdown hit zero on this tick
	Expired int  // orders dropped unfulfilled on this tick
}

// Tick advances the match by one fixed step: cooking, then the countdown,
// then order timers. Once the countdown runs out the match stops and later
// ticks do nothing.
func (m *Match) Tick() TickResult {
	if !m.Running || m.Paused {
		return TickResult{}
	}

	m.cook()

	m.TimeRemaining -= m.rules.dt()
	if m.TimeRemaining <= 0 {
		m.TimeRemaining = 0
		m.Running = false
		return TickResult{Ended: true}
	}

	return TickResult{Expired: m.ageOrders()}
}

func (m *Match) cook() {
	for _, s := range m.Stations {
		if s.Type != kitchen.Stove || s.Item == nil {
			continue
		}
		it := s.Item
		switch it.State {
		case kitchen.Raw, kitchen.Chopped:
			it.CookProgress += m.rules.cookStep()
			if it.CookProgress >= 100 {
				it.advance(kitchen.Cooked)
			}
		case kitchen.Cooked:
			it.CookProgress += m.rules.burnStep()
			if it.CookProgress >= 100 {
				it.advance(kitchen.Burned)
			}
		}
	}
}

func (m *Match) ageOrders() int {
	dt := m.rules.dt()
	kept := m.Orders[:0]
	for _, o := range m.Orders {
		o.TimeRemaining -= dt
		if o.TimeRemaining > 0 {
			kept = append(kept, o)
		}
	}
	expired := len(m.Orders) - len(kept)
	clear(m.Orders[len(kept):])
	m.Orders = kept
	return expired
}

// SpawnOrder adds a random order if the match is live and below the cap.
func (m *Match) SpawnOrder() bool {
	if !m.Running || m.Paused || len(m.Orders) >= m.rules.MaxOrders {
		return false
	}
	o := m.newOrder()
	if o == nil {
		return false
	}
	m.Orders = append(m.Orders, o)
	return true
}

func (m *Match) newOrder() *Order {
	if len(m.recipes) == 0 {
		return nil
	}
	r := m.recipes[m.rng.IntN(len(m.recipes))]
	return &Order{
		ID:            m.newID(),
		Recipe:        r,
		TimeRemaining: r.TimeLimit,
		CreatedAt:     m.now().UnixMilli(),
	}
}
