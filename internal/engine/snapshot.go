package engine

// Snapshot is a self-contained copy of the match as the clients see it. It
// shares no pointers with the live match, so it can be handed to another
// goroutine once built.
type Snapshot struct {
	Players       map[string]Participant `json:"players"`
	Stations      []Station              `json:"stations"`
	Orders        []Order                `json:"orders"`
	Score         int                    `json:"score"`
	TimeRemaining float64                `json:"timeRemaining"`
	IsPlaying     bool                   `json:"isPlaying"`
	IsPaused      bool                   `json:"isPaused"`
}

func (m *Match) Snapshot(participants []*Participant) Snapshot {
	snap := Snapshot{
		Players:       make(map[string]Participant, len(participants)),
		Stations:      make([]Station, 0, len(m.Stations)),
		Orders:        make([]Order, 0, len(m.Orders)),
		Score:         m.Score,
		TimeRemaining: m.TimeRemaining,
		IsPlaying:     m.Running,
		IsPaused:      m.Paused,
	}
	for _, p := range participants {
		cp := *p
		cp.Holding = cloneItem(p.Holding)
		snap.Players[p.ID] = cp
	}
	for _, s := range m.Stations {
		cp := *s
		cp.Item = cloneItem(s.Item)
		snap.Stations = append(snap.Stations, cp)
	}
	for _, o := range m.Orders {
		snap.Orders = append(snap.Orders, *o)
	}
	return snap
}
