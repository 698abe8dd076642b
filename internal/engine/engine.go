package engine

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/kitchen"
	"github.com/google/uuid"
)

var ErrMatchNotRunning = errors.New("match not running")
var ErrMatchPaused = errors.New("match paused")
var ErrUnsupportedIntent = errors.New("unsupported intent")
var ErrInvalidDirection = errors.New("invalid direction")
var ErrOutOfBounds = errors.New("move out of bounds")
var ErrBlocked = errors.New("move blocked by station")
var ErrNoStation = errors.New("no station in reach")
var ErrNoEffect = errors.New("interaction has no effect")
var ErrNoMatchingOrder = errors.New("no matching order")

type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

func (d Direction) delta() (dx, dy float64, ok bool) {
	switch d {
	case Up:
		return 0, -1, true
	case Down:
		return 0, 1, true
	case Left:
		return -1, 0, true
	case Right:
		return 1, 0, true
	}
	return 0, 0, false
}

type IntentType string

const (
	IntentMove     IntentType = "move"
	IntentInteract IntentType = "interact"
	IntentDrop     IntentType = "drop"
)

// Intent is one raw player input. Timestamp is the client's clock and is
// only carried through; intents are applied in arrival order.
type Intent struct {
	Type      IntentType `json:"type"`
	Direction Direction  `json:"direction,omitempty"`
	Timestamp int64      `json:"timestamp"`
}

type Item struct {
	ID           string             `json:"id"`
	Type         kitchen.Ingredient `json:"type"`
	State        kitchen.ItemState  `json:"state"`
	CookProgress float64            `json:"cookProgress"`
}

var stateRank = map[kitchen.ItemState]int{
	kitchen.Raw:     0,
	kitchen.Chopped: 1,
	kitchen.Cooked:  2,
	kitchen.Plated:  3,
	kitchen.Burned:  4,
}

// advance moves the item forward to a later state and resets its progress.
// Burned is terminal.
func (it *Item) advance(to kitchen.ItemState) bool {
	if it.State == kitchen.Burned || stateRank[to] <= stateRank[it.State] {
		return false
	}
	it.State = to
	it.CookProgress = 0
	return true
}

type Participant struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Ready    bool          `json:"isReady"`
	Position kitchen.Point `json:"position"`
	Facing   Direction     `json:"direction"`
	Holding  *Item         `json:"holdingItem"`
}

func NewParticipant(id, name string, spawn kitchen.Point) *Participant {
	return &Participant{ID: id, Name: name, Position: spawn, Facing: Down}
}

// Reset puts the participant back at a spawn point with empty hands, ready
// for a fresh match.
func (p *Participant) Reset(spawn kitchen.Point) {
	p.Position = spawn
	p.Facing = Down
	p.Holding = nil
	p.Ready = false
}

type Station struct {
	ID         string              `json:"id"`
	Type       kitchen.StationType `json:"type"`
	Position   kitchen.Cell        `json:"position"`
	Ingredient kitchen.Ingredient  `json:"ingredientType,omitempty"`
	Item       *Item               `json:"item"`
}

func (s *Station) center() kitchen.Point {
	return kitchen.Point{X: float64(s.Position.X) + 0.5, Y: float64(s.Position.Y) + 0.5}
}

type Order struct {
	ID            string         `json:"id"`
	Recipe        kitchen.Recipe `json:"recipe"`
	TimeRemaining float64        `json:"timeRemaining"`
	CreatedAt     int64          `json:"createdAt"` // unix millis
}

// Match is the simulation state of one running game. It is not safe for
// concurrent use; the owner serialises Tick, SpawnOrder and Apply.
type Match struct {
	Stations      []*Station
	Orders        []*Order
	Score         int
	TimeRemaining float64
	Running       bool
	Paused        bool

	rules   Rules
	width   int
	height  int
	recipes []kitchen.Recipe
	rng     *rand.Rand
	newID   func() string
	now     func() time.Time
}

// NewMatch builds a fresh match from the layout with one opening order.
// A nil rng gets a randomly seeded one.
func NewMatch(rules Rules, layout kitchen.Layout, recipes []kitchen.Recipe, rng *rand.Rand) *Match {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	m := &Match{
		Stations:      make([]*Station, 0, len(layout.Stations)),
		TimeRemaining: rules.MatchDuration.Seconds(),
		Running:       true,
		rules:         rules,
		width:         layout.Width,
		height:        layout.Height,
		recipes:       recipes,
		rng:           rng,
		newID:         uuid.NewString,
		now:           time.Now,
	}
	for i, cfg := range layout.Stations {
		m.Stations = append(m.Stations, &Station{
			ID:         stationID(i),
			Type:       cfg.Type,
			Position:   cfg.Position,
			Ingredient: cfg.Ingredient,
		})
	}
	if o := m.newOrder(); o != nil {
		m.Orders = append(m.Orders, o)
	}
	return m
}

func (m *Match) Rules() Rules { return m.rules }

// Apply runs one player intent against the match. Any returned error means
// the intent was rejected and nothing changed, except that a move always
// updates facing when the direction is valid.
func (m *Match) Apply(p *Participant, in Intent) error {
	if !m.Running {
		return ErrMatchNotRunning
	}
	if m.Paused {
		return ErrMatchPaused
	}

	switch in.Type {
	case IntentMove:
		return m.move(p, in.Direction)
	case IntentInteract:
		return m.interact(p)
	case IntentDrop:
		return m.drop(p)
	default:
		return ErrUnsupportedIntent
	}
}
