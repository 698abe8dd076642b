package engine

import (
	"math"
	"strconv"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/kitchen"
)

// Rules are the tunables of a match. Distances are in tiles.
type Rules struct {
	TickRate           int
	MatchDuration      time.Duration
	PlayerSpeed        float64 // tiles per second
	CookTime           time.Duration
	BurnTime           time.Duration // measured from the moment the item is cooked
	MaxOrders          int
	OrderSpawnInterval time.Duration
	InteractRadius     float64
	CollisionExtent    float64 // half-width of the solid box around a station centre
	EdgeMargin         float64
	WinScore           int // a final score above this wins
}

func DefaultRules() Rules {
	return Rules{
		TickRate:           20,
		MatchDuration:      180 * time.Second,
		PlayerSpeed:        5,
		CookTime:           5 * time.Second,
		BurnTime:           8 * time.Second,
		MaxOrders:          4,
		OrderSpawnInterval: 15 * time.Second,
		InteractRadius:     1.8,
		CollisionExtent:    0.8,
		EdgeMargin:         0.5,
		WinScore:           50,
	}
}

func (r Rules) Won(score int) bool { return score > r.WinScore }

func (r Rules) TickInterval() time.Duration {
	return time.Second / time.Duration(r.TickRate)
}

func (r Rules) dt() float64 { return 1 / float64(r.TickRate) }

func (r Rules) stepDistance() float64 { return r.PlayerSpeed / float64(r.TickRate) }

func (r Rules) cookStep() float64 { return progressPerTick(r.CookTime, r.TickRate) }

func (r Rules) burnStep() float64 { return progressPerTick(r.BurnTime, r.TickRate) }

func progressPerTick(total time.Duration, tickRate int) float64 {
	if total <= 0 {
		return 100
	}
	return 100 / total.Seconds() / float64(tickRate)
}

func stationID(i int) string { return "station_" + strconv.Itoa(i) }

// moveItem hands an item from src to dst in one step. It refuses when there
// is nothing to move or dst is already occupied, so an item is never in two
// places and never lost.
func moveItem(dst, src **Item) bool {
	if *src == nil || *dst != nil {
		return false
	}
	*dst, *src = *src, nil
	return true
}

func distance(a, b kitchen.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func cloneItem(it *Item) *Item {
	if it == nil {
		return nil
	}
	cp := *it
	return &cp
}
