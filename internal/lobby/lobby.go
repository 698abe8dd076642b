package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/engine"
)

// Capacity is the number of seats in a session.
const Capacity = 2

// Sink receives the output of a running match. Calls come from the match
// goroutine with no locks held. They must not block for long and must not
// call back into the Store.
type Sink interface {
	Tick(snap engine.Snapshot)
	GameOver(score int)
}

// SinkFuncs adapts a pair of plain functions to a Sink. Nil funcs are skipped.
type SinkFuncs struct {
	OnTick     func(engine.Snapshot)
	OnGameOver func(score int)
}

func (f SinkFuncs) Tick(snap engine.Snapshot) {
	if f.OnTick != nil {
		f.OnTick(snap)
	}
}

func (f SinkFuncs) GameOver(score int) {
	if f.OnGameOver != nil {
		f.OnGameOver(score)
	}
}

type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"isReady"`
}

// Summary is the lobby view of a session.
type Summary struct {
	Code      string   `json:"code"`
	Players   []Member `json:"players"`
	HostID    string   `json:"hostId"`
	IsPlaying bool     `json:"isPlaying"`
}

// Session is one lobby and, while a match runs, its simulation. All fields
// are guarded by mu.
type Session struct {
	mu           sync.Mutex
	code         string
	order        []string // participant ids in join order
	participants map[string]*engine.Participant
	hostID       string
	match        *engine.Match
	run          *runner
	createdAt    time.Time
	closed       bool
}

func newSession(code string, now time.Time) *Session {
	return &Session{
		code:         code,
		participants: make(map[string]*engine.Participant, Capacity),
		createdAt:    now,
	}
}

func (s *Session) playingLocked() bool {
	return s.match != nil && s.match.Running
}

func (s *Session) playersLocked() []*engine.Participant {
	out := make([]*engine.Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.participants[id])
	}
	return out
}

func (s *Session) summaryLocked() Summary {
	sum := Summary{
		Code:      s.code,
		Players:   make([]Member, 0, len(s.order)),
		HostID:    s.hostID,
		IsPlaying: s.playingLocked(),
	}
	for _, p := range s.playersLocked() {
		sum.Players = append(sum.Players, Member{ID: p.ID, Name: p.Name, Ready: p.Ready})
	}
	return sum
}

func (s *Session) allReadyLocked() bool {
	if len(s.order) == 0 {
		return false
	}
	for _, p := range s.participants {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (s *Session) removeLocked(id string) {
	delete(s.participants, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.hostID == id {
		s.hostID = ""
		if len(s.order) > 0 {
			s.hostID = s.order[0]
		}
	}
}

// stopMatchLocked cancels the match timers. It is the single teardown path
// for every way a match can end and is safe to call any number of times.
// The returned channel closes once the match goroutine has exited; callers
// wait on it only after releasing their locks.
func (s *Session) stopMatchLocked(discard bool) <-chan struct{} {
	var done <-chan struct{}
	if s.run != nil {
		s.run.stop()
		done = s.run.done
		s.run = nil
	}
	if discard {
		s.match = nil
	}
	return done
}

func (s *Session) closeLocked() <-chan struct{} {
	s.closed = true
	return s.stopMatchLocked(true)
}

// runner is the handle for the two timers of one running match. Both live
// in a single goroutine, so cancelling the context stops both.
type runner struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newRunner() (*runner, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	return &runner{cancel: cancel, done: make(chan struct{})}, ctx
}

func (r *runner) stop() {
	r.once.Do(r.cancel)
}

type tickOutcome int

const (
	tickStale tickOutcome = iota // match was torn down or replaced
	tickIdle                     // paused, nothing to send
	tickSnapshot
	tickEnded
)

// step runs one tick under the session lock and reports what the runner
// should hand to the sink.
func (s *Session) step(ctx context.Context, m *engine.Match) (engine.Snapshot, tickOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil || s.match != m {
		return engine.Snapshot{}, tickStale
	}
	if m.Paused {
		return engine.Snapshot{}, tickIdle
	}

	res := m.Tick()
	snap := m.Snapshot(s.playersLocked())
	if res.Ended {
		s.stopMatchLocked(false)
		return snap, tickEnded
	}
	return snap, tickSnapshot
}

func (s *Session) spawn(ctx context.Context, m *engine.Match) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.match != m {
		return false
	}
	return m.SpawnOrder()
}

func waitAll(chans []<-chan struct{}) {
	for _, ch := range chans {
		if ch != nil {
			<-ch
		}
	}
}
