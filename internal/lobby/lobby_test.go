package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/engine"
	"github.com/DoyleJ11/kitchen-coop-server/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSink forwards match output onto buffered channels. Sends never block
// the match goroutine; a full buffer fails the test instead.
type chanSink struct {
	t     *testing.T
	ticks chan engine.Snapshot
	overs chan int
}

func newChanSink(t *testing.T) *chanSink {
	return &chanSink{t: t, ticks: make(chan engine.Snapshot, 4096), overs: make(chan int, 8)}
}

func (c *chanSink) Tick(snap engine.Snapshot) {
	select {
	case c.ticks <- snap:
	default:
		c.t.Errorf("tick buffer full")
	}
}

func (c *chanSink) GameOver(score int) {
	select {
	case c.overs <- score:
	default:
		c.t.Errorf("game over buffer full")
	}
}

// helper: receive one snapshot with a timeout so tests never hang
func recvTick(t *testing.T, ch <-chan engine.Snapshot, within time.Duration) engine.Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for tick snapshot")
		return engine.Snapshot{}
	}
}

func recvNoTick(t *testing.T, ch <-chan engine.Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("expected no snapshot within %v, got one with %.2fs left", within, s.TimeRemaining)
	case <-time.After(within):
	}
}

func drain(ch <-chan engine.Snapshot) int {
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}

func fastRules() engine.Rules {
	r := engine.DefaultRules()
	r.TickRate = 50 // 20ms ticks
	r.OrderSpawnInterval = 30 * time.Millisecond
	return r
}

// readySession creates a session with the given participants, all ready.
func readySession(t *testing.T, s *Store, ids ...string) string {
	t.Helper()
	code, _, err := s.CreateSession(ids[0], "cat-"+ids[0])
	require.NoError(t, err)
	for _, id := range ids[1:] {
		_, err := s.JoinSession(code, id, "cat-"+id)
		require.NoError(t, err)
	}
	for _, id := range ids {
		_, ok := s.SetReady(id, true)
		require.True(t, ok)
	}
	return code
}

func TestStartMatch_ReturnsOpeningSnapshotAndResetsSeats(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()
	code := readySession(t, s, "a", "b")

	sess, _ := s.lookup(code)
	sess.mu.Lock()
	sess.participants["a"].Position.X = 10
	sess.mu.Unlock()

	snap, err := s.StartMatch(code, newChanSink(t))
	require.NoError(t, err)

	assert.True(t, snap.IsPlaying)
	assert.False(t, snap.IsPaused)
	assert.Len(t, snap.Orders, 1)
	assert.Len(t, snap.Stations, len(s.layout.Stations))
	require.Contains(t, snap.Players, "a")
	require.Contains(t, snap.Players, "b")
	assert.Equal(t, s.layout.Spawn(0), snap.Players["a"].Position)
	assert.Equal(t, s.layout.Spawn(1), snap.Players["b"].Position)
	assert.False(t, snap.Players["a"].Ready)

	sum, ok := s.Summary(code)
	require.True(t, ok)
	assert.True(t, sum.IsPlaying)
	assert.False(t, s.CanStart(code))

	_, err = s.StartMatch(code, newChanSink(t))
	assert.ErrorIs(t, err, ErrMatchInProgress)
}

func TestStartMatch_Preconditions(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()

	_, err := s.StartMatch("NOPE22", newChanSink(t))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	code, _, err := s.CreateSession("a", "Mochi")
	require.NoError(t, err)
	_, err = s.StartMatch(code, newChanSink(t))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestMatch_TicksThenEndsExactlyOnce(t *testing.T) {
	rules := fastRules()
	rules.MatchDuration = 200 * time.Millisecond
	rec := results.NewMemory(0)
	s := NewStore(rules, WithRecorder(rec))
	defer s.Close()
	code := readySession(t, s, "a")

	sink := newChanSink(t)
	_, err := s.StartMatch(code, sink)
	require.NoError(t, err)

	first := recvTick(t, sink.ticks, time.Second)
	assert.Less(t, first.TimeRemaining, 0.2)

	select {
	case score := <-sink.overs:
		assert.Equal(t, 0, score)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for game over")
	}

	drain(sink.ticks)
	recvNoTick(t, sink.ticks, 150*time.Millisecond)
	assert.Empty(t, sink.overs)

	sum, ok := s.Summary(code)
	require.True(t, ok)
	assert.False(t, sum.IsPlaying)

	final, ok := s.Snapshot(code)
	require.True(t, ok)
	assert.False(t, final.IsPlaying)
	assert.Zero(t, final.TimeRemaining)

	require.Eventually(t, func() bool {
		got, _ := rec.Recent(context.Background(), 10)
		return len(got) == 1
	}, time.Second, 10*time.Millisecond)
	got, _ := rec.Recent(context.Background(), 10)
	assert.Equal(t, code, got[0].Code)
	assert.False(t, got[0].Won)
	assert.Equal(t, []string{"a"}, got[0].Participants)
}

func TestMatch_CanRestartAfterGameOver(t *testing.T) {
	rules := fastRules()
	rules.MatchDuration = 60 * time.Millisecond
	s := NewStore(rules)
	defer s.Close()
	code := readySession(t, s, "a")

	sink := newChanSink(t)
	_, err := s.StartMatch(code, sink)
	require.NoError(t, err)
	select {
	case <-sink.overs:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for game over")
	}

	_, err = s.JoinSession(code, "b", "Tofu")
	require.NoError(t, err, "a finished match must not block joining")

	_, err = s.StartMatch(code, newChanSink(t))
	assert.ErrorIs(t, err, ErrNotReady, "ready flags are cleared by the previous start")

	s.SetReady("a", true)
	s.SetReady("b", true)
	_, err = s.StartMatch(code, newChanSink(t))
	assert.NoError(t, err)
}

func TestMatch_LeaveTearsDownTimers(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()
	code := readySession(t, s, "a", "b")

	sink := newChanSink(t)
	_, err := s.StartMatch(code, sink)
	require.NoError(t, err)
	recvTick(t, sink.ticks, time.Second)

	res, ok := s.LeaveSession("b")
	require.True(t, ok)
	assert.True(t, res.MatchEnded)
	assert.Equal(t, []string{"a"}, res.Remaining)

	drain(sink.ticks)
	recvNoTick(t, sink.ticks, 150*time.Millisecond)
	assert.Empty(t, sink.overs)

	sum, ok := s.Summary(code)
	require.True(t, ok)
	assert.False(t, sum.IsPlaying)
	_, ok = s.Snapshot(code)
	assert.False(t, ok, "simulation state is discarded")

	require.ErrorIs(t, s.SubmitIntent("a", engine.Intent{Type: engine.IntentInteract}), engine.ErrMatchNotRunning)
}

func TestMatch_LastLeaveDeletesSessionAndStopsTimers(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()
	code := readySession(t, s, "a")

	sink := newChanSink(t)
	_, err := s.StartMatch(code, sink)
	require.NoError(t, err)
	recvTick(t, sink.ticks, time.Second)

	res, ok := s.LeaveSession("a")
	require.True(t, ok)
	assert.True(t, res.SessionGone)
	assert.Zero(t, s.Len())

	drain(sink.ticks)
	recvNoTick(t, sink.ticks, 150*time.Millisecond)
}

func TestMatch_IntentsApplyImmediately(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()
	code := readySession(t, s, "a")

	require.ErrorIs(t, s.SubmitIntent("a", engine.Intent{Type: engine.IntentMove, Direction: engine.Down}), engine.ErrMatchNotRunning)

	_, err := s.StartMatch(code, newChanSink(t))
	require.NoError(t, err)

	require.NoError(t, s.SubmitIntent("a", engine.Intent{Type: engine.IntentMove, Direction: engine.Down}))
	snap, ok := s.Snapshot(code)
	require.True(t, ok)
	start := s.layout.Spawn(0)
	assert.InDelta(t, start.Y+0.1, snap.Players["a"].Position.Y, 1e-9)
	assert.Equal(t, engine.Down, snap.Players["a"].Facing)

	assert.ErrorIs(t, s.SubmitIntent("stranger", engine.Intent{Type: engine.IntentInteract}), ErrParticipantNotFound)
}

func TestMatch_PauseFreezesClock(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()
	code := readySession(t, s, "a", "b")

	sink := newChanSink(t)
	_, err := s.StartMatch(code, sink)
	require.NoError(t, err)
	recvTick(t, sink.ticks, time.Second)

	paused, err := s.SetPaused("b", true)
	require.NoError(t, err)
	assert.True(t, paused.IsPaused)

	// a tick stepped just before the pause may still be on its way out
	time.Sleep(40 * time.Millisecond)
	drain(sink.ticks)
	recvNoTick(t, sink.ticks, 120*time.Millisecond)

	frozen, _ := s.Snapshot(code)
	assert.Equal(t, paused.TimeRemaining, frozen.TimeRemaining)
	assert.ErrorIs(t, s.SubmitIntent("a", engine.Intent{Type: engine.IntentInteract}), engine.ErrMatchPaused)

	_, err = s.SetPaused("a", false)
	require.NoError(t, err)
	next := recvTick(t, sink.ticks, time.Second)
	assert.Less(t, next.TimeRemaining, paused.TimeRemaining)
	assert.False(t, next.IsPaused)
}

func TestSetPaused_Errors(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()

	_, err := s.SetPaused("ghost", true)
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	readySession(t, s, "a")
	_, err = s.SetPaused("a", true)
	assert.ErrorIs(t, err, engine.ErrMatchNotRunning)
}

func TestMatch_SpawnsOrdersUpToCap(t *testing.T) {
	s := NewStore(fastRules())
	defer s.Close()
	code := readySession(t, s, "a")

	sink := newChanSink(t)
	_, err := s.StartMatch(code, sink)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, ok := s.Snapshot(code)
		return ok && len(snap.Orders) == s.rules.MaxOrders
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	snap, _ := s.Snapshot(code)
	assert.LessOrEqual(t, len(snap.Orders), s.rules.MaxOrders)
}

func TestSweep_EvictsOldSessionsAndStopsMatches(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(fastRules(), WithClock(func() time.Time { return now }), WithMaxSessionAge(time.Hour))
	defer s.Close()

	oldCode := readySession(t, s, "a")
	sink := newChanSink(t)
	_, err := s.StartMatch(oldCode, sink)
	require.NoError(t, err)
	recvTick(t, sink.ticks, time.Second)

	assert.Empty(t, s.Sweep(now.Add(30*time.Minute)))

	now = now.Add(50 * time.Minute)
	freshCode, _, err := s.CreateSession("b", "Tofu")
	require.NoError(t, err)

	evicted := s.Sweep(now.Add(20 * time.Minute))
	require.Len(t, evicted, 1)
	assert.Equal(t, oldCode, evicted[0].Code)
	assert.Equal(t, []string{"a"}, evicted[0].Participants)

	_, ok := s.SessionOf("a")
	assert.False(t, ok)
	_, ok = s.Summary(oldCode)
	assert.False(t, ok)
	_, ok = s.Summary(freshCode)
	assert.True(t, ok)

	drain(sink.ticks)
	recvNoTick(t, sink.ticks, 100*time.Millisecond)
	assert.Empty(t, sink.overs)

	// the evicted participant can start over
	_, _, err = s.CreateSession("a", "Mochi")
	assert.NoError(t, err)
}

func TestRunSweeper_ReportsEvictions(t *testing.T) {
	s := NewStore(fastRules(), WithMaxSessionAge(-time.Second))
	defer s.Close()
	code, _, err := s.CreateSession("a", "Mochi")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Eviction, 1)
	go s.RunSweeper(ctx, 10*time.Millisecond, func(ev Eviction) { got <- ev })

	select {
	case ev := <-got:
		assert.Equal(t, code, ev.Code)
	case <-time.After(time.Second):
		t.Fatalf("sweeper never evicted the session")
	}
}

func TestClose_StopsEverything(t *testing.T) {
	s := NewStore(fastRules())
	sinks := make([]*chanSink, 0, 3)
	for _, id := range []string{"a", "b", "c"} {
		code := readySession(t, s, id)
		sink := newChanSink(t)
		_, err := s.StartMatch(code, sink)
		require.NoError(t, err)
		sinks = append(sinks, sink)
	}
	for _, sink := range sinks {
		recvTick(t, sink.ticks, time.Second)
	}

	s.Close()
	assert.Zero(t, s.Len())
	for _, sink := range sinks {
		drain(sink.ticks)
		recvNoTick(t, sink.ticks, 60*time.Millisecond)
	}
}

func TestSinkFuncs(t *testing.T) {
	var ticks, score int
	f := SinkFuncs{
		OnTick:     func(engine.Snapshot) { ticks++ },
		OnGameOver: func(s int) { score = s },
	}
	f.Tick(engine.Snapshot{})
	f.GameOver(42)
	assert.Equal(t, 1, ticks)
	assert.Equal(t, 42, score)

	SinkFuncs{}.Tick(engine.Snapshot{})
	SinkFuncs{}.GameOver(1)
}
