package lobby

import (
	"context"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/engine"
	"github.com/DoyleJ11/kitchen-coop-server/internal/results"
	"go.uber.org/zap"
)

// StartMatch builds a fresh simulation for the session, puts everyone back
// on their spawn point, and starts the tick and order timers. The returned
// snapshot is the opening state; later ones go to sink.
func (s *Store) StartMatch(code string, sink Sink) (engine.Snapshot, error) {
	sess, ok := s.lookup(code)
	if !ok {
		return engine.Snapshot{}, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return engine.Snapshot{}, ErrSessionNotFound
	}
	if sess.playingLocked() {
		return engine.Snapshot{}, ErrMatchInProgress
	}
	if !sess.allReadyLocked() {
		return engine.Snapshot{}, ErrNotReady
	}

	m := engine.NewMatch(s.rules, s.layout, s.recipes, s.newRand())
	for seat, p := range sess.playersLocked() {
		p.Reset(s.layout.Spawn(seat))
	}
	sess.match = m

	r, ctx := newRunner()
	sess.run = r
	go s.runMatch(ctx, sess, m, r, sink)

	s.log.Info("match started", zap.String("code", sess.code), zap.Int("participants", len(sess.order)))
	return m.Snapshot(sess.playersLocked()), nil
}

func (s *Store) runMatch(ctx context.Context, sess *Session, m *engine.Match, r *runner, sink Sink) {
	defer close(r.done)

	tick := time.NewTicker(s.rules.TickInterval())
	defer tick.Stop()
	orders := time.NewTicker(s.rules.OrderSpawnInterval)
	defer orders.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-tick.C:
			snap, outcome := sess.step(ctx, m)
			switch outcome {
			case tickStale:
				return
			case tickSnapshot:
				sink.Tick(snap)
			case tickEnded:
				s.finish(sess, snap, sink)
				return
			}

		case <-orders.C:
			if sess.spawn(ctx, m) {
				s.log.Debug("order spawned", zap.String("code", sess.code))
			}
		}
	}
}

func (s *Store) finish(sess *Session, final engine.Snapshot, sink Sink) {
	sink.GameOver(final.Score)

	ids := make([]string, 0, len(final.Players))
	for id := range final.Players {
		ids = append(ids, id)
	}
	s.log.Info("match over", zap.String("code", sess.code), zap.Int("score", final.Score))
	s.record(context.Background(), results.Result{
		Code:         sess.code,
		Score:        final.Score,
		Won:          s.rules.Won(final.Score),
		Participants: ids,
		EndedAt:      s.now(),
	})
}

// SubmitIntent applies one player intent right away against the session's
// match. A non-nil error means the intent was dropped; callers are expected
// to ignore it apart from logging.
func (s *Store) SubmitIntent(participantID string, in engine.Intent) error {
	sess, ok := s.sessionOf(participantID)
	if !ok {
		return ErrParticipantNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := sess.participants[participantID]
	if !ok {
		return ErrParticipantNotFound
	}
	if sess.match == nil {
		return engine.ErrMatchNotRunning
	}
	return sess.match.Apply(p, in)
}

// SetPaused freezes or resumes the caller's running match.
func (s *Store) SetPaused(participantID string, paused bool) (engine.Snapshot, error) {
	sess, ok := s.sessionOf(participantID)
	if !ok {
		return engine.Snapshot{}, ErrParticipantNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, ok := sess.participants[participantID]; !ok {
		return engine.Snapshot{}, ErrParticipantNotFound
	}
	if !sess.playingLocked() {
		return engine.Snapshot{}, engine.ErrMatchNotRunning
	}
	sess.match.Paused = paused
	s.log.Info("match pause toggled", zap.String("code", sess.code), zap.Bool("paused", paused))
	return sess.match.Snapshot(sess.playersLocked()), nil
}

// IsHost reports whether the participant is the host of the session it sits in.
func (s *Store) IsHost(participantID string) bool {
	sess, ok := s.sessionOf(participantID)
	if !ok {
		return false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.hostID == participantID
}
