package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Eviction describes a session removed by the idle sweep.
type Eviction struct {
	Code         string
	Participants []string
}

// Sweep removes sessions that are empty or older than the age ceiling, no
// matter how active they are. It catches sessions whose owners vanished
// without a clean leave.
func (s *Store) Sweep(now time.Time) []Eviction {
	s.mu.Lock()
	var evicted []Eviction
	var waits []<-chan struct{}
	for code, sess := range s.sessions {
		sess.mu.Lock()
		if len(sess.order) == 0 || now.Sub(sess.createdAt) > s.maxAge {
			ev := Eviction{Code: code, Participants: append([]string(nil), sess.order...)}
			for _, id := range sess.order {
				if s.members[id] == code {
					delete(s.members, id)
				}
			}
			waits = append(waits, sess.closeLocked())
			delete(s.sessions, code)
			evicted = append(evicted, ev)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()

	waitAll(waits)
	for _, ev := range evicted {
		s.log.Info("session evicted", zap.String("code", ev.Code), zap.Int("participants", len(ev.Participants)))
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done. onEvict, if set,
// is called for each removed session.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onEvict func(Eviction)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ev := range s.Sweep(s.now()) {
				if onEvict != nil {
					onEvict(ev)
				}
			}
		}
	}
}
