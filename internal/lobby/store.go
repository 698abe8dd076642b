package lobby

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/engine"
	"github.com/DoyleJ11/kitchen-coop-server/internal/kitchen"
	"github.com/DoyleJ11/kitchen-coop-server/internal/results"
	"go.uber.org/zap"
)

const DefaultMaxSessionAge = 2 * time.Hour

const recordTimeout = 5 * time.Second

// Store owns every live session. mu guards the two indexes; each session
// has its own lock for everything inside it. Lock order is store, then
// session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session // code -> session
	members  map[string]string   // participant id -> code

	rules    engine.Rules
	layout   kitchen.Layout
	recipes  []kitchen.Recipe
	maxAge   time.Duration
	log      *zap.Logger
	recorder results.Recorder
	now      func() time.Time
	newCode  func() (string, error)
	newRand  func() *rand.Rand
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithRecorder(r results.Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

func WithMaxSessionAge(d time.Duration) Option {
	return func(s *Store) { s.maxAge = d }
}

func WithLayout(l kitchen.Layout) Option {
	return func(s *Store) { s.layout = l }
}

func WithRecipes(r []kitchen.Recipe) Option {
	return func(s *Store) { s.recipes = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(rules engine.Rules, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		members:  make(map[string]string),
		rules:    rules,
		layout:   kitchen.DefaultLayout(),
		recipes:  kitchen.DefaultRecipes(),
		maxAge:   DefaultMaxSessionAge,
		log:      zap.NewNop(),
		recorder: results.NewMemory(0),
		now:      time.Now,
		newCode:  GenerateCode,
		newRand:  func() *rand.Rand { return nil },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Rules() engine.Rules { return s.rules }

func (s *Store) Recorder() results.Recorder { return s.recorder }

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) lookup(code string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[NormalizeCode(code)]
	return sess, ok
}

func (s *Store) sessionOf(participantID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.members[participantID]
	if !ok {
		return nil, false
	}
	sess, ok := s.sessions[code]
	return sess, ok
}

// CreateSession opens a new session with the caller as host in seat 0.
func (s *Store) CreateSession(participantID, name string) (string, Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[participantID]; ok {
		return "", Summary{}, ErrAlreadyInSession
	}

	code, err := s.freeCodeLocked()
	if err != nil {
		return "", Summary{}, err
	}

	sess := newSession(code, s.now())
	sess.participants[participantID] = engine.NewParticipant(participantID, name, s.layout.Spawn(0))
	sess.order = append(sess.order, participantID)
	sess.hostID = participantID

	s.sessions[code] = sess
	s.members[participantID] = code

	s.log.Info("session created", zap.String("code", code), zap.String("participant", participantID))
	return code, sess.summaryLocked(), nil
}

func (s *Store) freeCodeLocked() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		c, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate session code: %w", err)
		}
		if _, taken := s.sessions[c]; !taken {
			return c, nil
		}
		s.log.Debug("session code collision, regenerating", zap.String("code", c))
	}
	return "", ErrCodeExhausted
}

// JoinSession seats the caller in an existing lobby. The seat (and spawn
// point) is the current head count.
func (s *Store) JoinSession(code, participantID, name string) (Summary, error) {
	code = NormalizeCode(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[participantID]; ok {
		return Summary{}, ErrAlreadyInSession
	}
	sess, ok := s.sessions[code]
	if !ok {
		return Summary{}, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.order) >= Capacity {
		return Summary{}, ErrSessionFull
	}
	if sess.playingLocked() {
		return Summary{}, ErrMatchInProgress
	}

	seat := len(sess.order)
	sess.participants[participantID] = engine.NewParticipant(participantID, name, s.layout.Spawn(seat))
	sess.order = append(sess.order, participantID)
	s.members[participantID] = code

	s.log.Info("participant joined", zap.String("code", code), zap.String("participant", participantID))
	return sess.summaryLocked(), nil
}

type LeaveResult struct {
	Code        string
	Remaining   []string
	HostID      string
	MatchEnded  bool // a running match was torn down by this leave
	SessionGone bool
}

// LeaveSession removes the caller from its session. Any running match is
// torn down and discarded; an empty session is deleted on the spot.
func (s *Store) LeaveSession(participantID string) (LeaveResult, bool) {
	s.mu.Lock()
	code, ok := s.members[participantID]
	if !ok {
		s.mu.Unlock()
		return LeaveResult{}, false
	}
	delete(s.members, participantID)
	sess, ok := s.sessions[code]
	if !ok {
		s.mu.Unlock()
		return LeaveResult{}, false
	}

	sess.mu.Lock()
	res := LeaveResult{Code: code, MatchEnded: sess.playingLocked()}
	sess.removeLocked(participantID)
	done := sess.stopMatchLocked(true)
	res.Remaining = append([]string(nil), sess.order...)
	res.HostID = sess.hostID
	if len(sess.order) == 0 {
		sess.closed = true
		delete(s.sessions, code)
		res.SessionGone = true
	}
	sess.mu.Unlock()
	s.mu.Unlock()

	waitAll([]<-chan struct{}{done})

	s.log.Info("participant left",
		zap.String("code", code),
		zap.String("participant", participantID),
		zap.Bool("match_ended", res.MatchEnded),
		zap.Bool("session_gone", res.SessionGone),
	)
	return res, true
}

func (s *Store) SetReady(participantID string, ready bool) (Summary, bool) {
	sess, ok := s.sessionOf(participantID)
	if !ok {
		return Summary{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := sess.participants[participantID]
	if !ok {
		return Summary{}, false
	}
	p.Ready = ready
	return sess.summaryLocked(), true
}

// CanStart is true when somebody is seated and everybody seated is ready.
func (s *Store) CanStart(code string) bool {
	sess, ok := s.lookup(code)
	if !ok {
		return false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return !sess.closed && sess.allReadyLocked()
}

func (s *Store) Summary(code string) (Summary, bool) {
	sess, ok := s.lookup(code)
	if !ok {
		return Summary{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.summaryLocked(), true
}

func (s *Store) SessionOf(participantID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.members[participantID]
	return code, ok
}

// Snapshot returns the current match state, if the session has had a match.
func (s *Store) Snapshot(code string) (engine.Snapshot, bool) {
	sess, ok := s.lookup(code)
	if !ok {
		return engine.Snapshot{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.match == nil {
		return engine.Snapshot{}, false
	}
	return sess.match.Snapshot(sess.playersLocked()), true
}

// Close tears down every session.
func (s *Store) Close() {
	s.mu.Lock()
	var waits []<-chan struct{}
	for code, sess := range s.sessions {
		sess.mu.Lock()
		waits = append(waits, sess.closeLocked())
		sess.mu.Unlock()
		delete(s.sessions, code)
	}
	clear(s.members)
	s.mu.Unlock()

	waitAll(waits)
}

func (s *Store) record(ctx context.Context, r results.Result) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := s.recorder.Record(ctx, r); err != nil {
		s.log.Warn("record match result", zap.String("code", r.Code), zap.Error(err))
	}
}
