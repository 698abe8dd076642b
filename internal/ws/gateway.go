package ws

import (
	"errors"
	"strings"

	"github.com/DoyleJ11/kitchen-coop-server/internal/engine"
	"github.com/DoyleJ11/kitchen-coop-server/internal/hub"
	"github.com/DoyleJ11/kitchen-coop-server/internal/lobby"
	"github.com/DoyleJ11/kitchen-coop-server/internal/types"
	"go.uber.org/zap"
)

const defaultName = "Chef"

const maxNameLen = 24

var errNotInSession = errors.New("not in a session")

// Gateway turns client commands into Store calls and fans the results out
// through the hub. A connection's client id doubles as its participant id.
type Gateway struct {
	store *lobby.Store
	hub   *hub.Hub
	log   *zap.Logger
}

func NewGateway(store *lobby.Store, h *hub.Hub, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{store: store, hub: h, log: log}
}

// Connect registers a client outbox with the hub.
func (g *Gateway) Connect(clientID string, out chan types.ServerMessage) bool {
	return g.hub.Send(hub.Connect{ClientID: clientID, Outbox: out})
}

// Disconnect is the implicit leave for a dropped connection.
func (g *Gateway) Disconnect(clientID string) {
	g.leave(clientID)
	g.hub.Send(hub.Disconnect{ClientID: clientID})
}

// Handle processes one client message to completion.
func (g *Gateway) Handle(clientID string, m types.ClientMessage) {
	switch m.Type {
	case types.CmdCreateSession:
		g.create(clientID, m.Name)
	case types.CmdJoinSession:
		g.join(clientID, m.Code, m.Name)
	case types.CmdLeaveSession:
		g.leave(clientID)
	case types.CmdSetReady:
		g.setReady(clientID, m.Ready)
	case types.CmdStartMatch:
		g.start(clientID)
	case types.CmdPauseMatch:
		g.pause(clientID, true)
	case types.CmdResumeMatch:
		g.pause(clientID, false)
	case types.CmdSubmitIntent:
		g.intent(clientID, m.Intent)
	default:
		g.fail(clientID, "unknown message type")
	}
}

// Evicted tells the members of a swept session that it is gone.
func (g *Gateway) Evicted(ev lobby.Eviction) {
	for _, id := range ev.Participants {
		g.hub.Send(hub.Unsubscribe{ClientID: id})
		g.fail(id, "session expired")
	}
}

func (g *Gateway) create(clientID, name string) {
	g.leave(clientID)

	code, sum, err := g.store.CreateSession(clientID, cleanName(name))
	if err != nil {
		g.failErr(clientID, types.CmdCreateSession, err)
		return
	}
	g.hub.Send(hub.Subscribe{Code: code, ClientID: clientID})
	g.hub.Direct(clientID, types.ServerMessage{
		Type:    types.EvtSessionCreated,
		Payload: types.SessionCreated{Code: code, ParticipantID: clientID},
	})
	g.hub.Publish(code, updated(sum), "")
}

func (g *Gateway) join(clientID, code, name string) {
	code = lobby.NormalizeCode(code)
	if cur, ok := g.store.SessionOf(clientID); ok {
		if cur == code {
			g.fail(clientID, lobby.ErrAlreadyInSession.Error())
			return
		}
		g.leave(clientID)
	}

	name = cleanName(name)
	sum, err := g.store.JoinSession(code, clientID, name)
	if err != nil {
		g.failErr(clientID, types.CmdJoinSession, err)
		return
	}
	g.hub.Send(hub.Subscribe{Code: sum.Code, ClientID: clientID})
	g.hub.Direct(clientID, types.ServerMessage{
		Type:    types.EvtSessionJoined,
		Payload: types.SessionJoined{Session: sum, ParticipantID: clientID},
	})
	g.hub.Publish(sum.Code, types.ServerMessage{
		Type:    types.EvtParticipantJoined,
		Payload: types.ParticipantJoined{ID: clientID, Name: name},
	}, clientID)
	g.hub.Publish(sum.Code, updated(sum), "")
}

func (g *Gateway) leave(clientID string) {
	res, ok := g.store.LeaveSession(clientID)
	if !ok {
		return
	}
	g.hub.Send(hub.Unsubscribe{ClientID: clientID})
	if res.SessionGone {
		return
	}
	g.hub.Publish(res.Code, types.ServerMessage{
		Type:    types.EvtParticipantLeft,
		Payload: types.ParticipantLeft{ID: clientID},
	}, "")
	if sum, ok := g.store.Summary(res.Code); ok {
		g.hub.Publish(res.Code, updated(sum), "")
	}
}

func (g *Gateway) setReady(clientID string, ready bool) {
	sum, ok := g.store.SetReady(clientID, ready)
	if !ok {
		g.fail(clientID, errNotInSession.Error())
		return
	}
	g.hub.Publish(sum.Code, updated(sum), "")
}

func (g *Gateway) start(clientID string) {
	code, ok := g.store.SessionOf(clientID)
	if !ok {
		g.fail(clientID, errNotInSession.Error())
		return
	}
	if !g.store.IsHost(clientID) {
		g.fail(clientID, lobby.ErrNotHost.Error())
		return
	}

	snap, err := g.store.StartMatch(code, &matchSink{hub: g.hub, code: code, rules: g.store.Rules()})
	if err != nil {
		g.failErr(clientID, types.CmdStartMatch, err)
		return
	}
	g.hub.Publish(code, types.ServerMessage{Type: types.EvtMatchStarted, Payload: snap}, "")
	if sum, ok := g.store.Summary(code); ok {
		g.hub.Publish(code, updated(sum), "")
	}
}

func (g *Gateway) pause(clientID string, paused bool) {
	snap, err := g.store.SetPaused(clientID, paused)
	if err != nil {
		g.failErr(clientID, "pause", err)
		return
	}
	if code, ok := g.store.SessionOf(clientID); ok {
		g.hub.Publish(code, types.ServerMessage{Type: types.EvtTickSnapshot, Payload: snap}, "")
	}
}

// Rejected intents are dropped without a reply.
func (g *Gateway) intent(clientID string, in *engine.Intent) {
	if in == nil {
		g.fail(clientID, "missing intent")
		return
	}
	if err := g.store.SubmitIntent(clientID, *in); err != nil {
		g.log.Debug("intent dropped",
			zap.String("participant", clientID),
			zap.String("intent", string(in.Type)),
			zap.Error(err),
		)
	}
}

func (g *Gateway) fail(clientID, msg string) {
	g.hub.Direct(clientID, types.Failed(msg))
}

func (g *Gateway) failErr(clientID, op string, err error) {
	g.log.Info("operation failed", zap.String("op", op), zap.String("participant", clientID), zap.Error(err))
	g.fail(clientID, err.Error())
}

func updated(sum lobby.Summary) types.ServerMessage {
	return types.ServerMessage{Type: types.EvtSessionUpdated, Payload: sum}
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultName
	}
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen])
	}
	return name
}

// matchSink publishes a running match to its room. It only talks to the
// hub, never back to the Store.
type matchSink struct {
	hub   *hub.Hub
	code  string
	rules engine.Rules
}

func (s *matchSink) Tick(snap engine.Snapshot) {
	s.hub.Publish(s.code, types.ServerMessage{Type: types.EvtTickSnapshot, Payload: snap}, "")
}

func (s *matchSink) GameOver(score int) {
	s.hub.Publish(s.code, types.ServerMessage{
		Type:    types.EvtMatchOver,
		Payload: types.MatchOver{Score: score, Won: s.rules.Won(score)},
	}, "")
}
