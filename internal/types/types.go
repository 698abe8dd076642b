package types

import (
	"github.com/DoyleJ11/kitchen-coop-server/internal/engine"
	"github.com/DoyleJ11/kitchen-coop-server/internal/lobby"
)

// Client -> Server
// create-session:
//   name: string
//
// join-session:
//   code: string (case-insensitive)
//   name: string
//
// leave-session: {}
//
// set-ready:
//   ready: boolean
//
// start-match: {} (host only)
//
// pause-match / resume-match: {}
//
// submit-intent:
//   intent: { type: "move" | "interact" | "drop", direction?: "up" | "down" | "left" | "right", timestamp: number }

// Server -> Client, always { type, payload }
// session-created:    { code, participantId }
// session-joined:     { session: Summary, participantId }
// session-updated:    Summary
// participant-joined: { id, name }
// participant-left:   { id }
// match-started:      Snapshot
// tick-snapshot:      Snapshot
// match-over:         { score, won }
// operation-failed:   { message }

const (
	CmdCreateSession = "create-session"
	CmdJoinSession   = "join-session"
	CmdLeaveSession  = "leave-session"
	CmdSetReady      = "set-ready"
	CmdStartMatch    = "start-match"
	CmdPauseMatch    = "pause-match"
	CmdResumeMatch   = "resume-match"
	CmdSubmitIntent  = "submit-intent"
)

const (
	EvtSessionCreated    = "session-created"
	EvtSessionJoined     = "session-joined"
	EvtSessionUpdated    = "session-updated"
	EvtParticipantJoined = "participant-joined"
	EvtParticipantLeft   = "participant-left"
	EvtMatchStarted      = "match-started"
	EvtTickSnapshot      = "tick-snapshot"
	EvtMatchOver         = "match-over"
	EvtOperationFailed   = "operation-failed"
)

type ClientMessage struct {
	Type   string         `json:"type"`
	Name   string         `json:"name,omitempty"`
	Code   string         `json:"code,omitempty"`
	Ready  bool           `json:"ready,omitempty"`
	Intent *engine.Intent `json:"intent,omitempty"`
}

type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type SessionCreated struct {
	Code          string `json:"code"`
	ParticipantID string `json:"participantId"`
}

type SessionJoined struct {
	Session       lobby.Summary `json:"session"`
	ParticipantID string        `json:"participantId"`
}

type ParticipantJoined struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ParticipantLeft struct {
	ID string `json:"id"`
}

type MatchOver struct {
	Score int  `json:"score"`
	Won   bool `json:"won"`
}

type OperationFailed struct {
	Message string `json:"message"`
}

func Failed(msg string) ServerMessage {
	return ServerMessage{Type: EvtOperationFailed, Payload: OperationFailed{Message: msg}}
}
