package lobby

import "errors"

var ErrSessionNotFound = errors.New("session not found")
var ErrParticipantNotFound = errors.New("participant not in a session")
var ErrAlreadyInSession = errors.New("participant already in a session")
var ErrSessionFull = errors.New("session full")
var ErrMatchInProgress = errors.New("match already in progress")
var ErrNotReady = errors.New("not all participants ready")
var ErrNotHost = errors.New("only the host can start the match")
var ErrCodeExhausted = errors.New("could not find a free session code")
