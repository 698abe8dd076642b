package hub

import (
	"context"

	"github.com/DoyleJ11/kitchen-coop-server/internal/types"
	"go.uber.org/zap"
)

// HubMsg is anything the hub loop accepts.
type HubMsg interface{ isHubMsg() }

// Connect registers a connection. The hub owns Outbox from here on and
// closes it on Disconnect, on Shutdown, or when the client falls behind.
type Connect struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

type Disconnect struct{ ClientID string }

// Subscribe moves a client into a session room, leaving any previous one.
type Subscribe struct {
	Code     string
	ClientID string
}

type Unsubscribe struct{ ClientID string }

// Publish fans Msg out to every client in the room except Except.
type Publish struct {
	Code   string
	Msg    types.ServerMessage
	Except string
}

// Direct sends Msg to a single client.
type Direct struct {
	ClientID string
	Msg      types.ServerMessage
}

// Stats is test and health support: it reports the hub's view.
type Stats struct{ Reply chan View }

type ShutdownHub struct{}

type View struct {
	Clients int
	Rooms   map[string]int // code -> subscriber count
}

func (Connect) isHubMsg()     {}
func (Disconnect) isHubMsg()  {}
func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (Publish) isHubMsg()     {}
func (Direct) isHubMsg()      {}
func (Stats) isHubMsg()       {}
func (ShutdownHub) isHubMsg() {}

type client struct {
	out  chan types.ServerMessage
	room string
}

type Hub struct {
	inbox   chan HubMsg
	clients map[string]*client
	rooms   map[string]map[string]struct{}
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 256),
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]struct{}),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

// Send hands m to the hub loop. It reports false once the hub is gone.
func (h *Hub) Send(m HubMsg) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Done is closed when the hub loop stops accepting messages.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

// Publish is shorthand for Send(Publish{...}).
func (h *Hub) Publish(code string, msg types.ServerMessage, except string) {
	h.Send(Publish{Code: code, Msg: msg, Except: except})
}

func (h *Hub) Direct(clientID string, msg types.ServerMessage) {
	h.Send(Direct{ClientID: clientID, Msg: msg})
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				if h.clients[msg.ClientID] != nil {
					h.drop(msg.ClientID)
				}
				h.clients[msg.ClientID] = &client{out: msg.Outbox}

			case Disconnect:
				h.drop(msg.ClientID)

			case Subscribe:
				c := h.clients[msg.ClientID]
				if c == nil {
					break
				}
				h.leaveRoom(msg.ClientID, c)
				room := h.rooms[msg.Code]
				if room == nil {
					room = make(map[string]struct{}, 2)
					h.rooms[msg.Code] = room
				}
				room[msg.ClientID] = struct{}{}
				c.room = msg.Code

			case Unsubscribe:
				if c := h.clients[msg.ClientID]; c != nil {
					h.leaveRoom(msg.ClientID, c)
				}

			case Publish:
				h.broadcast(msg.Code, msg.Msg, msg.Except)

			case Direct:
				if c := h.clients[msg.ClientID]; c != nil {
					h.deliver(msg.ClientID, c, msg.Msg)
				}

			case Stats:
				v := View{Clients: len(h.clients), Rooms: make(map[string]int, len(h.rooms))}
				for code, room := range h.rooms {
					v.Rooms[code] = len(room)
				}
				msg.Reply <- v

			case ShutdownHub:
				h.cancel()
			}
		}
	}
}

func (h *Hub) broadcast(code string, m types.ServerMessage, except string) {
	for id := range h.rooms[code] {
		if id == except {
			continue
		}
		if c := h.clients[id]; c != nil {
			h.deliver(id, c, m)
		}
	}
}

func (h *Hub) deliver(id string, c *client, m types.ServerMessage) {
	select {
	case c.out <- m:
		// ok
	default:
		// Client is slow/full - drop them.
		h.log.Warn("dropping slow client", zap.String("client", id), zap.String("type", m.Type))
		h.drop(id)
	}
}

func (h *Hub) drop(id string) {
	c := h.clients[id]
	if c == nil {
		return
	}
	h.leaveRoom(id, c)
	close(c.out)
	delete(h.clients, id)
}

func (h *Hub) leaveRoom(id string, c *client) {
	if c.room == "" {
		return
	}
	if room := h.rooms[c.room]; room != nil {
		delete(room, id)
		if len(room) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

func (h *Hub) shutdown() {
	for id := range h.clients {
		h.drop(id)
	}
	clear(h.rooms)
}
