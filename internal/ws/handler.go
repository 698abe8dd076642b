package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/types"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	outboxSize   = 64
	readLimit    = 4 << 10
	writeTimeout = 3 * time.Second
	idleTimeout  = 5 * time.Minute
)

// Handler upgrades the request and runs one client connection until it
// closes. originPatterns is passed to the upgrader; empty means same-origin
// only.
func Handler(g *Gateway, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			g.log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		clientID := uuid.NewString()
		log := g.log.With(zap.String("client", clientID))

		out := make(chan types.ServerMessage, outboxSize)
		if !g.Connect(clientID, out) {
			conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		}
		defer g.Disconnect(clientID)
		log.Info("client connected", zap.String("remote", r.RemoteAddr))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine. The hub closes out when we disconnect or fall
		// behind; either way the reader must stop too.
		go func() {
			defer cancel()
			for msg := range out {
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(wctx, conn, msg)
				wcancel()
				if err != nil {
					log.Debug("write failed", zap.Error(err))
					return
				}
			}
		}()

		// Reader loop
		for {
			rctx, rcancel := context.WithTimeout(ctx, idleTimeout)
			_, data, err := conn.Read(rctx)
			rcancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Info("client closed")
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				g.fail(clientID, "bad json")
				continue
			}
			g.Handle(clientID, cm)
		}
	}
}
