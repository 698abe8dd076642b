package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/kitchen-coop-server/internal/logging"
	"github.com/DoyleJ11/kitchen-coop-server/internal/lobby"
	"github.com/DoyleJ11/kitchen-coop-server/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Store          *lobby.Store
	Gateway        *ws.Gateway
	Log            *zap.Logger
	AllowedOrigins []string
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(log))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz(d.Store))
	r.Get("/ws", ws.Handler(d.Gateway, d.AllowedOrigins))
	r.Get("/sessions/{code}", GetSession(d.Store))
	r.Get("/results", ListResults(d.Store.Recorder(), log))
	return r
}
