package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/DoyleJ11/kitchen-coop-server/internal/lobby"
	"github.com/DoyleJ11/kitchen-coop-server/internal/results"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func Healthz(store *lobby.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: store.Len()})
	}
}

// GetSession returns the lobby view of a session. Codes are matched
// case-insensitively.
func GetSession(store *lobby.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, ok := store.Summary(chi.URLParam(r, "code"))
		if !ok {
			writeError(w, http.StatusNotFound, lobby.ErrSessionNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// ListResults returns finished matches, newest first.
func ListResults(rec results.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultResultsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxResultsLimit)
		}

		got, err := rec.Recent(r.Context(), limit)
		if err != nil {
			log.Error("list results", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load results")
			return
		}
		if got == nil {
			got = []results.Result{}
		}
		writeJSON(w, http.StatusOK, got)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
