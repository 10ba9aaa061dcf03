package httpapi

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/satriacloudx/BotDracinV2/internal/buildinfo"
	"github.com/satriacloudx/BotDracinV2/internal/httpjson"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.Current())
}

type statusResponse struct {
	Dramas              int `json:"dramas"`
	Episodes            int `json:"episodes"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dramas, episodes, err := s.catalog.Stats(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	active, err := s.access.ActiveSubscriberCount(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, statusResponse{
		Dramas:              dramas,
		Episodes:            episodes,
		ActiveSubscriptions: active,
	})
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}
