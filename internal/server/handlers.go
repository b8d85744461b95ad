package server

// #region imports
import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danielpatrickdp/rate-advisor/internal/logging"
	"github.com/danielpatrickdp/rate-advisor/internal/session"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

const maxTurnText = 2000

func newSessionID() string { return uuid.NewString() }

// #region health

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// #endregion

// #region sessions

type sessionCreated struct {
	SessionID string `json:"sessionId"`
}

// createSession handles POST /api/v1/sessions
func (s *Server) createSession(w http.ResponseWriter, _ *http.Request) {
	id := s.newID()
	s.orch.Sessions().Get(id)
	writeJSON(w, http.StatusCreated, sessionCreated{SessionID: id})
}

// getSession handles GET /api/v1/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	data, err := s.orch.Sessions().Snapshot(chi.URLParam(r, "id"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("snapshot session")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// endSession handles DELETE /api/v1/sessions/{id}
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if !s.orch.Sessions().End(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// #endregion

// #region turns

type turnRequest struct {
	Text string `json:"text"`
}

// postTurn handles POST /api/v1/sessions/{id}/turns. Rolled-back turns
// answer 503 with the result body so clients can show the reply and retry.
func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[turnRequest](w, r)
	if !ok {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(text) > maxTurnText {
		writeError(w, http.StatusBadRequest, "text too long")
		return
	}

	res := s.orch.ProcessTurn(r.Context(), chi.URLParam(r, "id"), text)
	status := http.StatusOK
	if res.Kind.Failed() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// listTurns handles GET /api/v1/sessions/{id}/turns
func (s *Server) listTurns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "turn log disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.history.Recent(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list turns")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entries == nil {
		entries = []logging.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// #endregion

// #region stats

type statsResponse struct {
	session.Stats
	Services []string            `json:"services"`
	Shares   []logging.KindShare `json:"shares,omitempty"`
}

// stats handles GET /api/v1/stats
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Stats: s.orch.Sessions().Stats()}
	for _, svc := range shipping.Catalog() {
		resp.Services = append(resp.Services, svc.Name)
	}
	if s.history != nil {
		shares, err := s.history.Shares(r.Context())
		if err != nil {
			s.logger.Warn().Err(err).Msg("turn shares")
		}
		resp.Shares = shares
	}
	writeJSON(w, http.StatusOK, resp)
}

// #endregion
