package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/agent/orchestrator"
	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Answer     string  `json:"answer"`
	ToolUsed   *string `json:"tool_used"`
	Confidence *string `json:"confidence"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the orchestrator over HTTP.
type Server struct {
	orch   *orchestrator.Orchestrator
	router *mux.Router
}

func NewServer(orch *orchestrator.Orchestrator) *Server {
	s := &Server{orch: orch, router: mux.NewRouter()}
	s.router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.router)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errx.MissingQueryMessage)
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, errx.MissingQueryMessage)
		return
	}

	answer, err := s.orch.Handle(r.Context(), model.Query{
		Text:      req.Query,
		SessionID: req.SessionID,
	})
	if err != nil {
		var appErr *errx.AppError
		if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
			s.writeError(w, appErr.Status, appErr.Message)
			return
		}
		// internal detail goes to the log only
		logx.Error().Err(err).Str("session_id", req.SessionID).Msg("Chat request failed")
		s.writeError(w, http.StatusInternalServerError, errx.SystemErrorMessage)
		return
	}

	chatRequestDuration.Observe(time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, chatResponse{
		Answer:     answer.Text,
		ToolUsed:   optional(string(answer.ToolUsed)),
		Confidence: optional(string(answer.Confidence)),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	chatRequestsTotal.WithLabelValues(fmt.Sprint(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logx.Error().Err(err).Msg("Failed to encode response body")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
