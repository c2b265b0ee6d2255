package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aquaponics-lab/aquamon/db"
	"github.com/aquaponics-lab/aquamon/internal/model"
	"github.com/aquaponics-lab/aquamon/internal/poller"
)

// Controller is the poller surface the API drives.
type Controller interface {
	Snapshot() poller.Snapshot
	Refresh()
	SetAutoRefresh(enabled bool)
	Dispatch(cmd model.CommandRequest)
}

type Server struct {
	db         *sql.DB
	controller Controller
}

type StatusResponse struct {
	Presentation     interface{} `json:"presentation"`
	AutoRefresh      bool        `json:"auto_refresh"`
	InFlight         bool        `json:"in_flight"`
	LastCompleted    string      `json:"last_completed"`
	FailureSimulated bool        `json:"failure_simulated"`
}

type AutoRefreshRequest struct {
	Enabled bool `json:"enabled"`
}

type ControlRequest struct {
	State string `json:"state"`
}

type SimulateFailureResponse struct {
	Enabled bool `json:"enabled"`
}

type CommandResponse struct {
	Target string `json:"target"`
	State  string `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(database *sql.DB, controller Controller) *Server {
	return &Server{
		db:         database,
		controller: controller,
	}
}

func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Add CORS middleware
	corsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		mux.ServeHTTP(w, r)
	})

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/autorefresh", s.handleAutoRefresh)
	mux.HandleFunc("/api/control/pump", s.handlePump)
	mux.HandleFunc("/api/control/light", s.handleLight)
	mux.HandleFunc("/api/control/simulate-failure", s.handleSimulateFailure)
	mux.HandleFunc("/api/commands", s.handleCommands)

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting local control API")

	return http.ListenAndServe(addr, corsHandler)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	settings, err := db.GetSettings(s.db)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snap := s.controller.Snapshot()
	lastCompleted := ""
	if !snap.LastCompleted.IsZero() {
		lastCompleted = snap.LastCompleted.Format(time.RFC3339)
	}

	s.writeJSON(w, http.StatusOK, StatusResponse{
		Presentation:     snap.Presentation,
		AutoRefresh:      snap.AutoRefresh,
		InFlight:         snap.InFlight,
		LastCompleted:    lastCompleted,
		FailureSimulated: settings.FailureSimulated,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.controller.Refresh()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AutoRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// Persist first; a failed write must leave the runtime toggle unchanged.
	if err := db.UpdateAutoRefresh(s.db, req.Enabled); err != nil {
		log.Error().Err(err).Bool("enabled", req.Enabled).Msg("Failed to persist auto-refresh setting")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.controller.SetAutoRefresh(req.Enabled)

	log.Info().Bool("enabled", req.Enabled).Msg("Auto-refresh updated via API")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handlePump(w http.ResponseWriter, r *http.Request) {
	s.handleDeviceControl(w, r, model.TargetPump)
}

func (s *Server) handleLight(w http.ResponseWriter, r *http.Request) {
	s.handleDeviceControl(w, r, model.TargetLight)
}

func (s *Server) handleDeviceControl(w http.ResponseWriter, r *http.Request, target model.CommandTarget) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// No body means toggle, matching the dashboard buttons
	req := ControlRequest{State: string(model.StateToggle)}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}
	}

	state := model.CommandState(req.State)
	if !isValidCommandState(state) {
		s.writeError(w, http.StatusBadRequest, "Invalid state. Valid states: toggle, on, off")
		return
	}

	s.controller.Dispatch(model.CommandRequest{Target: target, State: state})

	log.Info().Str("target", string(target)).Str("state", req.State).Msg("Control command dispatched via API")
	s.writeJSON(w, http.StatusOK, CommandResponse{Target: string(target), State: req.State})
}

func (s *Server) handleSimulateFailure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	settings, err := db.GetSettings(s.db)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The latch flips on every request, mirroring the dashboard button
	enable := !settings.FailureSimulated

	s.controller.Dispatch(model.CommandRequest{Target: model.TargetFailureSim, Enable: enable})

	if err := db.UpdateFailureSimulated(s.db, enable); err != nil {
		log.Error().Err(err).Bool("enabled", enable).Msg("Failed to persist failure simulation latch")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Bool("enabled", enable).Msg("Failure simulation toggled via API")
	s.writeJSON(w, http.StatusOK, SimulateFailureResponse{Enabled: enable})
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	records, err := db.RecentCommands(s.db, 20)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get command log")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func isValidCommandState(state model.CommandState) bool {
	switch state {
	case model.StateToggle, model.StateOn, model.StateOff:
		return true
	default:
		return false
	}
}
