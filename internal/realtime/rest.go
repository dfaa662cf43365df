package realtime

import (
	"encoding/json"
	"errors"
	"net/http"

	"countdown/internal/protocol"
)

type pressDigitRequest struct {
	Digit *int `json:"digit"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeSnapshot(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.History())
}

func (s *Server) handlePressDigit(w http.ResponseWriter, r *http.Request) {
	var req pressDigitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.Digit == nil {
		http.Error(w, `{"error":"digit is required"}`, http.StatusBadRequest)
		return
	}
	if err := protocol.ValidateDigit(*req.Digit); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	s.engine.PressDigit(*req.Digit)
	s.writeSnapshot(w)
}

func (s *Server) handleBackspace(w http.ResponseWriter, r *http.Request) {
	s.engine.Backspace()
	s.writeSnapshot(w)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.engine.Start()
	s.writeSnapshot(w)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.engine.Stop()
	s.writeSnapshot(w)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.presetTable())
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := s.loadPreset(name); err != nil {
		status := http.StatusNotFound
		if errors.Is(err, errTimerRunning) {
			status = http.StatusConflict
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, status)
		return
	}

	s.writeSnapshot(w)
}
