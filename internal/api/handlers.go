package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/savegress/motorsim/pkg/records"
)

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "motorsim",
		"time":    time.Now().UTC(),
	})
}

// getStatus reports engine.Status() — initialized, tick, mode, run id, and
// the sizes of the pending-decision/failed/history sets.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.eng.Status())
}

// getPendingDecisions lists motors paused awaiting a mark_failed or
// perform_maintenance decision.
func (s *Server) getPendingDecisions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"motor_ids": s.eng.PendingDecisions(),
	})
}

// getFailedMotors lists motors in the failed set, awaiting restore.
func (s *Server) getFailedMotors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"motor_ids": s.eng.FailedMotors(),
	})
}

// getHistory returns a bounded tail of the retained record buffer. ?limit=
// caps how many of the most recent records are returned (default 500).
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 500
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	respondJSON(w, http.StatusOK, s.eng.HistoryTail(limit))
}

// getMotorHistory returns the retained records for one motor id, newest
// last, bounded the same way getHistory is.
func (s *Server) getMotorHistory(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	motorID, err := strconv.Atoi(idParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid motor id")
		return
	}

	limit := 500
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var out []records.Observation
	for _, rec := range s.eng.History() {
		if rec.MotorID == motorID {
			out = append(out, rec)
		}
	}
	if limit < len(out) {
		out = out[len(out)-limit:]
	}
	respondJSON(w, http.StatusOK, out)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}
