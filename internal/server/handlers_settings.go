package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meltforce/vizofit/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var change settings.Change
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	updated, err := s.settings.Update(r.Context(), change)
	if err != nil {
		if errors.Is(err, settings.ErrInvalid) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("settings update failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleUpgrade grants the pro entitlement. There is no payment flow; the
// endpoint stands in for a store purchase callback.
func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	updated, err := s.settings.Upgrade(r.Context())
	if err != nil {
		s.log.Error("upgrade failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
