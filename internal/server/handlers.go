package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/vizofit/internal/activity"
	"github.com/meltforce/vizofit/internal/analysis"
	"github.com/meltforce/vizofit/internal/intensity"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/session"
	"github.com/meltforce/vizofit/internal/storage"
	"github.com/meltforce/vizofit/internal/units"
)

// maxImageBody bounds the analyze request body.
const maxImageBody = 20 << 20

type analyzeRequest struct {
	// Image is a data URL or plain base64.
	Image string `json:"image"`
}

type conflictRequest struct {
	Resolution session.Resolution `json:"resolution"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImageBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	img, err := session.DecodeDataURL(req.Image)
	if err != nil || len(img) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image must be a non-empty base64 data URL"})
		return
	}
	if s.engine.Analyzing() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": session.ErrAnalysisInProgress.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	out, err := s.engine.Analyze(r.Context(), img)
	s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, session.ErrAnalysisInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		s.metrics.Analyses.WithLabelValues("error").Inc()
		s.log.Error("analysis error", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": analysis.Message(err)})
		return
	}

	switch {
	case out.Conflict != nil:
		s.metrics.Analyses.WithLabelValues("conflict").Inc()
	case out.SavedID != "":
		s.metrics.Analyses.WithLabelValues("saved").Inc()
	default:
		s.metrics.Analyses.WithLabelValues("unsaved").Inc()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolveConflict(w http.ResponseWriter, r *http.Request) {
	var req conflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	switch req.Resolution {
	case session.UpdateExisting, session.SaveAsNew, session.Discard:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "resolution must be update, new or cancel"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.engine.Resolve(r.Context(), req.Resolution)
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.Resolutions.WithLabelValues(string(req.Resolution)).Inc()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.routines.SortedView(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.SavedWorkout{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	level, err := parseIntensity(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.openAt(r, chi.URLParam(r, "id"), level)
	if err != nil {
		writeError(w, err)
		return
	}
	system := s.settings.Get().Units
	if u := r.URL.Query().Get("units"); u != "" {
		system = units.ParseSystem(u)
	}
	writeJSON(w, http.StatusOK, v.DisplayIn(system))
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	var routine models.WorkoutRoutine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.engine.CommitEdit(r.Context(), chi.URLParam(r, "id"), &routine)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.routines.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.engine.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleCompleteRoutine records a workout finished on the client at the
// given intensity.
func (s *Server) handleCompleteRoutine(w http.ResponseWriter, r *http.Request) {
	level, err := parseIntensity(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	v, err := s.openAt(r, id, level)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.engine.OnWorkoutComplete(r.Context(), v.Current(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.Completions.Inc()
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	s.mu.Lock()
	logs, err := s.activity.List(r.Context())
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activity.NewReport(logs, s.now(), limit))
}

// openAt opens a saved routine and switches it to level.
func (s *Server) openAt(r *http.Request, id string, level int) (*session.View, error) {
	v, err := s.engine.OpenSaved(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if _, err := v.SetIntensity(level); err != nil {
		return nil, err
	}
	return v, nil
}

func parseIntensity(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("intensity")
	if raw == "" {
		return intensity.DefaultLevel, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("intensity must be an integer between 1 and 5")
	}
	return n, nil
}

// writeError maps engine errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, intensity.ErrUpgradeRequired):
		status = http.StatusPaymentRequired
	case errors.Is(err, intensity.ErrUnknownLevel), errors.Is(err, session.ErrNotSaved):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNoConflict), errors.Is(err, session.ErrAnalysisInProgress):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
