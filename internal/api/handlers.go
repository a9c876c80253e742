package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/challenge"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/stats"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps service error kinds onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, challenge.ErrEmptyRequest),
		errors.Is(err, challenge.ErrInvalidID),
		errors.Is(err, challenge.ErrInvalidPagination),
		errors.Is(err, challenge.ErrInvalidFilter):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, challenge.ErrChallengeNotFound):
		respondError(w, http.StatusNotFound, "not_found", "challenge not found")
	case errors.Is(err, challenge.ErrAlreadyJoined):
		respondError(w, http.StatusConflict, "already_joined", "participant already joined this challenge")
	case errors.Is(err, challenge.ErrChallengeEnded):
		respondError(w, http.StatusConflict, "challenge_ended", "challenge has already been completed")
	default:
		slog.Error("failed to "+action, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Challenge handlers

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	caller := CallerFromContext(r.Context())

	c, err := s.service.CreateChallenge(r.Context(), &req, caller.UserID)
	if err != nil {
		respondServiceError(w, err, "create challenge")
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "challenge id is required")
		return
	}

	c, err := s.service.GetChallenge(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get challenge")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "challenge id is required")
		return
	}

	var req models.UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	c, err := s.service.UpdateChallengeByID(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "update challenge")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "challenge id is required")
		return
	}

	if err := s.service.DeleteChallengeByID(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete challenge")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "challenge deleted",
	})
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	status := models.ChallengeStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown status filter: "+string(status))
		return
	}

	result, err := s.service.GetAllChallenges(r.Context(), page, limit, status)
	if err != nil {
		respondServiceError(w, err, "list challenges")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleJoinChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := CallerFromContext(r.Context())

	c, err := s.service.StartChallenge(r.Context(), id, caller.UserID)
	if err != nil {
		respondServiceError(w, err, "join challenge")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetParticipants(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	result, err := s.service.GetParticipantDetails(r.Context(), id, page, limit)
	if err != nil {
		respondServiceError(w, err, "list participants")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckParticipation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := CallerFromContext(r.Context())

	joined, err := s.service.CheckParticipationStatus(r.Context(), id, caller.UserID)
	if err != nil {
		respondServiceError(w, err, "check participation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{
		"joined": joined,
	})
}

// Statistics handlers

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = stats.FilterThisWeek
	}

	comparison, err := s.service.GetChallengeStats(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err, "compute statistics")
		return
	}

	respondJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleTalentStats(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())

	talentStats, err := s.service.GetTalentStatistics(r.Context(), caller.UserID)
	if err != nil {
		respondServiceError(w, err, "compute talent statistics")
		return
	}

	respondJSON(w, http.StatusOK, talentStats)
}

// queryInt parses a positive integer query parameter, falling back to a
// default when absent or malformed
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return defaultValue
}
