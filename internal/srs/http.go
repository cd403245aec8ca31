package srs

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/medarena/medquiz/pkg/http/errors"
)

// HTTPHandler exposes the SRS service over REST. Authentication is handled by
// the fronting gateway, which injects the caller identity as X-User-ID.
type HTTPHandler struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandler creates the SRS HTTP handler.
func NewHTTPHandler(service *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

func (h *HTTPHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingUser, "X-User-ID header required")
		return "", false
	}
	return userID, true
}

// HandleDue serves GET /v1/srs/due: the prioritized due set, truncated to the
// session limit, with the full due count alongside.
func (h *HTTPHandler) HandleDue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	due, err := h.service.DueQuestions(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("due set fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeRecordFetchFailed, "could not load review records")
		return
	}

	session := due
	if limit := h.service.SessionLimit(); len(session) > limit {
		session = session[:limit]
	}

	respondJSON(w, map[string]interface{}{
		"count":     len(due),
		"questions": session,
	})
}

// HandleStats serves GET /v1/srs/stats.
func (h *HTTPHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("stats fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeRecordFetchFailed, "could not load review records")
		return
	}
	respondJSON(w, stats)
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
	TimeMs     int64  `json:"time_ms"`
}

// HandleAnswer serves POST /v1/srs/answer.
func (h *HTTPHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id required", "question_id")
		return
	}

	result, err := h.service.RecordAnswer(r.Context(), userID, req.QuestionID, req.Correct, req.TimeMs)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("question_id", req.QuestionID).Msg("record answer failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeRecordUpdateFailed, "could not update review record")
		return
	}

	respondJSON(w, map[string]interface{}{
		"success":     true,
		"next_review": result.NextReview,
		"interval":    result.Interval,
		"ease_factor": result.EaseFactor,
	})
}

type initBatchRequest struct {
	QuestionIDs []string `json:"question_ids"`
}

// HandleInitBatch serves POST /v1/srs/init-batch.
func (h *HTTPHandler) HandleInitBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req initBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if len(req.QuestionIDs) == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_ids array required", "question_ids")
		return
	}

	added, err := h.service.InitBatch(r.Context(), userID, req.QuestionIDs)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("init batch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeRecordUpdateFailed, "could not initialize records")
		return
	}

	respondJSON(w, map[string]interface{}{"success": true, "added": added})
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
