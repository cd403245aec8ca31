package leaderboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	httperrors "github.com/medarena/medquiz/pkg/http/errors"
)

// HTTPHandler exposes leaderboard reads over REST.
type HTTPHandler struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandler creates the leaderboard HTTP handler.
func NewHTTPHandler(service *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// HandleTop serves GET /v1/leaderboards/xp?limit=N.
func (h *HTTPHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.Top(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("leaderboard fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeLeaderboardFetchFailed, "could not load leaderboard")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// HandleStanding serves GET /v1/leaderboards/xp/me for the calling user.
func (h *HTTPHandler) HandleStanding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingUser, "X-User-ID header required")
		return
	}

	entry, err := h.service.Standing(r.Context(), userID)
	if err == ErrNotRanked {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "no xp recorded for this user")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("standing fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeLeaderboardFetchFailed, "could not load standing")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entry)
}
