package api

import (
	"net/http"
	"strings"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/analytics"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/auth"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

func (h *Handler) analyticsStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopeAnalyticsRead)
	if !ok {
		return
	}

	verr := &domain.ValidationError{}
	from := h.dayParam(r, "startDate", verr)
	to := h.dayParam(r, "endDate", verr)
	if err := verr.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	stats, err := h.analytics.Stats(r.Context(), claims.UserID, from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) analyticsProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopeAnalyticsRead)
	if !ok {
		return
	}

	verr := &domain.ValidationError{}
	days := positiveIntParam(r, "days", analytics.DefaultWindowDays, verr)
	if err := verr.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	exerciseID := strings.TrimSpace(r.URL.Query().Get("exerciseId"))
	progress, err := h.analytics.Progress(r.Context(), claims.UserID, exerciseID, days)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProgressResponse{ExerciseID: exerciseID, Days: days, Items: progress})
}
