package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/auth"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/planner"
)

func (h *Handler) generatePlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopePlansWrite)
	if !ok {
		return
	}

	query := r.URL.Query()
	verr := &domain.ValidationError{}
	daysPerWeek := positiveIntParam(r, "daysPerWeek", planner.DefaultDaysPerWeek, verr)
	if err := verr.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	record, err := h.planner.GeneratePlan(r.Context(), claims.UserID, planner.GenerateInput{
		Goal:        query.Get("goal"),
		DaysPerWeek: daysPerWeek,
		Focus:       query.Get("focus"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanView(record))
}

func (h *Handler) createPlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopePlansWrite)
	if !ok {
		return
	}

	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	record, err := h.planner.CreatePlan(r.Context(), claims.UserID, planner.CustomPlanInput{
		Name: req.Name,
		Goal: req.Goal,
		Plan: req.PlanData,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanView(record))
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopePlansRead)
	if !ok {
		return
	}

	verr := &domain.ValidationError{}
	limit := positiveIntParam(r, "limit", 0, verr)
	cursor, err := persistence.DecodeCursor(strings.TrimSpace(r.URL.Query().Get("cursor")))
	if err != nil {
		verr.Add("cursor", "invalid cursor")
	}
	if err := verr.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	records, next, err := h.planner.ListPlans(r.Context(), claims.UserID, cursor, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]PlanView, 0, len(records))
	for _, record := range records {
		items = append(items, toPlanView(record))
	}
	writeJSON(w, http.StatusOK, ListPlansResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}
