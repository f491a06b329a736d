// Package api exposes HTTP handlers for the training core.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/analytics"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/auth"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/planner"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/readiness"
)

// Handler coordinates HTTP requests with the readiness, planner and analytics services.
type Handler struct {
	readiness *readiness.Service
	planner   *planner.Service
	analytics *analytics.Service
	logger    logrus.FieldLogger
}

// NewHandler builds a Handler.
func NewHandler(readinessSvc *readiness.Service, plannerSvc *planner.Service, analyticsSvc *analytics.Service, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		readiness: readinessSvc,
		planner:   plannerSvc,
		analytics: analyticsSvc,
		logger:    logger,
	}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/recovery", h.submitRecovery).Methods(http.MethodPost)
	v1.HandleFunc("/recovery", h.listRecovery).Methods(http.MethodGet)
	v1.HandleFunc("/readiness", h.listReadiness).Methods(http.MethodGet)
	v1.HandleFunc("/plans/generate", h.generatePlan).Methods(http.MethodPost)
	v1.HandleFunc("/plans", h.createPlan).Methods(http.MethodPost)
	v1.HandleFunc("/plans", h.listPlans).Methods(http.MethodGet)
	v1.HandleFunc("/analytics/stats", h.analyticsStats).Methods(http.MethodGet)
	v1.HandleFunc("/analytics/progress", h.analyticsProgress).Methods(http.MethodGet)

	// Subrouters resolve mismatches on their own, so both levels need the handlers.
	for _, r := range []*mux.Router{router, v1} {
		r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
		r.NotFoundHandler = http.HandlerFunc(notFound)
	}
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "route not found")
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) submitRecovery(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopeRecoveryWrite)
	if !ok {
		return
	}

	var req RecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	entry, err := h.readiness.SubmitRecovery(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecoveryView(entry))
}

func (h *Handler) listRecovery(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopeRecoveryRead)
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

	entries, err := h.readiness.ListRecovery(r.Context(), claims.UserID, from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]RecoveryView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toRecoveryView(entry))
	}
	writeJSON(w, http.StatusOK, ListRecoveryResponse{Items: items})
}

func (h *Handler) listReadiness(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, auth.ScopeReadinessRead)
	if !ok {
		return
	}

	verr := &domain.ValidationError{}
	days := positiveIntParam(r, "days", readiness.DefaultListDays, verr)
	if err := verr.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	scores, err := h.readiness.ListScores(r.Context(), claims.UserID, days)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]ReadinessView, 0, len(scores))
	for _, score := range scores {
		items = append(items, toReadinessView(score))
	}
	writeJSON(w, http.StatusOK, ListReadinessResponse{Items: items})
}

// authorize resolves the caller and checks the scope, writing 401/403 on failure.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, scope string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !auth.Allows(claims, scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return nil, false
	}
	return claims, true
}

// writeServiceError maps validation failures to 400 with field detail and hides
// everything else behind a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := domain.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Type:   "validation_failed",
			Detail: verr.Error(),
			Fields: verr.Fields,
		})
		return
	}

	fields := logrus.Fields{"method": r.Method, "path": r.URL.Path}
	if claims, ok := auth.FromContext(r.Context()); ok {
		fields["user_id"] = claims.UserID
	}
	h.logger.WithError(err).WithFields(fields).Error("request failed")
	writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
}

// dayParam parses an optional YYYY-MM-DD query value in the calendar time zone.
func (h *Handler) dayParam(r *http.Request, name string, verr *domain.ValidationError) *time.Time {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	day, err := domain.ParseDay(raw, h.readiness.Location())
	if err != nil {
		verr.Add(name, "must be YYYY-MM-DD or RFC 3339")
		return nil
	}
	return &day
}

func positiveIntParam(r *http.Request, name string, fallback int, verr *domain.ValidationError) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		verr.Add(name, "must be a positive integer")
		return fallback
	}
	return parsed
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
