package superadmin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/relaycrm/relay/internal/audit"
	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/platform/httpx"
	"github.com/relaycrm/relay/internal/subscriptions"
	"github.com/relaycrm/relay/internal/users"
)

// Handler exposes the superadmin console endpoints: platform-wide user
// and subscription management plus the audit trail.
type Handler struct {
	logger    *slog.Logger
	users     *users.Service
	subs      *subscriptions.Service
	audit     *audit.Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, userSvc *users.Service, subSvc *subscriptions.Service, auditSvc *audit.Service, gate authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		users:     userSvc,
		subs:      subSvc,
		audit:     auditSvc,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers superadmin routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Require(authz.OpListUsers)).Get("/users", h.listUsers)
	r.With(h.gate.Require(authz.OpListSubscriptions)).Get("/subscriptions", h.listSubscriptions)
	r.With(h.gate.Require(authz.OpToggleSubscription)).Put("/subscription/{id}/toggle", h.toggleSubscription)
	r.With(h.gate.Require(authz.OpExtendSubscription)).Put("/subscription/{id}/extend", h.extendSubscription)
	r.With(h.gate.Require(authz.OpBlockAdmin)).Put("/user/{id}/block", h.toggleBlocked)
	r.With(h.gate.Require(authz.OpViewAuditLogs)).Get("/audit-logs", h.auditLogs)
}

type platformUserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TenantID  string `json:"tenantId"`
	IsBlocked bool   `json:"isBlocked"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	all, err := h.users.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	result := make([]platformUserResponse, 0, len(all))
	for _, u := range all {
		result = append(result, platformUserResponse{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      string(u.Role),
			TenantID:  u.TenantID,
			IsBlocked: u.IsBlocked,
		})
	}
	httpx.JSON(w, http.StatusOK, result)
}

type subscriptionResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	PlanID    string    `json:"planId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Active    bool      `json:"active"`
}

func toSubscriptionResponse(s subscriptions.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:        s.ID,
		Email:     s.Email,
		PlanID:    s.PlanID,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Active:    s.Active,
	}
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	all, err := h.subs.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list subscriptions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	result := make([]subscriptionResponse, 0, len(all))
	for _, s := range all {
		result = append(result, toSubscriptionResponse(s))
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) toggleSubscription(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	sub, err := h.subs.Toggle(r.Context(), *actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

type extendRequest struct {
	ExtraDays int `json:"extraDays" validate:"required,gt=0"`
}

func (h *Handler) extendSubscription(w http.ResponseWriter, r *http.Request) {
	var req extendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "extraDays must be greater than 0")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	sub, err := h.subs.Extend(r.Context(), *actor, chi.URLParam(r, "id"), req.ExtraDays)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) toggleBlocked(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	u, err := h.users.ToggleBlocked(r.Context(), *actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, platformUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		TenantID:  u.TenantID,
		IsBlocked: u.IsBlocked,
	})
}

type auditEntryResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	Action     string    `json:"action"`
	TargetType string    `json:"targetType,omitempty"`
	TargetID   string    `json:"targetId,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (h *Handler) auditLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.Recent(r.Context())
	if err != nil {
		h.logger.Error("audit logs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	result := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, auditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Action:     e.Action,
			TargetType: e.TargetType,
			TargetID:   e.TargetID,
			Message:    e.Message,
			CreatedAt:  e.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, result)
}
