package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/platform/httpx"
)

// Handler wires HTTP endpoints for account and team management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Require(authz.OpCreateTeamMember)).Post("/create", h.createTeamMember)
	r.With(h.gate.Require(authz.OpListTeam)).Get("/team", h.listTeam)
	r.With(h.gate.Require(authz.OpDeleteTeamMember)).Delete("/team/{id}", h.deleteTeamMember)
	r.With(h.gate.Require(authz.OpSetLastDashboard)).Put("/last-dashboard", h.setLastDashboard)
	r.With(h.gate.Require(authz.OpViewProfile)).Get("/me", h.profile)
}

type createTeamMemberRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required"`
	DashboardID string `json:"dashboardId" validate:"required"`
}

type userResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	TenantID    string `json:"tenantId"`
	DashboardID string `json:"dashboardId,omitempty"`
	IsBlocked   bool   `json:"isBlocked"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		TenantID:    u.TenantID,
		DashboardID: u.DashboardID,
		IsBlocked:   u.IsBlocked,
	}
}

func (h *Handler) createTeamMember(w http.ResponseWriter, r *http.Request) {
	var req createTeamMemberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "role must be staff or manager")
		return
	}

	actor := authz.ActorFromContext(r.Context())
	created, err := h.service.CreateTeamMember(r.Context(), *actor, CreateTeamMemberInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        role,
		DashboardID: req.DashboardID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(created))
}

type teamMemberResponse struct {
	userResponse
	DashboardName string `json:"dashboardName,omitempty"`
}

func (h *Handler) listTeam(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	team, err := h.service.Team(r.Context(), *actor)
	if err != nil {
		h.logger.Error("list team", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	result := make([]teamMemberResponse, 0, len(team))
	for _, m := range team {
		result = append(result, teamMemberResponse{
			userResponse:  toUserResponse(m.User),
			DashboardName: m.DashboardName,
		})
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) deleteTeamMember(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	if err := h.service.DeleteTeamMember(r.Context(), *actor, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"msg": "user deleted successfully"})
}

type lastDashboardRequest struct {
	DashboardID string `json:"dashboardId" validate:"required"`
}

func (h *Handler) setLastDashboard(w http.ResponseWriter, r *http.Request) {
	var req lastDashboardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "dashboardId is required")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	if err := h.service.SetLastDashboard(r.Context(), *actor, req.DashboardID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"msg": "last dashboard updated"})
}

type profileResponse struct {
	userResponse
	LastDashboardID string `json:"lastDashboardId,omitempty"`
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	u, err := h.service.Profile(r.Context(), actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profileResponse{
		userResponse:    toUserResponse(u),
		LastDashboardID: u.LastDashboardID,
	})
}
