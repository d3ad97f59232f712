package dashboards

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/platform/httpx"
)

// Handler wires HTTP endpoints for dashboards.
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

// MountRoutes registers dashboard routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Require(authz.OpCreateDashboard)).Post("/create", h.create)
	r.With(h.gate.Require(authz.OpViewDashboards)).Get("/my", h.listVisible)
}

type createRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type dashboardResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(d Dashboard) dashboardResponse {
	return dashboardResponse{ID: d.ID, Name: d.Name, TenantID: d.TenantID, CreatedAt: d.CreatedAt}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", "name is required")
		return
	}

	actor := authz.ActorFromContext(r.Context())
	d, err := h.service.Create(r.Context(), *actor, req.Name)
	if err != nil {
		h.logger.Error("create dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(d))
}

func (h *Handler) listVisible(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	visible, err := h.service.Visible(r.Context(), *actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result := make([]dashboardResponse, 0, len(visible))
	for _, d := range visible {
		result = append(result, toResponse(d))
	}
	httpx.JSON(w, http.StatusOK, result)
}
