package payments

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/relaycrm/relay/internal/platform/httpx"
)

// Handler exposes the public payment endpoints consumed by the checkout
// page before an account exists.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/create-order", h.createOrder)
	r.Post("/verify-payment", h.verifyPayment)
}

type createOrderRequest struct {
	Email    string `json:"email" validate:"required,email"`
	PlanName string `json:"planName" validate:"required"`
}

type orderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
	Email    string `json:"email"`
	PlanName string `json:"planName"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req.Email, req.PlanName)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    order.KeyID,
		Email:    order.Email,
		PlanName: order.PlanName,
	})
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	PlanName  string `json:"planName" validate:"required"`
}

type verifyPaymentResponse struct {
	Msg      string `json:"msg"`
	Redirect string `json:"redirect"`
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	if _, err := h.service.VerifyPayment(r.Context(), VerifyInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Email:     req.Email,
		PlanName:  req.PlanName,
	}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, verifyPaymentResponse{
		Msg:      "payment verified, subscription activated",
		Redirect: "/signup?email=" + url.QueryEscape(req.Email),
	})
}
