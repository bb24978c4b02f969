package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/DESTRKOD/duck-bot/internal/shop/order"
)

type SubmitEmailRequest struct {
	OrderID string         `json:"order_id"`
	Email   string         `json:"email"`
	Cart    map[string]int `json:"cart"`
}

type SubmitEmailResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
}

type SubmitCodeRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Code    string `json:"code" validate:"required"`
}

type SubmitCodeResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type StatusUpdateRequest struct {
	OrderID      string `json:"order_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	AdminComment string `json:"admin_comment"`
	Secret       string `json:"secret"`
}

type StatusUpdateResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type OrderStatusResponse struct {
	Success     bool       `json:"success"`
	OrderID     string     `json:"order_id"`
	Status      string     `json:"status"`
	Email       string     `json:"email"`
	Code        string     `json:"code,omitempty"`
	Amount      float64    `json:"amount"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// OrderHandler serves the shop's order endpoints.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/submit-email", h.handleSubmitEmail)
	router.Post("/api/submit-code", h.handleSubmitCode)
	router.Get("/api/order-status/{order_id}", h.handleOrderStatus)
	router.Post("/api/order-status-update", h.handleStatusUpdate)
}

func (h *OrderHandler) handleSubmitEmail(w http.ResponseWriter, r *http.Request) {
	var req SubmitEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	// Email format is deliberately not validated here; the storefront owns
	// input hygiene.
	o, err := h.svc.SubmitEmail(r.Context(), req.OrderID, req.Email, req.Cart)
	if err != nil {
		log.Error().Err(err).Str("order_id", req.OrderID).Msg("failed to submit email")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, SubmitEmailResponse{
		Success: true,
		OrderID: o.ID,
		Email:   o.Email,
	})
}

func (h *OrderHandler) handleSubmitCode(w http.ResponseWriter, r *http.Request) {
	var req SubmitCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	o, err := h.svc.SubmitCode(r.Context(), req.OrderID, req.Email, req.Code)
	if err != nil {
		log.Warn().Err(err).Str("order_id", req.OrderID).Msg("failed to submit code")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, SubmitCodeResponse{
		Success: true,
		OrderID: o.ID,
		Status:  o.Status.String(),
	})
}

func (h *OrderHandler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondWithError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	o, err := h.svc.GetOrder(r.Context(), orderID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, OrderStatusResponse{
		Success:     true,
		OrderID:     o.ID,
		Status:      o.Status.String(),
		Email:       o.Email,
		Code:        o.Code,
		Amount:      o.Amount,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CompletedAt: o.CompletedAt,
	})
}

func (h *OrderHandler) handleStatusUpdate(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	o, err := h.svc.ApplyStatusUpdate(r.Context(), req.OrderID, order.Status(req.Status), req.AdminComment, req.Secret)
	if err != nil {
		log.Warn().Err(err).Str("order_id", req.OrderID).Str("status", req.Status).Msg("failed to apply status update")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, StatusUpdateResponse{
		Success: true,
		OrderID: o.ID,
		Status:  o.Status.String(),
	})
}
