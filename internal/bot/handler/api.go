package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/DESTRKOD/duck-bot/internal/bot/review"
	"github.com/DESTRKOD/duck-bot/internal/catalog"
)

type OrderNotifyRequest struct {
	OrderID string         `json:"order_id"`
	Email   string         `json:"email"`
	Items   map[string]int `json:"items"`
	Amount  float64        `json:"amount"`
	Code    string         `json:"code"`
	Secret  string         `json:"secret"`
	Stage   string         `json:"stage"`
}

type OrderUpdateRequest struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	AdminComment string `json:"admin_comment"`
	Secret       string `json:"secret"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// APIHandler serves the bot service's HTTP surface: the notification intake,
// the status relay and the read-only diagnostics.
type APIHandler struct {
	svc     *review.Service
	catalog *catalog.Catalog
	secret  string
	started time.Time
}

func NewAPIHandler(svc *review.Service, cat *catalog.Catalog, secret string) *APIHandler {
	return &APIHandler{
		svc:     svc,
		catalog: cat,
		secret:  secret,
		started: time.Now(),
	}
}

func (h *APIHandler) RegisterRoutes(router chi.Router) {
	router.Post("/api/order-notify", h.handleOrderNotify)
	router.Post("/api/order-update", h.handleOrderUpdate)
	router.Get("/status", h.handleStatus)
	router.Get("/health", h.handleHealth)
	router.Get("/orders", h.handleOrders)
	router.Get("/products", h.handleProducts)
	router.Get("/keep-alive", h.handleKeepAlive)
}

func (h *APIHandler) handleOrderNotify(w http.ResponseWriter, r *http.Request) {
	var req OrderNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}

	if req.Secret != h.secret {
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	if req.OrderID == "" {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "order_id is required"})
		return
	}

	err := h.svc.ReceiveNotification(r.Context(), review.Notification{
		OrderID: req.OrderID,
		Email:   req.Email,
		Items:   req.Items,
		Amount:  req.Amount,
		Code:    req.Code,
		Stage:   review.Stage(req.Stage),
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", req.OrderID).Msg("failed to process order notification")
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *APIHandler) handleOrderUpdate(w http.ResponseWriter, r *http.Request) {
	var req OrderUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}

	if req.Secret != h.secret {
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	if req.OrderID == "" || req.Status == "" {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "order_id and status are required"})
		return
	}

	if err := h.svc.RelayStatusUpdate(r.Context(), req.OrderID, req.Status, req.AdminComment); err != nil {
		log.Error().Err(err).Str("order_id", req.OrderID).Msg("failed to relay status update")
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *APIHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts := h.svc.Queue().Counts()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"service":  "bot-service",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"pending":  counts[review.StatusPending],
		"approved": counts[review.StatusApproved],
		"rejected": counts[review.StatusRejected],
	})
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *APIHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  h.svc.Queue().List(),
	})
}

func (h *APIHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": h.catalog.Products(),
	})
}

func (h *APIHandler) handleKeepAlive(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"alive": true})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}
