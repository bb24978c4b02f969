package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DESTRKOD/duck-bot/internal/shop/handler"
	"github.com/DESTRKOD/duck-bot/internal/shop/order"
)

// NewRouter assembles the shop-service HTTP surface.
func NewRouter(svc order.Service) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	h := handler.NewOrderHandler(svc)
	h.RegisterRoutes(router)

	return router
}
