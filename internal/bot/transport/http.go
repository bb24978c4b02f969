package transport

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DESTRKOD/duck-bot/internal/bot/handler"
	"github.com/DESTRKOD/duck-bot/internal/bot/review"
	"github.com/DESTRKOD/duck-bot/internal/catalog"
)

// NewRouter assembles the bot-service HTTP surface.
func NewRouter(svc *review.Service, cat *catalog.Catalog, secret string) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	h := handler.NewAPIHandler(svc, cat, secret)
	h.RegisterRoutes(router)

	return router
}
