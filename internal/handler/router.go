package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	listingHandler "github.com/marketloop/negotiator/internal/handler/listing"
	negotiationHandler "github.com/marketloop/negotiator/internal/handler/negotiation"
	middlewarePkg "github.com/marketloop/negotiator/internal/middleware"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(listings *listingHandler.Handler, negotiations *negotiationHandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		listings.RegisterRoutes(api)
		negotiations.RegisterRoutes(api)
	})

	return r
}
