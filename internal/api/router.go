package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the auction routes
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	if h.Feed != nil {
		r.Get("/ws", h.Feed.ServeHTTP)
	}

	r.Route("/users/{uname}", func(r chi.Router) {
		r.Post("/ping", h.Ping)
		r.Post("/check_asks", h.CheckAsks)
		r.Post("/place_bid/{price}", h.PlaceBid)
	})
	r.Post("/admin/board", h.Board)

	return r
}
