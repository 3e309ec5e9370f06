package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RouteOptions configure the middleware guarding the routes.
type RouteOptions struct {
	// AuthRequired rejects /expenses requests without a bearer token.
	AuthRequired bool
	// Limiter throttles /users routes when non-nil.
	Limiter *RateLimiter
}

// RegisterRoutes mounts the service endpoints on r.
func RegisterRoutes(r chi.Router, h *Handlers, opts RouteOptions) {
	r.Get("/test", h.Test)

	r.Route("/users", func(users chi.Router) {
		if opts.Limiter != nil {
			users.Use(opts.Limiter.Middleware)
		}
		users.Post("/register", h.Register)
		users.Post("/login", h.Login)
	})

	r.Route("/expenses", func(exp chi.Router) {
		exp.Use(TokenAuth(h.issuer, opts.AuthRequired))
		exp.Post("/", h.CreateExpense)
		exp.Get("/", h.ListExpenses)
		exp.Put("/", h.UpdateExpense)
		exp.Delete("/", h.DeleteExpense)
		exp.Get("/report", h.Report)
	})
}
