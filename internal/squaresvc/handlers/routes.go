package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes
		r.Get("/health", h.HealthHandler)
		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)
		r.Get("/games", h.ListGamesHandler)
		r.Get("/games/{id}", h.GetGameHandler)
		r.Get("/games/{id}/squares", h.ListSquaresHandler)
		r.Get("/games/{id}/winners", h.WinnersHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(h.Authenticator)

			r.Post("/auth/logout", h.LogoutHandler)
			r.Get("/auth/me", h.MeHandler)
			r.Post("/games/{id}/squares/request", h.RequestSquareHandler)
			r.Delete("/games/{id}/squares/{squareId}/cancel", h.CancelSquareHandler)
			r.Get("/users/{id}/squares", h.ListUserSquaresHandler)
			r.Get("/users/{id}/requests", h.ListUserRequestsHandler)

			// admin routes
			r.Group(func(r chi.Router) {
				r.Use(h.AdminOnly)

				r.Post("/games", h.CreateGameHandler)
				r.Put("/games/{id}", h.UpdateGameHandler)
				r.Get("/games/{id}/requests", h.ListRequestsHandler)
				r.Post("/requests/{id}/approve", h.ApproveRequestHandler)
				r.Post("/requests/{id}/reject", h.RejectRequestHandler)
				r.Post("/games/{id}/assign-numbers", h.AssignNumbersHandler)
				r.Put("/games/{id}/status", h.UpdateStatusHandler)
				r.Put("/games/{id}/scores", h.UpdateScoresHandler)
				r.Delete("/games/{id}/squares/{squareId}/remove", h.RemoveSquareHandler)
			})
		})
	})
}
