package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the public and admin API surfaces on a chi router. Global
// middleware (recovery, CORS, rate limiting, logging) is applied by the caller
// so the router stays testable on its own.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", h.ListMenu)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.PlaceOrder)
			r.Get("/{id}", h.GetOrder)
			r.Post("/{id}/payments", h.SubmitPaymentClaim)
			r.Get("/{id}/events", h.OrderEvents)
		})

		r.Route("/payments/phonepe", func(r chi.Router) {
			r.Post("/", h.InitiateGatewayPayment)
			r.Post("/webhook", h.GatewayWebhook)
			r.Get("/callback", h.GatewayCallback)
			r.Post("/callback", h.GatewayCallback)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireSession)

				r.Post("/logout", h.Logout)

				r.Get("/orders", h.ListOrders)
				r.Patch("/orders/{id}/status", h.UpdateOrderStatus)

				r.Get("/payments", h.ListPayments)
				r.Patch("/payments/{id}", h.VerifyPayment)

				r.Route("/menu", func(r chi.Router) {
					r.Get("/", h.ListMenuAdmin)
					r.Post("/", h.CreateMenuItem)
					r.Put("/{id}", h.UpdateMenuItem)
					r.Patch("/{id}/availability", h.SetMenuAvailability)
					r.Delete("/{id}", h.DeleteMenuItem)
				})

				r.Get("/reports/sales", h.SalesReport)
				r.Get("/events", h.AdminEvents)
			})
		})
	})

	return r
}
