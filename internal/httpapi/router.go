package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Abdelhameed97/bookshare-sub001/internal/session"
)

// NewRouter wires all checkout endpoints under /api/v1.
func NewRouter(
	sess *session.Session,
	cartHandler *CartHandler,
	checkoutHandler *CheckoutHandler,
	ledgerHandler *LedgerHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(SessionMiddleware(sess))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Put("/items/{item_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{item_id}", cartHandler.RemoveItem)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/apply", checkoutHandler.ApplyCoupon)
			r.Delete("/", checkoutHandler.RemoveCoupon)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", checkoutHandler.CreateOrder)
			r.Post("/{order_id}/cancel", checkoutHandler.CancelOrder)
			r.Post("/{order_id}/pay", checkoutHandler.Pay)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", ledgerHandler.ListPayments)
			r.Get("/wallet/return", checkoutHandler.ResumeWallet)
		})
	})

	return r
}
