package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
)

// NewRouter builds the checkout-service HTTP router
func NewRouter(checkout *CheckoutHandler, loyalty *LoyaltyHandler, tracking *TrackingHandler, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(RecoveryMiddleware(log))

	r.Post("/checkout", checkout.Submit)
	r.Post("/checkout/quote", checkout.Quote)
	r.Get("/checkout/{checkoutID}", tracking.GetCheckoutStatus)
	r.Post("/promos/validate", checkout.ValidatePromo)
	r.Get("/loyalty/{userID}", loyalty.GetStatus)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
