package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Abdelhameed97/bookshare-sub001/internal/backend"
	"github.com/Abdelhameed97/bookshare-sub001/internal/cart"
	"github.com/Abdelhameed97/bookshare-sub001/internal/coupon"
	"github.com/Abdelhameed97/bookshare-sub001/internal/order"
	"github.com/Abdelhameed97/bookshare-sub001/internal/payment"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// mapError converts pipeline errors to HTTP responses. Business-rule and
// provider messages pass through verbatim; everything unexpected becomes
// a generic failure.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrSessionExpired):
		respondError(w, http.StatusUnauthorized, "session_expired", "session expired, please sign in again")
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, coupon.ErrEmptyCode),
		errors.Is(err, order.ErrEmptyDraft):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, payment.ErrOrchestrationActive):
		respondError(w, http.StatusConflict, "payment_in_progress", err.Error())
	case errors.Is(err, payment.ErrUnknownAttempt):
		respondError(w, http.StatusNotFound, "unknown_payment_attempt", err.Error())
	case errors.Is(err, order.ErrOrderCreationFailed):
		respondError(w, http.StatusBadGateway, "order_creation_failed", err.Error())
	case errors.Is(err, backend.ErrMalformedResponse):
		respondError(w, http.StatusBadGateway, "malformed_upstream_response", "unexpected response from the order service")
	default:
		var provErr *payment.ProviderError
		if errors.As(err, &provErr) {
			respondError(w, http.StatusPaymentRequired, "provider_rejected", provErr.Reason)
			return
		}
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			respondError(w, apiErr.StatusCode, "upstream_rejected", apiErr.Message)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
