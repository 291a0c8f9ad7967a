package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/backend"
	"github.com/Abdelhameed97/bookshare-sub001/internal/cart"
	"github.com/Abdelhameed97/bookshare-sub001/internal/coupon"
	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
	"github.com/Abdelhameed97/bookshare-sub001/internal/order"
	"github.com/Abdelhameed97/bookshare-sub001/internal/payment"
)

type CheckoutHandler struct {
	store     *cart.Store
	coupons   *coupon.Engine
	assembler *order.Assembler
	orders    order.Backend
	orch      *payment.Orchestrator
	adapters  map[domain.PaymentMethod]payment.ProviderAdapter
	shipping  order.ShippingRule
	logger    *zap.Logger
}

func NewCheckoutHandler(
	store *cart.Store,
	coupons *coupon.Engine,
	assembler *order.Assembler,
	orders order.Backend,
	orch *payment.Orchestrator,
	adapters map[domain.PaymentMethod]payment.ProviderAdapter,
	shipping order.ShippingRule,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		store:     store,
		coupons:   coupons,
		assembler: assembler,
		orders:    orders,
		orch:      orch,
		adapters:  adapters,
		shipping:  shipping,
		logger:    logger,
	}
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type applyCouponResponse struct {
	Coupon   domain.Coupon `json:"coupon"`
	Discount money.Money   `json:"discount"`
	Subtotal money.Money   `json:"subtotal"`
}

type createOrderResponse struct {
	OrderID  string      `json:"order_id"`
	Subtotal money.Money `json:"subtotal"`
	Discount money.Money `json:"discount"`
	Shipping money.Money `json:"shipping"`
	Total    money.Money `json:"total"`
}

type payRequest struct {
	Method string `json:"method"`
	Card   struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"card"`
}

type payResponse struct {
	State       string          `json:"state"`
	Payment     *domain.Payment `json:"payment,omitempty"`
	RedirectURL string          `json:"redirect_url,omitempty"`
	ProviderRef string          `json:"provider_ref,omitempty"`
	Reason      string          `json:"reason,omitempty"`
}

func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	subtotal := h.store.Subtotal()
	applied, discount, err := h.coupons.Apply(r.Context(), req.Code, subtotal)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, applyCouponResponse{
		Coupon:   applied,
		Discount: discount,
		Subtotal: subtotal,
	})
}

func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.coupons.Remove()
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// CreateOrder snapshots the cart into an immutable order. On success the
// cart and any applied coupon are consumed; a clear failure is logged but
// does not undo the order.
func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	draft := order.BuildDraft(h.store.Items(), h.coupons.Applied(), h.shipping)

	orderID, err := h.assembler.Submit(r.Context(), draft)
	if err != nil {
		mapError(w, err)
		return
	}

	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Warn("cart not fully cleared after checkout",
			zap.String("order_id", orderID), zap.Error(err))
	}
	h.coupons.Remove()

	respondJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:  orderID,
		Subtotal: draft.Subtotal,
		Discount: draft.Discount,
		Shipping: draft.Shipping,
		Total:    draft.Total,
	})
}

func (h *CheckoutHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	if err := h.assembler.Cancel(r.Context(), orderID); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	adapter, ok := h.adapters[domain.PaymentMethod(req.Method)]
	if !ok {
		respondError(w, http.StatusBadRequest, "unsupported_method", "unsupported payment method: "+req.Method)
		return
	}

	ord, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		mapError(w, err)
		return
	}

	details := payment.CardDetails{Name: req.Card.Name, Email: req.Card.Email}
	result, err := h.orch.Pay(r.Context(), ord, adapter, details)
	if err != nil && !renderableFailure(result, err) {
		mapError(w, err)
		return
	}
	respondJSON(w, statusForState(result.State), toPayResponse(result))
}

// ResumeWallet completes a wallet payment after the provider redirected
// the shopper back with the reference issued at intent time.
func (h *CheckoutHandler) ResumeWallet(w http.ResponseWriter, r *http.Request) {
	providerRef := r.URL.Query().Get("ref")
	if providerRef == "" {
		respondError(w, http.StatusBadRequest, "missing_ref", "missing provider reference")
		return
	}

	adapter, ok := h.adapters[domain.PaymentMethodWallet]
	if !ok {
		respondError(w, http.StatusBadRequest, "unsupported_method", "wallet payments are not configured")
		return
	}

	result, err := h.orch.Resume(r.Context(), providerRef, adapter)
	if err != nil && !renderableFailure(result, err) {
		mapError(w, err)
		return
	}
	respondJSON(w, statusForState(result.State), toPayResponse(result))
}

// renderableFailure reports whether a failed orchestration run should be
// rendered as a payment outcome. An expired session is an auth fault and
// goes through the uniform 401 mapping instead.
func renderableFailure(res payment.Result, err error) bool {
	return res.State == payment.StateFailed && !errors.Is(err, backend.ErrSessionExpired)
}

func statusForState(s payment.State) int {
	switch s {
	case payment.StateSucceeded, payment.StateAlreadyPaid:
		return http.StatusOK
	case payment.StateProviderConfirming:
		return http.StatusAccepted
	case payment.StateFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusOK
	}
}

func toPayResponse(res payment.Result) payResponse {
	return payResponse{
		State:       string(res.State),
		Payment:     res.Payment,
		RedirectURL: res.RedirectURL,
		ProviderRef: res.ProviderRef,
		Reason:      res.FailureReason,
	}
}
