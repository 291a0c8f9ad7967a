package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/cart"
	"github.com/Abdelhameed97/bookshare-sub001/internal/coupon"
	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

type CartHandler struct {
	store   *cart.Store
	coupons *coupon.Engine
	logger  *zap.Logger
}

func NewCartHandler(store *cart.Store, coupons *coupon.Engine, logger *zap.Logger) *CartHandler {
	return &CartHandler{store: store, coupons: coupons, logger: logger}
}

type cartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal money.Money       `json:"subtotal"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if err := h.store.Load(r.Context(), userID); err != nil {
		h.logger.Error("failed to load cart", zap.String("user_id", userID), zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse{
		Items:    h.store.Items(),
		Subtotal: h.store.Subtotal(),
	})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	if err := h.store.SetQuantity(r.Context(), itemID, req.Quantity); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse{
		Items:    h.store.Items(),
		Subtotal: h.store.Subtotal(),
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	if err := h.store.Remove(r.Context(), itemID); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse{
		Items:    h.store.Items(),
		Subtotal: h.store.Subtotal(),
	})
}

// ClearCart empties the cart. A coupon validated against the old cart
// contents must not survive, so a successful clear drops it too.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Warn("cart clear incomplete", zap.Error(err))
		mapError(w, err)
		return
	}
	h.coupons.Remove()
	respondJSON(w, http.StatusOK, cartResponse{
		Items:    h.store.Items(),
		Subtotal: h.store.Subtotal(),
	})
}
