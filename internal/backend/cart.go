package backend

import (
	"context"
	"net/http"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

// GetCart fetches the cart items of the current user.
func (c *Client) GetCart(ctx context.Context) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateCartItem sets the quantity of one cart item and returns the
// updated item.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (domain.CartItem, error) {
	body := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}

	var item domain.CartItem
	if err := c.do(ctx, http.MethodPut, "/cart/item/"+itemID, nil, body, &item); err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}

// DeleteCartItem removes one cart item.
func (c *Client) DeleteCartItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/item/"+itemID, nil, nil, nil)
}

// ApplyCoupon validates a code against a subtotal. Discount rules are
// server-owned; the response carries the validated coupon and the
// server-computed discount.
func (c *Client) ApplyCoupon(ctx context.Context, code string, subtotal float64) (domain.Coupon, error) {
	body := struct {
		Code     string  `json:"code"`
		Subtotal float64 `json:"subtotal"`
	}{Code: code, Subtotal: subtotal}

	var resp struct {
		Coupon   domain.Coupon `json:"coupon"`
		Discount float64       `json:"discount"`
	}
	if err := c.do(ctx, http.MethodPost, "/coupons/apply", nil, body, &resp); err != nil {
		return domain.Coupon{}, err
	}
	return resp.Coupon, nil
}
