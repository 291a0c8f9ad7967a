package domain

import "github.com/Abdelhameed97/bookshare-sub001/internal/money"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Cancellable reports whether the client may still request cancellation.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending
}

type DraftItem struct {
	BookID    string      `json:"book_id"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unit_price"`
}

// OrderDraft is a computed value object: recomputed whenever the cart or
// coupon changes, never mutated in place. The idempotency key is minted
// once per draft so a repeated submit can be deduplicated by the backend.
type OrderDraft struct {
	Items          []DraftItem `json:"items"`
	Subtotal       money.Money `json:"subtotal"`
	Discount       money.Money `json:"discount"`
	Shipping       money.Money `json:"shipping"`
	Total          money.Money `json:"total"`
	CouponCode     string      `json:"coupon_code,omitempty"`
	IdempotencyKey string      `json:"-"`
}

type OrderItem struct {
	BookID    string      `json:"book_id"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unit_price"`
}

// Order is the client's read-only projection of the backend order record.
type Order struct {
	ID       string      `json:"id"`
	Status   OrderStatus `json:"status"`
	Items    []OrderItem `json:"items"`
	Subtotal money.Money `json:"subtotal"`
	Discount money.Money `json:"discount"`
	Shipping money.Money `json:"shipping"`
	Total    money.Money `json:"total"`
}
