// Package order transforms a cart snapshot plus an applied coupon into an
// order-creation request and interprets the response into an order id.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

var (
	ErrEmptyDraft = errors.New("order draft has no items")

	// ErrOrderCreationFailed means the backend answered without an order
	// id. This is a hard stop for the checkout session, never silently
	// ignored.
	ErrOrderCreationFailed = errors.New("order creation failed: no order id in response")
)

type Backend interface {
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// BuildDraft is pure: it computes totals from the given items, coupon and
// shipping rule without touching the network. The discount is clamped to
// the subtotal so no monetary field goes negative. A fresh idempotency
// key is minted per draft; resubmitting the same draft reuses it.
func BuildDraft(items []domain.CartItem, coupon *domain.Coupon, rule ShippingRule) domain.OrderDraft {
	subtotal := domain.Subtotal(items)

	discount := money.Zero()
	couponCode := ""
	if coupon != nil {
		discount = coupon.Discount(subtotal)
		couponCode = coupon.Code
	}

	shipping := rule.Fee(subtotal)
	total := subtotal.Sub(discount).Add(shipping)

	draftItems := make([]domain.DraftItem, 0, len(items))
	for _, it := range items {
		draftItems = append(draftItems, domain.DraftItem{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return domain.OrderDraft{
		Items:          draftItems,
		Subtotal:       subtotal,
		Discount:       discount,
		Shipping:       shipping,
		Total:          total,
		CouponCode:     couponCode,
		IdempotencyKey: uuid.NewString(),
	}
}

type Assembler struct {
	api    Backend
	logger *zap.Logger
}

func NewAssembler(api Backend, logger *zap.Logger) *Assembler {
	return &Assembler{api: api, logger: logger}
}

// Submit sends the draft to the backend once. It is never retried here; a
// caller who retries submits the same draft so the backend can deduplicate
// on the idempotency key.
func (a *Assembler) Submit(ctx context.Context, draft domain.OrderDraft) (string, error) {
	if len(draft.Items) == 0 {
		return "", ErrEmptyDraft
	}

	created, err := a.api.CreateOrder(ctx, draft)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	if created.ID == "" {
		return "", ErrOrderCreationFailed
	}

	a.logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("total", draft.Total.String()))
	return created.ID, nil
}

// Cancel requests a client-initiated cancellation; the backend honors it
// only while the order is pending.
func (a *Assembler) Cancel(ctx context.Context, orderID string) error {
	current, err := a.api.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if !current.Status.Cancellable() {
		return fmt.Errorf("order %s is %s and can no longer be cancelled", orderID, current.Status)
	}
	if err := a.api.CancelOrder(ctx, orderID); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return nil
}
