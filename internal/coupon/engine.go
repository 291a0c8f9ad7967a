// Package coupon validates and applies discount codes against a subtotal,
// independent of cart mutation. An applied coupon is transient: it lives
// only for the checkout session and is not re-validated when the cart
// changes afterwards — the caller re-applies before checkout if needed.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

var ErrEmptyCode = errors.New("coupon code is empty")

type Backend interface {
	ApplyCoupon(ctx context.Context, code string, subtotal float64) (domain.Coupon, error)
}

type Engine struct {
	api    Backend
	logger *zap.Logger

	mu       sync.Mutex
	applied  *domain.Coupon
	discount money.Money
}

func NewEngine(api Backend, logger *zap.Logger) *Engine {
	return &Engine{api: api, logger: logger}
}

// Apply validates the code server-side, then recomputes the discount from
// the validated coupon's kind and value. The code-to-value mapping is
// never trusted from client state.
func (e *Engine) Apply(ctx context.Context, code string, subtotal money.Money) (domain.Coupon, money.Money, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, money.Zero(), ErrEmptyCode
	}

	validated, err := e.api.ApplyCoupon(ctx, code, subtotal.Float64())
	if err != nil {
		return domain.Coupon{}, money.Zero(), fmt.Errorf("failed to apply coupon: %w", err)
	}

	discount := validated.Discount(subtotal)

	e.mu.Lock()
	e.applied = &validated
	e.discount = discount
	e.mu.Unlock()

	e.logger.Info("coupon applied",
		zap.String("code", validated.Code),
		zap.String("discount", discount.String()))
	return validated, discount, nil
}

// Remove clears the applied coupon. Removing when nothing is applied is a
// no-op.
func (e *Engine) Remove() {
	e.mu.Lock()
	e.applied = nil
	e.discount = money.Zero()
	e.mu.Unlock()
}

// Applied returns a copy of the applied coupon, or nil.
func (e *Engine) Applied() *domain.Coupon {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.applied == nil {
		return nil
	}
	c := *e.applied
	return &c
}

func (e *Engine) Discount() money.Money {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.discount
}
