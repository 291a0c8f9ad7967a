package payment

import (
	"context"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

type CashBackend interface {
	CreatePayment(ctx context.Context, orderID string, method domain.PaymentMethod, amount float64) (domain.Payment, error)
}

// CashAdapter is pay-on-delivery: no intent, no provider handshake. The
// backend records the payment as pending, to be reconciled on delivery.
type CashAdapter struct {
	api CashBackend
}

func NewCashAdapter(api CashBackend) *CashAdapter {
	return &CashAdapter{api: api}
}

func (a *CashAdapter) Method() domain.PaymentMethod {
	return domain.PaymentMethodCash
}

func (a *CashAdapter) CreateIntent(_ context.Context, _ domain.Order) (IntentResult, error) {
	return IntentResult{Skip: true}, nil
}

func (a *CashAdapter) ConfirmWithProvider(_ context.Context, _ IntentResult, _ CardDetails) (ProviderResult, error) {
	return ProviderResult{}, nil
}

func (a *CashAdapter) ConfirmWithBackend(ctx context.Context, order domain.Order, _ string) (domain.Payment, error) {
	return a.api.CreatePayment(ctx, order.ID, domain.PaymentMethodCash, order.Total.Float64())
}
