package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

// ErrRedirectRequired marks a misuse of the wallet adapter: the provider
// confirmation happens in the browser after the redirect, not here.
var ErrRedirectRequired = errors.New("wallet confirmation happens through the provider redirect")

type WalletBackend interface {
	CreatePaypalIntent(ctx context.Context, orderID string) (domain.WalletRedirect, error)
	ConfirmPaypalPayment(ctx context.Context, providerRef string) (domain.Payment, error)
}

// WalletAdapter is the redirect-style provider. The initial run stops at
// the redirect handoff; the flow is resumed later, correlated by the
// provider-supplied reference rather than in-memory state.
type WalletAdapter struct {
	api WalletBackend
}

func NewWalletAdapter(api WalletBackend) *WalletAdapter {
	return &WalletAdapter{api: api}
}

func (a *WalletAdapter) Method() domain.PaymentMethod {
	return domain.PaymentMethodWallet
}

func (a *WalletAdapter) CreateIntent(ctx context.Context, order domain.Order) (IntentResult, error) {
	redirect, err := a.api.CreatePaypalIntent(ctx, order.ID)
	if err != nil {
		return IntentResult{}, fmt.Errorf("failed to create wallet intent: %w", err)
	}
	return IntentResult{Redirect: &redirect}, nil
}

func (a *WalletAdapter) ConfirmWithProvider(_ context.Context, _ IntentResult, _ CardDetails) (ProviderResult, error) {
	return ProviderResult{}, ErrRedirectRequired
}

func (a *WalletAdapter) ConfirmWithBackend(ctx context.Context, _ domain.Order, ref string) (domain.Payment, error) {
	return a.api.ConfirmPaypalPayment(ctx, ref)
}
