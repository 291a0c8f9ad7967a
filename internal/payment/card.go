package payment

import (
	"context"
	"fmt"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

type CardBackend interface {
	CreateStripeIntent(ctx context.Context, orderID string) (domain.PaymentIntent, error)
	ConfirmStripePayment(ctx context.Context, paymentIntentID string) (domain.Payment, error)
}

// CardConfirmer is the card network's client-side confirmation (the card
// element). It consumes the intent's client secret exactly once and must
// return a *ProviderError on decline so the reason survives verbatim.
type CardConfirmer interface {
	ConfirmCardPayment(ctx context.Context, clientSecret string, details CardDetails) error
}

type CardAdapter struct {
	api       CardBackend
	confirmer CardConfirmer
}

func NewCardAdapter(api CardBackend, confirmer CardConfirmer) *CardAdapter {
	return &CardAdapter{api: api, confirmer: confirmer}
}

func (a *CardAdapter) Method() domain.PaymentMethod {
	return domain.PaymentMethodCard
}

func (a *CardAdapter) CreateIntent(ctx context.Context, order domain.Order) (IntentResult, error) {
	intent, err := a.api.CreateStripeIntent(ctx, order.ID)
	if err != nil {
		return IntentResult{}, fmt.Errorf("failed to create card intent: %w", err)
	}
	return IntentResult{Intent: intent}, nil
}

func (a *CardAdapter) ConfirmWithProvider(ctx context.Context, intent IntentResult, details CardDetails) (ProviderResult, error) {
	if err := a.confirmer.ConfirmCardPayment(ctx, intent.Intent.ClientSecret, details); err != nil {
		return ProviderResult{}, err
	}
	return ProviderResult{Ref: intent.Intent.PaymentID}, nil
}

func (a *CardAdapter) ConfirmWithBackend(ctx context.Context, _ domain.Order, ref string) (domain.Payment, error) {
	return a.api.ConfirmStripePayment(ctx, ref)
}
