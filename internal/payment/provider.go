package payment

import (
	"context"
	"errors"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

var (
	// ErrOrchestrationActive guards against two concurrent orchestration
	// runs for the same order.
	ErrOrchestrationActive = errors.New("a payment for this order is already in progress")

	// ErrUnknownAttempt means no resumable attempt matches the provider
	// reference the browser came back with.
	ErrUnknownAttempt = errors.New("no resumable payment attempt for this provider reference")

	ErrIllegalTransition = errors.New("illegal payment state transition")
)

// ProviderError carries the provider's own human-readable failure reason
// (card decline, wallet cancellation). The reason is surfaced verbatim.
type ProviderError struct {
	Reason string
}

func (e *ProviderError) Error() string {
	return e.Reason
}

// CardDetails are the billing details handed to the card network's
// client-side confirmation, derived from the order's customer.
type CardDetails struct {
	Name  string
	Email string
}

// IntentResult is the outcome of the intent step. Exactly one of the
// three shapes applies: a minted intent (card), a redirect handoff
// (wallet), or Skip (cash).
type IntentResult struct {
	Skip     bool
	Intent   domain.PaymentIntent
	Redirect *domain.WalletRedirect
}

// ProviderResult reports a successful client-side provider confirmation;
// Ref is what the backend confirmation step is keyed on.
type ProviderResult struct {
	Ref string
}

// ProviderAdapter encapsulates one provider's payment handshake. The
// orchestrator drives the three steps; adapters never talk to each other.
type ProviderAdapter interface {
	Method() domain.PaymentMethod
	CreateIntent(ctx context.Context, order domain.Order) (IntentResult, error)
	ConfirmWithProvider(ctx context.Context, intent IntentResult, details CardDetails) (ProviderResult, error)
	ConfirmWithBackend(ctx context.Context, order domain.Order, ref string) (domain.Payment, error)
}
