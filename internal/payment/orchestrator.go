// Package payment drives a payment from creation to a terminal state, one
// orchestration per order at a time, delegating provider-specific steps to
// a ProviderAdapter. No step is ever retried here; a retry is a fresh
// orchestration run initiated by the caller.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/backend"
	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
	"github.com/Abdelhameed97/bookshare-sub001/internal/resume"
)

type Backend interface {
	PaymentByOrder(ctx context.Context, orderID string) (*domain.Payment, error)
}

type AttemptStore interface {
	Save(ctx context.Context, a resume.Attempt) error
	FindByProviderRef(ctx context.Context, providerRef string) (*resume.Attempt, error)
	Delete(ctx context.Context, id string) error
}

type Events interface {
	CheckoutCompleted(ctx context.Context, payment domain.Payment) error
	PaymentFailed(ctx context.Context, orderID string, method domain.PaymentMethod, reason string) error
}

// Result is the outcome of one orchestration run. A wallet run suspends
// at ProviderConfirming with the redirect the browser must follow.
type Result struct {
	State         State
	Payment       *domain.Payment
	RedirectURL   string
	ProviderRef   string
	FailureReason string
}

type Orchestrator struct {
	api      Backend
	attempts AttemptStore
	events   Events
	logger   *zap.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

func NewOrchestrator(api Backend, attempts AttemptStore, events Events, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		api:      api,
		attempts: attempts,
		events:   events,
		logger:   logger,
		active:   make(map[string]struct{}),
	}
}

// Pay runs one orchestration for the order. Before any intent is
// requested, an existing non-failed payment short-circuits to AlreadyPaid
// so one order can never be charged twice.
func (o *Orchestrator) Pay(ctx context.Context, order domain.Order, adapter ProviderAdapter, details CardDetails) (Result, error) {
	if err := o.begin(order.ID); err != nil {
		return Result{State: StateIdle}, err
	}
	defer o.end(order.ID)

	state := StateIdle

	existing, err := o.api.PaymentByOrder(ctx, order.ID)
	if err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), &state, fmt.Errorf("failed to check existing payment: %w", err))
	}
	if existing != nil && existing.Active() {
		state = StateAlreadyPaid
		return Result{State: state, Payment: existing}, nil
	}

	intent, err := adapter.CreateIntent(ctx, order)
	if err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), &state, err)
	}

	if intent.Skip {
		// no server-minted credential for this provider
		if err := advance(&state, StateBackendConfirming); err != nil {
			return o.fail(ctx, order.ID, adapter.Method(), &state, err)
		}
		return o.confirmBackend(ctx, order, adapter, "", &state)
	}

	if err := advance(&state, StateIntentRequested); err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), &state, err)
	}

	if intent.Redirect != nil {
		attempt := resume.Attempt{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			ProviderRef: intent.Redirect.ProviderRef,
			Method:      adapter.Method(),
			AmountCents: order.Total.Cents(),
			CreatedAt:   time.Now(),
		}
		if err := o.attempts.Save(ctx, attempt); err != nil {
			return o.fail(ctx, order.ID, adapter.Method(), &state, fmt.Errorf("failed to persist payment attempt: %w", err))
		}
		if err := advance(&state, StateProviderConfirming); err != nil {
			return o.fail(ctx, order.ID, adapter.Method(), &state, err)
		}
		o.logger.Info("payment suspended for provider redirect",
			zap.String("order_id", order.ID),
			zap.String("provider_ref", intent.Redirect.ProviderRef))
		return Result{
			State:       state,
			RedirectURL: intent.Redirect.RedirectURL,
			ProviderRef: intent.Redirect.ProviderRef,
		}, nil
	}

	if err := advance(&state, StateProviderConfirming); err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), &state, err)
	}
	confirmed, err := adapter.ConfirmWithProvider(ctx, intent, details)
	if err != nil {
		// provider-reported reason is surfaced verbatim
		return o.fail(ctx, order.ID, adapter.Method(), &state, err)
	}

	if err := advance(&state, StateBackendConfirming); err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), &state, err)
	}
	return o.confirmBackend(ctx, order, adapter, confirmed.Ref, &state)
}

// Resume picks a wallet flow back up after the browser returned from the
// provider redirect, correlated by the provider reference.
func (o *Orchestrator) Resume(ctx context.Context, providerRef string, adapter ProviderAdapter) (Result, error) {
	attempt, err := o.attempts.FindByProviderRef(ctx, providerRef)
	if err != nil {
		if errors.Is(err, resume.ErrAttemptNotFound) {
			return Result{State: StateIdle}, ErrUnknownAttempt
		}
		return Result{State: StateIdle}, fmt.Errorf("failed to look up payment attempt: %w", err)
	}

	if err := o.begin(attempt.OrderID); err != nil {
		return Result{State: StateProviderConfirming}, err
	}
	defer o.end(attempt.OrderID)

	order := domain.Order{ID: attempt.OrderID, Total: money.FromCents(attempt.AmountCents)}

	state := StateProviderConfirming
	if err := advance(&state, StateBackendConfirming); err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), &state, err)
	}

	result, err := o.confirmBackend(ctx, order, adapter, providerRef, &state)
	if err == nil && result.State == StateSucceeded {
		if delErr := o.attempts.Delete(ctx, attempt.ID); delErr != nil {
			o.logger.Warn("failed to delete settled payment attempt", zap.Error(delErr))
		}
	}
	return result, err
}

func (o *Orchestrator) confirmBackend(ctx context.Context, order domain.Order, adapter ProviderAdapter, ref string, state *State) (Result, error) {
	settled, err := adapter.ConfirmWithBackend(ctx, order, ref)
	if err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), state, err)
	}

	if err := advance(state, StateSucceeded); err != nil {
		return o.fail(ctx, order.ID, adapter.Method(), state, err)
	}

	if pubErr := o.events.CheckoutCompleted(ctx, settled); pubErr != nil {
		o.logger.Warn("failed to publish checkout completion", zap.Error(pubErr))
	}
	o.logger.Info("payment succeeded",
		zap.String("order_id", order.ID),
		zap.String("payment_id", settled.ID),
		zap.String("method", string(settled.Method)))
	return Result{State: *state, Payment: &settled}, nil
}

func (o *Orchestrator) fail(ctx context.Context, orderID string, method domain.PaymentMethod, state *State, cause error) (Result, error) {
	*state = StateFailed
	// An expired session is an auth fault, not a payment outcome; it
	// never produces a payment-failed event.
	if !errors.Is(cause, backend.ErrSessionExpired) {
		if pubErr := o.events.PaymentFailed(ctx, orderID, method, cause.Error()); pubErr != nil {
			o.logger.Warn("failed to publish payment failure", zap.Error(pubErr))
		}
	}
	o.logger.Warn("payment failed",
		zap.String("order_id", orderID),
		zap.String("method", string(method)),
		zap.Error(cause))
	return Result{State: StateFailed, FailureReason: cause.Error()}, cause
}

func (o *Orchestrator) begin(orderID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, running := o.active[orderID]; running {
		return ErrOrchestrationActive
	}
	o.active[orderID] = struct{}{}
	return nil
}

func (o *Orchestrator) end(orderID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, orderID)
}

func advance(state *State, to State) error {
	if !CanTransitionTo(*state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, *state, to)
	}
	*state = to
	return nil
}
