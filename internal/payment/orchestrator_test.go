package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/backend"
	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
	"github.com/Abdelhameed97/bookshare-sub001/internal/resume"
)

// --- fakes ---

type fakeLookup struct {
	existing *domain.Payment
	err      error
	block    chan struct{} // when set, PaymentByOrder waits until closed
	entered  chan struct{} // closed once a blocked call has started
	enterOne sync.Once
	calls    int
}

func (f *fakeLookup) PaymentByOrder(_ context.Context, _ string) (*domain.Payment, error) {
	if f.block != nil {
		if f.entered != nil {
			f.enterOne.Do(func() { close(f.entered) })
		}
		<-f.block
	}
	f.calls++
	return f.existing, f.err
}

type fakeAttempts struct {
	mu      sync.Mutex
	byRef   map[string]resume.Attempt
	saveErr error
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{byRef: make(map[string]resume.Attempt)}
}

func (f *fakeAttempts) Save(_ context.Context, a resume.Attempt) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byRef[a.ProviderRef] = a
	return nil
}

func (f *fakeAttempts) FindByProviderRef(_ context.Context, ref string) (*resume.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byRef[ref]
	if !ok {
		return nil, resume.ErrAttemptNotFound
	}
	return &a, nil
}

func (f *fakeAttempts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ref, a := range f.byRef {
		if a.ID == id {
			delete(f.byRef, ref)
		}
	}
	return nil
}

type fakeEvents struct {
	mu        sync.Mutex
	completed []domain.Payment
	failed    []string
}

func (f *fakeEvents) CheckoutCompleted(_ context.Context, p domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, p)
	return nil
}

func (f *fakeEvents) PaymentFailed(_ context.Context, _ string, _ domain.PaymentMethod, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, reason)
	return nil
}

type fakeCardBackend struct {
	intent      domain.PaymentIntent
	intentErr   error
	intentCalls int
	confirmed   domain.Payment
	confirmErr  error
}

func (f *fakeCardBackend) CreateStripeIntent(_ context.Context, _ string) (domain.PaymentIntent, error) {
	f.intentCalls++
	return f.intent, f.intentErr
}

func (f *fakeCardBackend) ConfirmStripePayment(_ context.Context, _ string) (domain.Payment, error) {
	return f.confirmed, f.confirmErr
}

type fakeConfirmer struct {
	err error
}

func (f *fakeConfirmer) ConfirmCardPayment(_ context.Context, _ string, _ CardDetails) error {
	return f.err
}

type fakeWalletBackend struct {
	redirect    domain.WalletRedirect
	intentCalls int
	settled     domain.Payment
	confirmErr  error
}

func (f *fakeWalletBackend) CreatePaypalIntent(_ context.Context, _ string) (domain.WalletRedirect, error) {
	f.intentCalls++
	return f.redirect, nil
}

func (f *fakeWalletBackend) ConfirmPaypalPayment(_ context.Context, _ string) (domain.Payment, error) {
	return f.settled, f.confirmErr
}

type fakeCashBackend struct {
	created domain.Payment
	err     error
	calls   int
}

func (f *fakeCashBackend) CreatePayment(_ context.Context, orderID string, method domain.PaymentMethod, amount float64) (domain.Payment, error) {
	f.calls++
	if f.err != nil {
		return domain.Payment{}, f.err
	}
	return f.created, nil
}

// --- helpers ---

func testOrder() domain.Order {
	return domain.Order{
		ID:     "ord-1",
		Status: domain.OrderStatusPending,
		Total:  money.FromFloat(180),
	}
}

func newTestOrchestrator(lookup *fakeLookup) (*Orchestrator, *fakeAttempts, *fakeEvents) {
	attempts := newFakeAttempts()
	events := &fakeEvents{}
	return NewOrchestrator(lookup, attempts, events, zap.NewNop()), attempts, events
}

// --- card ---

func TestPay_CardHappyPath(t *testing.T) {
	api := &fakeCardBackend{
		intent:    domain.PaymentIntent{ClientSecret: "cs_1", PaymentID: "pi_1"},
		confirmed: domain.Payment{ID: "pay-1", OrderID: "ord-1", Method: domain.PaymentMethodCard, Status: domain.PaymentStatusPaid},
	}
	adapter := NewCardAdapter(api, &fakeConfirmer{})
	orch, _, events := newTestOrchestrator(&fakeLookup{})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{Name: "Reader"})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	require.NotNil(t, result.Payment)
	assert.Equal(t, domain.PaymentStatusPaid, result.Payment.Status)
	assert.Len(t, events.completed, 1)
}

func TestPay_CardDeclineSurfacedVerbatim(t *testing.T) {
	api := &fakeCardBackend{intent: domain.PaymentIntent{ClientSecret: "cs_1", PaymentID: "pi_1"}}
	adapter := NewCardAdapter(api, &fakeConfirmer{err: &ProviderError{Reason: "card_declined"}})
	orch, _, events := newTestOrchestrator(&fakeLookup{})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "card_declined", provErr.Reason)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "card_declined", result.FailureReason)
	assert.Nil(t, result.Payment)
	require.Len(t, events.failed, 1)
	assert.Equal(t, "card_declined", events.failed[0])
	assert.Empty(t, events.completed)
}

func TestPay_CardBackendConfirmFailure(t *testing.T) {
	api := &fakeCardBackend{
		intent:     domain.PaymentIntent{ClientSecret: "cs_1", PaymentID: "pi_1"},
		confirmErr: errors.New("backend unavailable"),
	}
	adapter := NewCardAdapter(api, &fakeConfirmer{})
	orch, _, _ := newTestOrchestrator(&fakeLookup{})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.Error(t, err)
	// provider success alone is never terminal success
	assert.Equal(t, StateFailed, result.State)
}

func TestPay_SessionExpiredPublishesNoFailureEvent(t *testing.T) {
	api := &fakeCardBackend{intent: domain.PaymentIntent{ClientSecret: "cs_1", PaymentID: "pi_1"}}
	adapter := NewCardAdapter(api, &fakeConfirmer{})
	lookup := &fakeLookup{err: fmt.Errorf("failed to check existing payment: %w", backend.ErrSessionExpired)}
	orch, _, events := newTestOrchestrator(lookup)

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrSessionExpired)
	assert.Equal(t, StateFailed, result.State)
	// an auth fault is not a payment outcome
	assert.Empty(t, events.failed)
	assert.Empty(t, events.completed)
}

// --- already-paid guard ---

func TestPay_AlreadyPaidShortCircuitsBeforeIntent(t *testing.T) {
	existing := &domain.Payment{ID: "pay-0", OrderID: "ord-1", Status: domain.PaymentStatusPaid}
	api := &fakeCardBackend{intent: domain.PaymentIntent{ClientSecret: "cs_1"}}
	adapter := NewCardAdapter(api, &fakeConfirmer{})
	orch, _, _ := newTestOrchestrator(&fakeLookup{existing: existing})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)
	assert.Equal(t, StateAlreadyPaid, result.State)
	assert.Equal(t, "pay-0", result.Payment.ID)
	assert.Equal(t, 0, api.intentCalls)
}

func TestPay_PendingPaymentAlsoBlocksNewIntent(t *testing.T) {
	existing := &domain.Payment{ID: "pay-0", Status: domain.PaymentStatusPending}
	api := &fakeCardBackend{}
	adapter := NewCardAdapter(api, &fakeConfirmer{})
	orch, _, _ := newTestOrchestrator(&fakeLookup{existing: existing})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)
	assert.Equal(t, StateAlreadyPaid, result.State)
	assert.Equal(t, 0, api.intentCalls)
}

func TestPay_FailedPaymentMayBeSuperseded(t *testing.T) {
	existing := &domain.Payment{ID: "pay-0", Status: domain.PaymentStatusFailed}
	api := &fakeCardBackend{
		intent:    domain.PaymentIntent{ClientSecret: "cs_1", PaymentID: "pi_1"},
		confirmed: domain.Payment{ID: "pay-1", Status: domain.PaymentStatusPaid},
	}
	adapter := NewCardAdapter(api, &fakeConfirmer{})
	orch, _, _ := newTestOrchestrator(&fakeLookup{existing: existing})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 1, api.intentCalls)
}

// --- cash ---

func TestPay_CashSkipsIntentAndSucceeds(t *testing.T) {
	api := &fakeCashBackend{
		created: domain.Payment{ID: "pay-1", OrderID: "ord-1", Method: domain.PaymentMethodCash, Status: domain.PaymentStatusPending},
	}
	adapter := NewCashAdapter(api)
	orch, _, events := newTestOrchestrator(&fakeLookup{})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	// cash is recorded pending, reconciled on delivery
	assert.Equal(t, domain.PaymentStatusPending, result.Payment.Status)
	assert.Equal(t, 1, api.calls)
	assert.Len(t, events.completed, 1)
}

func TestPay_CashBackendFailure(t *testing.T) {
	api := &fakeCashBackend{err: errors.New("payments endpoint down")}
	orch, _, _ := newTestOrchestrator(&fakeLookup{})

	result, err := orch.Pay(context.Background(), testOrder(), NewCashAdapter(api), CardDetails{})
	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)
}

// --- wallet ---

func TestPay_WalletSuspendsAtRedirect(t *testing.T) {
	api := &fakeWalletBackend{
		redirect: domain.WalletRedirect{ProviderRef: "PAYID-1", RedirectURL: "https://wallet.example/approve"},
	}
	adapter := NewWalletAdapter(api)
	orch, attempts, events := newTestOrchestrator(&fakeLookup{})

	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)
	assert.Equal(t, StateProviderConfirming, result.State)
	assert.Equal(t, "https://wallet.example/approve", result.RedirectURL)
	assert.Equal(t, "PAYID-1", result.ProviderRef)
	assert.Nil(t, result.Payment)

	saved, findErr := attempts.FindByProviderRef(context.Background(), "PAYID-1")
	require.NoError(t, findErr)
	assert.Equal(t, "ord-1", saved.OrderID)
	assert.Equal(t, int64(18000), saved.AmountCents)
	assert.Empty(t, events.completed)
}

func TestResume_WalletCompletes(t *testing.T) {
	api := &fakeWalletBackend{
		redirect: domain.WalletRedirect{ProviderRef: "PAYID-1", RedirectURL: "https://wallet.example/approve"},
		settled:  domain.Payment{ID: "pay-1", OrderID: "ord-1", Method: domain.PaymentMethodWallet, Status: domain.PaymentStatusPaid},
	}
	adapter := NewWalletAdapter(api)
	orch, attempts, events := newTestOrchestrator(&fakeLookup{})

	_, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)

	result, err := orch.Resume(context.Background(), "PAYID-1", adapter)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	assert.Len(t, events.completed, 1)

	// attempt is gone once settled
	_, findErr := attempts.FindByProviderRef(context.Background(), "PAYID-1")
	assert.ErrorIs(t, findErr, resume.ErrAttemptNotFound)
}

func TestResume_UnknownProviderRef(t *testing.T) {
	adapter := NewWalletAdapter(&fakeWalletBackend{})
	orch, _, _ := newTestOrchestrator(&fakeLookup{})

	_, err := orch.Resume(context.Background(), "PAYID-missing", adapter)
	assert.ErrorIs(t, err, ErrUnknownAttempt)
}

func TestResume_BackendFailureKeepsAttempt(t *testing.T) {
	api := &fakeWalletBackend{
		redirect:   domain.WalletRedirect{ProviderRef: "PAYID-1", RedirectURL: "https://wallet.example/approve"},
		confirmErr: errors.New("wallet cancelled by user"),
	}
	adapter := NewWalletAdapter(api)
	orch, attempts, _ := newTestOrchestrator(&fakeLookup{})

	_, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)

	result, err := orch.Resume(context.Background(), "PAYID-1", adapter)
	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)

	// a fresh resume is still possible; the attempt survives failure
	_, findErr := attempts.FindByProviderRef(context.Background(), "PAYID-1")
	assert.NoError(t, findErr)
}

// --- concurrency guard ---

func TestPay_SecondRunForSameOrderRejected(t *testing.T) {
	lookup := &fakeLookup{block: make(chan struct{}), entered: make(chan struct{})}
	api := &fakeCardBackend{
		intent:    domain.PaymentIntent{ClientSecret: "cs_1", PaymentID: "pi_1"},
		confirmed: domain.Payment{ID: "pay-1", Status: domain.PaymentStatusPaid},
	}
	adapter := NewCardAdapter(api, &fakeConfirmer{})
	orch, _, _ := newTestOrchestrator(lookup)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	}()
	<-lookup.entered

	// second run for the same order while the first is in flight
	_, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	assert.ErrorIs(t, err, ErrOrchestrationActive)

	close(lookup.block)
	<-done

	// once the first run finished, the guard is released
	lookup.block = nil
	lookup.existing = &domain.Payment{ID: "pay-1", Status: domain.PaymentStatusPaid}
	result, err := orch.Pay(context.Background(), testOrder(), adapter, CardDetails{})
	require.NoError(t, err)
	assert.Equal(t, StateAlreadyPaid, result.State)
}
