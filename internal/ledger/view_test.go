package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

type fakeBackend struct {
	entries []domain.LedgerEntry
	err     error
	calls   int
}

func (f *fakeBackend) MyPayments(_ context.Context) ([]domain.LedgerEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func entry(id string, method domain.PaymentMethod, status domain.PaymentStatus, amount float64) domain.LedgerEntry {
	return domain.LedgerEntry{
		Payment: domain.Payment{
			ID:      id,
			OrderID: "ord-" + id,
			Method:  method,
			Status:  status,
			Amount:  money.FromFloat(amount),
		},
		Order: domain.LedgerOrder{ID: "ord-" + id, Status: domain.OrderStatusPending, Total: money.FromFloat(amount)},
	}
}

func testEntries() []domain.LedgerEntry {
	return []domain.LedgerEntry{
		entry("p1", domain.PaymentMethodCard, domain.PaymentStatusPaid, 100),
		entry("p2", domain.PaymentMethodCash, domain.PaymentStatusPending, 40),
		entry("p3", domain.PaymentMethodCard, domain.PaymentStatusFailed, 60),
		entry("p4", domain.PaymentMethodWallet, domain.PaymentStatusPaid, 25.50),
	}
}

func TestRefreshAndFilters(t *testing.T) {
	api := &fakeBackend{entries: testEntries()}
	view := NewView(api, zap.NewNop())

	assert.False(t, view.Loaded())
	require.NoError(t, view.Refresh(context.Background()))
	assert.True(t, view.Loaded())
	assert.Len(t, view.Entries(), 4)

	cards := view.ByMethod(domain.PaymentMethodCard)
	require.Len(t, cards, 2)

	paid := view.ByStatus(domain.PaymentStatusPaid)
	require.Len(t, paid, 2)
	assert.Equal(t, "p1", paid[0].ID)
}

func TestTotalByStatus(t *testing.T) {
	api := &fakeBackend{entries: testEntries()}
	view := NewView(api, zap.NewNop())
	require.NoError(t, view.Refresh(context.Background()))

	assert.Equal(t, "125.50", view.TotalByStatus(domain.PaymentStatusPaid).String())
	assert.Equal(t, "40.00", view.TotalByStatus(domain.PaymentStatusPending).String())
	assert.Equal(t, "0.00", view.TotalByStatus("unknown").String())
}

func TestRefresh_FailureKeepsPreviousEntries(t *testing.T) {
	api := &fakeBackend{entries: testEntries()}
	view := NewView(api, zap.NewNop())
	require.NoError(t, view.Refresh(context.Background()))

	api.err = errors.New("backend down")
	err := view.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, view.Entries(), 4)

	// a later retry of the same read succeeds
	api.err = nil
	api.entries = api.entries[:1]
	require.NoError(t, view.Refresh(context.Background()))
	assert.Len(t, view.Entries(), 1)
	assert.Equal(t, 3, api.calls)
}
