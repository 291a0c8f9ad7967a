// Package ledger is the read-only view over a user's historical payments
// and their linked order status. It never mutates anything; Refresh
// re-issues the same read and is therefore always safe to retry.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

type Backend interface {
	MyPayments(ctx context.Context) ([]domain.LedgerEntry, error)
}

type View struct {
	api    Backend
	logger *zap.Logger

	mu      sync.Mutex
	entries []domain.LedgerEntry
	loaded  bool
}

func NewView(api Backend, logger *zap.Logger) *View {
	return &View{api: api, logger: logger}
}

// Refresh replaces the cached entries with a fresh read. On failure the
// previous entries are kept, so the caller can show stale data alongside
// a retry action.
func (v *View) Refresh(ctx context.Context) error {
	entries, err := v.api.MyPayments(ctx)
	if err != nil {
		v.logger.Warn("failed to refresh payments ledger", zap.Error(err))
		return fmt.Errorf("failed to load payments: %w", err)
	}

	v.mu.Lock()
	v.entries = entries
	v.loaded = true
	v.mu.Unlock()
	return nil
}

func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Entries returns a copy of all entries.
func (v *View) Entries() []domain.LedgerEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.LedgerEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

func (v *View) ByMethod(method domain.PaymentMethod) []domain.LedgerEntry {
	return v.filter(func(e domain.LedgerEntry) bool { return e.Method == method })
}

func (v *View) ByStatus(status domain.PaymentStatus) []domain.LedgerEntry {
	return v.filter(func(e domain.LedgerEntry) bool { return e.Status == status })
}

// TotalByStatus sums payment amounts in one status.
func (v *View) TotalByStatus(status domain.PaymentStatus) money.Money {
	v.mu.Lock()
	defer v.mu.Unlock()
	total := money.Zero()
	for _, e := range v.entries {
		if e.Status == status {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func (v *View) filter(keep func(domain.LedgerEntry) bool) []domain.LedgerEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range v.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
