package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

type fakeBackend struct {
	mu        sync.Mutex
	items     []domain.CartItem
	getCalls  int
	updateErr error
	deleteErr map[string]error
	deleted   []string
}

func (f *fakeBackend) GetCart(_ context.Context) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	return f.items, nil
}

func (f *fakeBackend) UpdateCartItem(_ context.Context, itemID string, quantity int) (domain.CartItem, error) {
	if f.updateErr != nil {
		return domain.CartItem{}, f.updateErr
	}
	return domain.CartItem{ID: itemID, Quantity: quantity}, nil
}

func (f *fakeBackend) DeleteCartItem(_ context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[itemID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, itemID)
	return nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]domain.CartItem, error) { return nil, ErrCacheMiss }
func (noopCache) Set(context.Context, string, []domain.CartItem) error  { return nil }
func (noopCache) Delete(context.Context, string) error                  { return nil }

func item(id string, price float64, qty int) domain.CartItem {
	return domain.CartItem{
		ID:        id,
		BookID:    "book-" + id,
		UnitPrice: money.FromFloat(price),
		Quantity:  qty,
		Book:      domain.BookSnapshot{Title: "title-" + id},
	}
}

func newTestStore(api *fakeBackend) *Store {
	return NewStore(api, noopCache{}, zap.NewNop())
}

func TestLoad_GuestYieldsEmptyCart(t *testing.T) {
	api := &fakeBackend{items: []domain.CartItem{item("i1", 10, 1)}}
	store := newTestStore(api)

	err := store.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, store.Items())
	assert.Equal(t, 0, api.getCalls)
}

func TestLoad_DropsOrphanedItems(t *testing.T) {
	orphan := domain.CartItem{ID: "i2", Quantity: 1} // book no longer exists
	api := &fakeBackend{items: []domain.CartItem{item("i1", 10, 1), orphan}}
	store := newTestStore(api)

	require.NoError(t, store.Load(context.Background(), "user-1"))
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "i1", items[0].ID)
}

func TestSubtotal_InvariantUnderReordering(t *testing.T) {
	a := []domain.CartItem{item("i1", 100, 2), item("i2", 50, 1), item("i3", 19.99, 3)}
	b := []domain.CartItem{a[2], a[0], a[1]}

	assert.True(t, domain.Subtotal(a).Equal(domain.Subtotal(b)))
	assert.Equal(t, "309.97", domain.Subtotal(a).String())
}

func TestSetQuantity_RejectsNonPositive(t *testing.T) {
	api := &fakeBackend{items: []domain.CartItem{item("i1", 10, 2)}}
	store := newTestStore(api)
	require.NoError(t, store.Load(context.Background(), "user-1"))

	for _, qty := range []int{0, -1} {
		err := store.SetQuantity(context.Background(), "i1", qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	// item unchanged
	assert.Equal(t, 2, store.Items()[0].Quantity)
}

func TestSetQuantity_UpdatesLocalOnSuccess(t *testing.T) {
	api := &fakeBackend{items: []domain.CartItem{item("i1", 10, 2)}}
	store := newTestStore(api)
	require.NoError(t, store.Load(context.Background(), "user-1"))

	require.NoError(t, store.SetQuantity(context.Background(), "i1", 5))
	assert.Equal(t, 5, store.Items()[0].Quantity)
}

func TestSetQuantity_RemoteFailureLeavesLocalUntouched(t *testing.T) {
	api := &fakeBackend{
		items:     []domain.CartItem{item("i1", 10, 2)},
		updateErr: errors.New("network down"),
	}
	store := newTestStore(api)
	require.NoError(t, store.Load(context.Background(), "user-1"))

	err := store.SetQuantity(context.Background(), "i1", 5)
	require.Error(t, err)
	assert.Equal(t, 2, store.Items()[0].Quantity)
}

func TestRemove_FailureIsNotReflectedLocally(t *testing.T) {
	api := &fakeBackend{
		items:     []domain.CartItem{item("i1", 10, 1)},
		deleteErr: map[string]error{"i1": errors.New("boom")},
	}
	store := newTestStore(api)
	require.NoError(t, store.Load(context.Background(), "user-1"))

	require.Error(t, store.Remove(context.Background(), "i1"))
	assert.Len(t, store.Items(), 1)
}

func TestClear_PartialFailure(t *testing.T) {
	api := &fakeBackend{
		items: []domain.CartItem{
			item("i1", 10, 1),
			item("i2", 20, 1),
			item("i3", 30, 1),
		},
		deleteErr: map[string]error{"i2": errors.New("remote delete failed")},
	}
	store := newTestStore(api)
	require.NoError(t, store.Load(context.Background(), "user-1"))

	err := store.Clear(context.Background())
	require.Error(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "i2", items[0].ID)
}

func TestClear_AllSucceed(t *testing.T) {
	api := &fakeBackend{
		items: []domain.CartItem{item("i1", 10, 1), item("i2", 20, 1)},
	}
	store := newTestStore(api)
	require.NoError(t, store.Load(context.Background(), "user-1"))

	require.NoError(t, store.Clear(context.Background()))
	assert.Empty(t, store.Items())
	assert.Len(t, api.deleted, 2)
}
