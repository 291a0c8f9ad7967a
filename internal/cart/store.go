// Package cart holds the single source of truth for the cart of the
// current identity. Items are fetched from the backend through a Redis
// read cache; callers read copies and never mutate the list directly.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

type Backend interface {
	GetCart(ctx context.Context) ([]domain.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID string, quantity int) (domain.CartItem, error)
	DeleteCartItem(ctx context.Context, itemID string) error
}

type Store struct {
	api    Backend
	cache  Cache
	logger *zap.Logger
	sfg    singleflight.Group // prevents cache stampede on load

	mu     sync.Mutex
	userID string
	items  []domain.CartItem
}

func NewStore(api Backend, cache Cache, logger *zap.Logger) *Store {
	return &Store{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// Load fetches the cart for the user. An absent user id is the guest
// state: an empty cart, not a failure. Items whose backing book no longer
// exists are dropped.
func (s *Store) Load(ctx context.Context, userID string) error {
	if userID == "" {
		s.mu.Lock()
		s.userID = ""
		s.items = nil
		s.mu.Unlock()
		return nil
	}

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		items, cacheErr := s.cache.Get(ctx, userID)
		if cacheErr == nil {
			return items, nil
		}
		if !errors.Is(cacheErr, ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.Error(cacheErr))
		}

		fetched, fetchErr := s.api.GetCart(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		kept := dropOrphans(fetched)

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if setErr := s.cache.Set(setCtx, userID, kept); setErr != nil {
				s.logger.Warn("cart cache set failed", zap.Error(setErr))
			}
		}()

		return kept, nil
	})
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	s.mu.Lock()
	s.userID = userID
	s.items = v.([]domain.CartItem)
	s.mu.Unlock()
	return nil
}

// SetQuantity updates one item's quantity remotely, then locally. The
// remote update happens first so a failure never leaves local state ahead
// of the server.
func (s *Store) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	updated, err := s.api.UpdateCartItem(ctx, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = updated.Quantity
			break
		}
	}
	userID := s.userID
	s.mu.Unlock()

	s.invalidate(userID)
	return nil
}

func (s *Store) Remove(ctx context.Context, itemID string) error {
	if err := s.api.DeleteCartItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	s.mu.Lock()
	s.removeLocked(itemID)
	userID := s.userID
	s.mu.Unlock()

	s.invalidate(userID)
	return nil
}

// Clear deletes every item. Deletions run concurrently; items whose
// deletion succeeded stay removed locally even when others fail, and any
// failure is reported as an overall failure.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.items))
	for _, it := range s.items {
		ids = append(ids, it.ID)
	}
	userID := s.userID
	s.mu.Unlock()

	var g errgroup.Group
	var removedMu sync.Mutex
	removed := make([]string, 0, len(ids))

	for _, id := range ids {
		itemID := id
		g.Go(func() error {
			if err := s.api.DeleteCartItem(ctx, itemID); err != nil {
				return fmt.Errorf("failed to delete item %s: %w", itemID, err)
			}
			removedMu.Lock()
			removed = append(removed, itemID)
			removedMu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	s.mu.Lock()
	for _, id := range removed {
		s.removeLocked(id)
	}
	s.mu.Unlock()

	s.invalidate(userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Items returns a copy; the store exclusively owns the underlying list.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Subtotal() money.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Subtotal(s.items)
}

func (s *Store) removeLocked(itemID string) {
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Store) invalidate(userID string) {
	if userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.Error(err))
	}
}

func dropOrphans(items []domain.CartItem) []domain.CartItem {
	kept := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.Orphaned() {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
