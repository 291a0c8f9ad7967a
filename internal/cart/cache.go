package cart

import (
	"context"
	"errors"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

type Cache interface {
	Get(ctx context.Context, userID string) ([]domain.CartItem, error)
	Set(ctx context.Context, userID string, items []domain.CartItem) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
