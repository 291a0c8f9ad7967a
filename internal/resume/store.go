// Package resume persists pending wallet-redirect payment attempts. The
// in-memory payment state machine does not survive the browser leaving
// for the provider; the attempt row, keyed by provider reference, is what
// lets the orchestrator pick the flow back up on return.
package resume

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

var ErrAttemptNotFound = errors.New("payment attempt not found")

type Attempt struct {
	ID          string
	OrderID     string
	ProviderRef string
	Method      domain.PaymentMethod
	AmountCents int64
	CreatedAt   time.Time
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, a Attempt) error {
	query := `
		INSERT INTO payment_attempts (id, order_id, provider_ref, method, amount_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.OrderID, a.ProviderRef, string(a.Method), a.AmountCents, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save payment attempt: %w", err)
	}
	return nil
}

func (s *Store) FindByProviderRef(ctx context.Context, providerRef string) (*Attempt, error) {
	query := `
		SELECT id, order_id, provider_ref, method, amount_cents, created_at
		FROM payment_attempts
		WHERE provider_ref = ?
	`
	var a Attempt
	var method string
	err := s.db.QueryRowContext(ctx, query, providerRef).Scan(
		&a.ID, &a.OrderID, &a.ProviderRef, &method, &a.AmountCents, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment attempt: %w", err)
	}
	a.Method = domain.PaymentMethod(method)
	return &a, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM payment_attempts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment attempt: %w", err)
	}
	return nil
}

// PurgeOlderThan removes abandoned attempts. An abandoned flow simply
// never reaches a terminal state; no cancel message goes to the provider.
func (s *Store) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM payment_attempts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge payment attempts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// PurgeLoop purges abandoned attempts on a timer until the context is
// cancelled. Meant to run in its own goroutine for the process lifetime.
func (s *Store) PurgeLoop(ctx context.Context, interval, age time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeOlderThan(ctx, age)
			if err != nil {
				logger.Warn("failed to purge abandoned payment attempts", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged abandoned payment attempts", zap.Int64("count", n))
			}
		}
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
