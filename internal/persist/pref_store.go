package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/trijam/forcerun/internal/prefs"
)

// PrefStore keeps preferences in the preferences table.
type PrefStore struct {
	db *DB
}

func NewPrefStore(db *DB) *PrefStore {
	return &PrefStore{db: db}
}

func (r *PrefStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT value FROM preferences WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", prefs.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load preference: %w", err)
	}
	return value, nil
}

func (r *PrefStore) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	return err
}

func (r *PrefStore) Delete(ctx context.Context, key string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM preferences WHERE key = $1`, key)
	return err
}

// Reset deletes every row in one transaction.
func (r *PrefStore) Reset(ctx context.Context) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reset begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM preferences`); err != nil {
		return fmt.Errorf("reset delete: %w", err)
	}
	return tx.Commit(ctx)
}

var _ prefs.Store = (*PrefStore)(nil)
