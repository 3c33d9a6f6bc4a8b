package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
)

// stateStore implements driven.StateStore over the local_state table.
type stateStore struct {
	store *Store
}

var _ driven.StateStore = (*stateStore)(nil)

// Get retrieves a state value by key.
func (s *stateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.db()
	if err != nil {
		return nil, false, err
	}

	var value string
	err = db.QueryRowContext(ctx, "SELECT value FROM local_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading state %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set stores or replaces a state value.
func (s *stateStore) Set(ctx context.Context, key string, value []byte) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO local_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving state %s: %w", key, err)
	}
	return nil
}

// Delete removes a state value.
func (s *stateStore) Delete(ctx context.Context, key string) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM local_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting state %s: %w", key, err)
	}
	return nil
}

// Clear removes all state values.
func (s *stateStore) Clear(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM local_state"); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	return nil
}

func (s *stateStore) db() (*sql.DB, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	if s.store.db == nil {
		return nil, fmt.Errorf("%w: store is not open", domain.ErrStorageUnavailable)
	}
	return s.store.db, nil
}
