package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docflow/internal/repository"
)

// TxManager implements repository.TxManager over database/sql.
// Each WithinTx call opens one transaction, hands the callback a Store whose
// repositories all run on that transaction, and commits only when the
// callback returns nil. Every other exit path rolls back.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

var _ repository.TxManager = (*TxManager)(nil)

// WithinTx runs fn inside a single transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(s *repository.Store) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	store := NewStore(tx)

	if err := runInTx(tx, store, fn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NewStore builds a Store whose repositories share the given Querier.
func NewStore(q repository.Querier) *repository.Store {
	return &repository.Store{
		Documents:     NewDocumentPostgres(q),
		Requests:      NewRequestPostgres(q),
		Notifications: NewNotificationPostgres(q),
		Users:         NewUserPostgres(q),
	}
}

// runInTx isolates the rollback paths: callback error and panic.
func runInTx(tx *sql.Tx, store *repository.Store, fn func(s *repository.Store) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(store); err != nil {
		_ = tx.Rollback()
		return err
	}
	return nil
}
