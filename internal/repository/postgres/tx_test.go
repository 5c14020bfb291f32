package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/model"
	"docflow/internal/repository"
)

func TestTxManager_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents SET status").
		WithArgs(model.DocumentStatusPendingDelete, "doc-1", model.DocumentStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewTxManager(db)
	err = m.WithinTx(context.Background(), func(s *repository.Store) error {
		matched, err := s.Documents.UpdateStatus(context.Background(), "doc-1", model.DocumentStatusActive, model.DocumentStatusPendingDelete)
		require.NoError(t, err)
		require.True(t, matched)
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewTxManager(db)
	wantErr := errors.New("document not active")
	err = m.WithinTx(context.Background(), func(s *repository.Store) error {
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewTxManager(db)
	assert.Panics(t, func() {
		_ = m.WithinTx(context.Background(), func(s *repository.Store) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	m := NewTxManager(db)
	err = m.WithinTx(context.Background(), func(s *repository.Store) error {
		t.Fatal("callback must not run when begin fails")
		return nil
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}
