package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
)

func TestTransactionManager_ReadWriteCommit(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	tm := NewTransactionManager(mock, zerolog.Nop())

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err = tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		if _, ok := txFromContext(ctx); !ok {
			t.Fatalf("transaction not injected into context")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_ReadOnlyRollbackOnError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	tm := NewTransactionManager(mock, zerolog.Nop())

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectRollback()

	expectedErr := errors.New("usecase error")
	err = tm.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		if _, ok := txFromContext(ctx); !ok {
			t.Fatalf("transaction not injected into context")
		}
		return expectedErr
	})

	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected %v, got %v", expectedErr, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_NestedReuse(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	tm := NewTransactionManager(mock, zerolog.Nop())

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err = tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		return tm.WithinReadOnly(ctx, func(inner context.Context) error {
			if _, ok := txFromContext(inner); !ok {
				t.Fatalf("nested transaction lost context")
			}
			return nil
		})
	})

	if err != nil {
		t.Fatalf("nested transaction returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_CommitFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	tm := NewTransactionManager(mock, zerolog.Nop())

	commitErr := errors.New("serialization failure")
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit().WillReturnError(commitErr)

	err = tm.WithinReadWrite(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQueryerFromContext_FallsBackOutsideTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	if got := QueryerFromContext(context.Background(), mock); got != mock {
		t.Fatalf("expected fallback queryer")
	}
}

func TestNilTransactionManager_RunsInline(t *testing.T) {
	t.Parallel()

	var tm *TransactionManager
	called := false
	if err := tm.WithinReadWrite(context.Background(), func(context.Context) error {
		called = true
		return nil
	}); err != nil || !called {
		t.Fatalf("expected inline execution, called=%v err=%v", called, err)
	}
}
