package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newMockStorage(t *testing.T) (*Storage, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	storage := &Storage{pool: mock, logger: logger}
	return storage, mock
}

func expectationsMet(t *testing.T, mock pgxmockv3.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

const schemaStatementCount = 23

func TestInitSchemaRunsAllStatements(t *testing.T) {
	storage, mock := newMockStorage(t)
	for i := 0; i < schemaStatementCount; i++ {
		mock.ExpectExec("CREATE").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	}

	if err := storage.initSchema(context.Background()); err != nil {
		t.Fatalf("init schema returned error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestInitSchemaPropagatesError(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS customers").WillReturnError(errors.New("boom"))

	if err := storage.initSchema(context.Background()); err == nil {
		t.Fatal("expected error from failing statement")
	}
}

func TestWithinTransaction(t *testing.T) {
	t.Run("commit on success", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		if err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("rollback on error", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		wantErr := errors.New("inner")
		if err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return wantErr }); err != wantErr {
			t.Fatalf("expected inner error, got %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("commit failure surfaces", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("commit fail"))

		if err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return nil }); err == nil {
			t.Fatal("expected commit error")
		}
	})

	t.Run("begin failure surfaces", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin().WillReturnError(errors.New("begin"))

		if err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return nil }); err == nil {
			t.Fatal("expected begin error")
		}
	})
}

func TestCustomerCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	createdAt := time.Now()
	mock.ExpectQuery("INSERT INTO customers").WithArgs("user", "hash").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt))

	customer, err := storage.Customers().Create(context.Background(), "user", "hash")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if customer.ID != 1 || customer.Login != "user" || customer.PasswordHash != "hash" {
		t.Fatalf("unexpected customer: %+v", customer)
	}
	expectationsMet(t, mock)
}

func TestCustomerCreateDuplicate(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectQuery("INSERT INTO customers").WithArgs("user", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := storage.Customers().Create(context.Background(), "user", "hash"); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCustomerGetByLogin(t *testing.T) {
	storage, mock := newMockStorage(t)
	createdAt := time.Now()
	mock.ExpectQuery("SELECT id, login, password_hash, created_at FROM customers WHERE login=").
		WithArgs("user").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "login", "password_hash", "created_at"}).
			AddRow(int64(1), "user", "hash", createdAt))

	customer, err := storage.Customers().GetByLogin(context.Background(), "user")
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if customer.ID != 1 {
		t.Fatalf("unexpected customer: %+v", customer)
	}
}

func TestCustomerGetByLoginNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectQuery("SELECT id, login, password_hash, created_at FROM customers WHERE login=").
		WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	if _, err := storage.Customers().GetByLogin(context.Background(), "missing"); err != domainErrors.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCustomerGetByIDNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectQuery("SELECT id, login, password_hash, created_at FROM customers WHERE id=").
		WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)

	if _, err := storage.Customers().GetByID(context.Background(), 2); err != domainErrors.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
