package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paperdesk/papermart/internal/domain/repository"
)

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pool
	logger *slog.Logger
}

// pool is the subset of pgxpool.Pool the storage uses; pgxmock implements
// the same surface.
type pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pgPool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pgPool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Customers() repository.CustomerRepository {
	return &customerRepository{storage: s}
}

func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{storage: s}
}

func (s *Storage) Coupons() repository.CouponRepository {
	return &couponRepository{storage: s}
}

func (s *Storage) Baskets() repository.BasketRepository {
	return &basketRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Payments() repository.PaymentRepository {
	return &paymentRepository{storage: s}
}

func (s *Storage) Subscriptions() repository.SubscriptionRepository {
	return &subscriptionRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS service_types (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            sort_order INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS turnarounds (
            id UUID PRIMARY KEY,
            value INT NOT NULL,
            unit TEXT NOT NULL,
            sort_order INT NOT NULL DEFAULT 0,
            UNIQUE (value, unit)
        )`,
		`CREATE TABLE IF NOT EXISTS levels (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            sort_order INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS tiers (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            sort_order INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS rate_rules (
            id UUID PRIMARY KEY,
            service_type_id UUID NOT NULL REFERENCES service_types(id) ON DELETE CASCADE,
            turnaround_id UUID NOT NULL REFERENCES turnarounds(id) ON DELETE CASCADE,
            level_id UUID REFERENCES levels(id) ON DELETE CASCADE,
            amount_per_page NUMERIC(15,2) NOT NULL
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_rate_rules_scope
            ON rate_rules(service_type_id, turnaround_id, level_id) WHERE level_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_rate_rules_wildcard
            ON rate_rules(service_type_id, turnaround_id) WHERE level_id IS NULL`,
		`CREATE TABLE IF NOT EXISTS tier_surcharges (
            id UUID PRIMARY KEY,
            rate_rule_id UUID NOT NULL REFERENCES rate_rules(id) ON DELETE CASCADE,
            tier_id UUID NOT NULL REFERENCES tiers(id) ON DELETE CASCADE,
            amount_per_page NUMERIC(15,2) NOT NULL DEFAULT 0,
            UNIQUE (rate_rule_id, tier_id)
        )`,
		`CREATE TABLE IF NOT EXISTS coupons (
            id UUID PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            kind TEXT NOT NULL,
            percent_off INT NOT NULL,
            minimum NUMERIC(15,2),
            starts_at TIMESTAMPTZ NOT NULL,
            ends_at TIMESTAMPTZ NOT NULL,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS baskets (
            id UUID PRIMARY KEY,
            owner_id BIGINT UNIQUE NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
            coupon_id UUID REFERENCES coupons(id) ON DELETE SET NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS basket_lines (
            id UUID PRIMARY KEY,
            basket_id UUID NOT NULL REFERENCES baskets(id) ON DELETE CASCADE,
            topic TEXT NOT NULL,
            service_type_id UUID NOT NULL REFERENCES service_types(id),
            turnaround_id UUID NOT NULL REFERENCES turnarounds(id),
            level_id UUID REFERENCES levels(id),
            tier_id UUID REFERENCES tiers(id),
            pages INT NOT NULL,
            quantity INT NOT NULL,
            references_count INT,
            comment TEXT NOT NULL DEFAULT '',
            page_price NUMERIC(15,2) NOT NULL,
            tier_surcharge NUMERIC(15,2)
        )`,
		`CREATE TABLE IF NOT EXISTS basket_attachments (
            id UUID PRIMARY KEY,
            line_id UUID NOT NULL REFERENCES basket_lines(id) ON DELETE CASCADE,
            file_name TEXT NOT NULL,
            storage_key TEXT NOT NULL,
            comment TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            owner_id BIGINT NOT NULL REFERENCES customers(id),
            status TEXT NOT NULL,
            coupon_code TEXT,
            coupon_discount NUMERIC(15,2),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_lines (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            topic TEXT NOT NULL,
            service_type TEXT NOT NULL,
            turnaround TEXT NOT NULL,
            level TEXT,
            tier TEXT,
            pages INT NOT NULL,
            quantity INT NOT NULL,
            references_count INT,
            comment TEXT NOT NULL DEFAULT '',
            page_price NUMERIC(15,2) NOT NULL,
            tier_surcharge NUMERIC(15,2),
            due_date TIMESTAMPTZ NOT NULL,
            status TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_attachments (
            id UUID PRIMARY KEY,
            line_id BIGINT NOT NULL REFERENCES order_lines(id) ON DELETE CASCADE,
            file_name TEXT NOT NULL,
            storage_key TEXT NOT NULL,
            comment TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
            id UUID PRIMARY KEY,
            status TEXT NOT NULL,
            is_on_trial BOOLEAN NOT NULL DEFAULT FALSE,
            start_time TIMESTAMPTZ NOT NULL,
            next_billing_time TIMESTAMPTZ NOT NULL,
            cancelled_at TIMESTAMPTZ,
            retired_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS gateway_links (
            id UUID PRIMARY KEY,
            target_kind TEXT NOT NULL,
            subscription_id UUID REFERENCES subscriptions(id) ON DELETE CASCADE,
            order_id BIGINT REFERENCES orders(id) ON DELETE CASCADE,
            gateway TEXT NOT NULL,
            external_id TEXT UNIQUE NOT NULL,
            plan_id TEXT NOT NULL DEFAULT '',
            plan_name TEXT,
            amount NUMERIC(15,2),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY,
            target_kind TEXT NOT NULL,
            order_id BIGINT REFERENCES orders(id) ON DELETE CASCADE,
            subscription_id UUID REFERENCES subscriptions(id) ON DELETE CASCADE,
            tx_ref TEXT,
            amount NUMERIC(15,2) NOT NULL,
            status TEXT NOT NULL,
            gateway TEXT NOT NULL,
            paid_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders(owner_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_subscription ON payments(subscription_id, created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_order_tx
            ON payments(order_id, tx_ref) WHERE order_id IS NOT NULL AND tx_ref IS NOT NULL`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
