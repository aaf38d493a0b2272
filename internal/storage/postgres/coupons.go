package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
)

type couponRepository struct {
	storage *Storage
}

const couponColumns = `id, code, kind, percent_off, minimum, starts_at, ends_at, active, created_at`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var (
		c       model.Coupon
		minimum decimal.NullDecimal
	)
	err := row.Scan(&c.ID, &c.Code, &c.Kind, &c.PercentOff, &minimum, &c.StartsAt, &c.EndsAt, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if minimum.Valid {
		c.Minimum = &minimum.Decimal
	}
	return &c, nil
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	const query = `INSERT INTO coupons (id, code, kind, percent_off, minimum, starts_at, ends_at, active)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`
	var minimum decimal.NullDecimal
	if coupon.Minimum != nil {
		minimum = decimal.NullDecimal{Decimal: *coupon.Minimum, Valid: true}
	}
	err := r.storage.pool.QueryRow(ctx, query,
		coupon.ID, coupon.Code, coupon.Kind, coupon.PercentOff,
		minimum, coupon.StartsAt, coupon.EndsAt, coupon.Active,
	).Scan(&coupon.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code=$1 AND active`
	coupon, err := scanCoupon(r.storage.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (r *couponRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM coupons WHERE code=$1)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *couponRepository) FirstTimer(ctx context.Context) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons
              WHERE kind=$1 AND active AND starts_at <= NOW() AND ends_at >= NOW()
              ORDER BY created_at DESC LIMIT 1`
	coupon, err := scanCoupon(r.storage.pool.QueryRow(ctx, query, model.CouponKindFirstTimer))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (r *couponRepository) BestByMinimum(ctx context.Context, subtotal decimal.Decimal) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons
              WHERE kind=$1 AND active AND starts_at <= NOW() AND ends_at >= NOW()
                AND minimum IS NOT NULL AND minimum <= $2
              ORDER BY minimum DESC LIMIT 1`
	coupon, err := scanCoupon(r.storage.pool.QueryRow(ctx, query, model.CouponKindRegular, subtotal))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (r *couponRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE coupons SET active=FALSE WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
