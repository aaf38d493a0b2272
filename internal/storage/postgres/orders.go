package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

func (r *orderRepository) CreateFromBasket(ctx context.Context, basketID uuid.UUID, order *model.Order) (*model.Order, error) {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var (
			couponCode     *string
			couponDiscount decimal.NullDecimal
		)
		if order.Coupon != nil {
			couponCode = &order.Coupon.Code
			couponDiscount = decimal.NullDecimal{Decimal: order.Coupon.Discount, Valid: true}
		}

		const insertOrder = `INSERT INTO orders (owner_id, status, coupon_code, coupon_discount)
                             VALUES ($1, $2, $3, $4) RETURNING id, created_at`
		err := tx.QueryRow(ctx, insertOrder, order.OwnerID, order.Status, couponCode, couponDiscount).
			Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		const insertLine = `
            INSERT INTO order_lines (order_id, topic, service_type, turnaround, level, tier,
                                     pages, quantity, references_count, comment, page_price, tier_surcharge,
                                     due_date, status)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
		const insertAttachment = `INSERT INTO order_attachments (id, line_id, file_name, storage_key, comment)
                                  VALUES ($1, $2, $3, $4, $5)`
		for i := range order.Lines {
			line := &order.Lines[i]
			line.OrderID = order.ID
			var surcharge decimal.NullDecimal
			if line.TierSurcharge != nil {
				surcharge = decimal.NullDecimal{Decimal: *line.TierSurcharge, Valid: true}
			}
			err := tx.QueryRow(ctx, insertLine,
				order.ID, line.Topic, line.ServiceType, line.Turnaround, line.Level, line.Tier,
				line.Pages, line.Quantity, line.References, line.Comment, line.PagePrice, surcharge,
				line.DueDate, line.Status,
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
			for _, a := range line.Attachments {
				id := uuid.New()
				if _, err := tx.Exec(ctx, insertAttachment, id, line.ID, a.FileName, a.StorageKey, a.Comment); err != nil {
					return fmt.Errorf("copy attachment: %w", err)
				}
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM baskets WHERE id=$1`, basketID)
		if err != nil {
			return fmt.Errorf("consume basket: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT id, owner_id, status, coupon_code, coupon_discount, created_at FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

func (r *orderRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error) {
	const query = `SELECT id, owner_id, status, coupon_code, coupon_discount, created_at
                   FROM orders WHERE owner_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *orderRepository) HasPaidOrders(ctx context.Context, ownerID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM orders WHERE owner_id=$1 AND status=$2)`
	var exists bool
	err := r.storage.pool.QueryRow(ctx, query, ownerID, model.OrderStatusPaid).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		order          model.Order
		couponCode     *string
		couponDiscount decimal.NullDecimal
	)
	err := row.Scan(&order.ID, &order.OwnerID, &order.Status, &couponCode, &couponDiscount, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	if couponCode != nil {
		order.Coupon = &model.OrderCoupon{Code: *couponCode, Discount: couponDiscount.Decimal}
	}
	return &order, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	const query = `SELECT id, order_id, topic, service_type, turnaround, level, tier,
                          pages, quantity, references_count, comment, page_price, tier_surcharge,
                          due_date, status
                   FROM order_lines WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var (
			line      model.OrderLine
			surcharge decimal.NullDecimal
		)
		err := rows.Scan(&line.ID, &line.OrderID, &line.Topic, &line.ServiceType, &line.Turnaround,
			&line.Level, &line.Tier, &line.Pages, &line.Quantity, &line.References, &line.Comment,
			&line.PagePrice, &surcharge, &line.DueDate, &line.Status)
		if err != nil {
			return nil, err
		}
		if surcharge.Valid {
			line.TierSurcharge = &surcharge.Decimal
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lines {
		attachments, err := r.loadAttachments(ctx, lines[i].ID)
		if err != nil {
			return nil, err
		}
		lines[i].Attachments = attachments
	}
	return lines, nil
}

func (r *orderRepository) loadAttachments(ctx context.Context, lineID int64) ([]model.Attachment, error) {
	const query = `SELECT id, file_name, storage_key, comment FROM order_attachments WHERE line_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, lineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.ID, &a.FileName, &a.StorageKey, &a.Comment); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
