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

type basketRepository struct {
	storage *Storage
}

func (r *basketRepository) GetOrCreate(ctx context.Context, ownerID int64) (*model.Basket, error) {
	const insert = `INSERT INTO baskets (id, owner_id) VALUES ($1, $2) ON CONFLICT (owner_id) DO NOTHING`
	if _, err := r.storage.pool.Exec(ctx, insert, uuid.New(), ownerID); err != nil {
		return nil, fmt.Errorf("create basket: %w", err)
	}
	return r.GetByOwner(ctx, ownerID)
}

func (r *basketRepository) GetByOwner(ctx context.Context, ownerID int64) (*model.Basket, error) {
	const query = `SELECT id, owner_id, coupon_id, created_at FROM baskets WHERE owner_id=$1`
	var (
		basket   model.Basket
		couponID *uuid.UUID
	)
	err := r.storage.pool.QueryRow(ctx, query, ownerID).Scan(&basket.ID, &basket.OwnerID, &couponID, &basket.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	if couponID != nil {
		couponQuery := `SELECT ` + couponColumns + ` FROM coupons WHERE id=$1`
		coupon, err := scanCoupon(r.storage.pool.QueryRow(ctx, couponQuery, *couponID))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		basket.Coupon = coupon
	}

	lines, err := r.loadLines(ctx, basket.ID)
	if err != nil {
		return nil, err
	}
	basket.Lines = lines
	return &basket, nil
}

func (r *basketRepository) loadLines(ctx context.Context, basketID uuid.UUID) ([]model.BasketLine, error) {
	const query = `
        SELECT bl.id, bl.basket_id, bl.topic,
               st.id, st.name, st.sort_order,
               ta.id, ta.value, ta.unit, ta.sort_order,
               lv.id, lv.name, lv.sort_order,
               ti.id, ti.name, ti.description, ti.sort_order,
               bl.pages, bl.quantity, bl.references_count, bl.comment,
               bl.page_price, bl.tier_surcharge
        FROM basket_lines bl
        JOIN service_types st ON st.id = bl.service_type_id
        JOIN turnarounds ta ON ta.id = bl.turnaround_id
        LEFT JOIN levels lv ON lv.id = bl.level_id
        LEFT JOIN tiers ti ON ti.id = bl.tier_id
        WHERE bl.basket_id=$1
        ORDER BY bl.id`
	rows, err := r.storage.pool.Query(ctx, query, basketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []model.BasketLine
	for rows.Next() {
		var (
			line      model.BasketLine
			levelID   *uuid.UUID
			levelName *string
			levelSort *int
			tierID    *uuid.UUID
			tierName  *string
			tierDesc  *string
			tierSort  *int
			surcharge decimal.NullDecimal
		)
		err := rows.Scan(
			&line.ID, &line.BasketID, &line.Topic,
			&line.ServiceType.ID, &line.ServiceType.Name, &line.ServiceType.SortOrder,
			&line.Turnaround.ID, &line.Turnaround.Value, &line.Turnaround.Unit, &line.Turnaround.SortOrder,
			&levelID, &levelName, &levelSort,
			&tierID, &tierName, &tierDesc, &tierSort,
			&line.Pages, &line.Quantity, &line.References, &line.Comment,
			&line.PagePrice, &surcharge,
		)
		if err != nil {
			return nil, err
		}
		if levelID != nil {
			line.Level = &model.Level{ID: *levelID, Name: *levelName, SortOrder: *levelSort}
		}
		if tierID != nil {
			line.Tier = &model.Tier{ID: *tierID, Name: *tierName, Description: *tierDesc, SortOrder: *tierSort}
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

func (r *basketRepository) loadAttachments(ctx context.Context, lineID uuid.UUID) ([]model.Attachment, error) {
	const query = `SELECT id, file_name, storage_key, comment FROM basket_attachments WHERE line_id=$1 ORDER BY id`
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

func (r *basketRepository) UpsertLine(ctx context.Context, basketID uuid.UUID, line *model.BasketLine) (*model.BasketLine, error) {
	const query = `
        INSERT INTO basket_lines (id, basket_id, topic, service_type_id, turnaround_id, level_id, tier_id,
                                  pages, quantity, references_count, comment, page_price, tier_surcharge)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE SET
            topic=EXCLUDED.topic,
            service_type_id=EXCLUDED.service_type_id,
            turnaround_id=EXCLUDED.turnaround_id,
            level_id=EXCLUDED.level_id,
            tier_id=EXCLUDED.tier_id,
            pages=EXCLUDED.pages,
            quantity=EXCLUDED.quantity,
            references_count=EXCLUDED.references_count,
            comment=EXCLUDED.comment,
            page_price=EXCLUDED.page_price,
            tier_surcharge=EXCLUDED.tier_surcharge`
	var (
		levelID   *uuid.UUID
		tierID    *uuid.UUID
		surcharge decimal.NullDecimal
	)
	if line.Level != nil {
		levelID = &line.Level.ID
	}
	if line.Tier != nil {
		tierID = &line.Tier.ID
	}
	if line.TierSurcharge != nil {
		surcharge = decimal.NullDecimal{Decimal: *line.TierSurcharge, Valid: true}
	}
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	line.BasketID = basketID

	_, err := r.storage.pool.Exec(ctx, query,
		line.ID, basketID, line.Topic, line.ServiceType.ID, line.Turnaround.ID, levelID, tierID,
		line.Pages, line.Quantity, line.References, line.Comment, line.PagePrice, surcharge,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert basket line: %w", err)
	}
	return line, nil
}

func (r *basketRepository) RemoveLine(ctx context.Context, basketID, lineID uuid.UUID) error {
	const query = `DELETE FROM basket_lines WHERE id=$1 AND basket_id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, lineID, basketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *basketRepository) Clear(ctx context.Context, basketID uuid.UUID) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM basket_lines WHERE basket_id=$1`, basketID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE baskets SET coupon_id=NULL WHERE id=$1`, basketID)
		return err
	})
}

func (r *basketRepository) AttachCoupon(ctx context.Context, basketID uuid.UUID, couponID *uuid.UUID) error {
	const query = `UPDATE baskets SET coupon_id=$2 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, basketID, couponID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *basketRepository) AddAttachment(ctx context.Context, lineID uuid.UUID, attachment *model.Attachment) error {
	const query = `INSERT INTO basket_attachments (id, line_id, file_name, storage_key, comment)
                   VALUES ($1, $2, $3, $4, $5)`
	if attachment.ID == uuid.Nil {
		attachment.ID = uuid.New()
	}
	_, err := r.storage.pool.Exec(ctx, query, attachment.ID, lineID, attachment.FileName, attachment.StorageKey, attachment.Comment)
	return err
}
