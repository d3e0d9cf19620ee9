package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const orderViewColumns = `session_id, order_id, status, payment_method, is_paid, total_price::text, updated_at`

func scanOrderView(row pgx.Row) (model.OrderView, error) {
	var (
		v             model.OrderView
		status        string
		paymentMethod string
		total         string
	)
	if err := row.Scan(&v.SessionID, &v.OrderID, &status, &paymentMethod, &v.IsPaid, &total, &v.UpdatedAt); err != nil {
		return model.OrderView{}, err
	}
	price, err := decimal.NewFromString(total)
	if err != nil {
		return model.OrderView{}, fmt.Errorf("order %s total price: %w", v.OrderID, err)
	}
	v.Status = model.OrderStatus(status)
	v.PaymentMethod = model.PaymentMethod(paymentMethod)
	v.TotalPrice = price
	return v, nil
}

func collectOrderViews(rows pgx.Rows) ([]model.OrderView, error) {
	defer rows.Close()

	var result []model.OrderView
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert writes the server value unconditionally; the last write wins.
func (r *orderViewRepository) Upsert(ctx context.Context, views ...model.OrderView) error {
	if len(views) == 0 {
		return nil
	}
	const query = `INSERT INTO order_views (session_id, order_id, status, payment_method, is_paid, total_price, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, NOW())
                   ON CONFLICT (session_id, order_id) DO UPDATE
                   SET status = EXCLUDED.status,
                       payment_method = EXCLUDED.payment_method,
                       is_paid = EXCLUDED.is_paid,
                       total_price = EXCLUDED.total_price,
                       updated_at = NOW()`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, v := range views {
			if _, err := tx.Exec(ctx, query, v.SessionID, v.OrderID, string(v.Status),
				string(v.PaymentMethod), v.IsPaid, v.TotalPrice.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderViewRepository) Get(ctx context.Context, sessionID, orderID string) (*model.OrderView, error) {
	query := `SELECT ` + orderViewColumns + ` FROM order_views WHERE session_id=$1 AND order_id=$2`
	v, err := scanOrderView(r.storage.pool.QueryRow(ctx, query, sessionID, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *orderViewRepository) Delete(ctx context.Context, sessionID, orderID string) error {
	const query = `DELETE FROM order_views WHERE session_id=$1 AND order_id=$2`
	_, err := r.storage.pool.Exec(ctx, query, sessionID, orderID)
	return err
}

func (r *orderViewRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM order_views WHERE session_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, sessionID)
	return err
}

// SelectBatchForSync locks stale views and stamps them so concurrent syncs skip them.
func (r *orderViewRepository) SelectBatchForSync(ctx context.Context, limit int, staleBefore time.Time) ([]model.OrderView, error) {
	selectQuery := `SELECT ` + orderViewColumns + `
                    FROM order_views
                    WHERE status NOT IN ('received', 'cancelled') AND updated_at < $1
                    ORDER BY updated_at
                    LIMIT $2
                    FOR UPDATE SKIP LOCKED`
	const touchQuery = `UPDATE order_views SET updated_at=NOW() WHERE session_id=$1 AND order_id=$2`

	var views []model.OrderView
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, staleBefore, limit)
		if err != nil {
			return err
		}
		batch, err := collectOrderViews(rows)
		if err != nil {
			return err
		}
		for _, v := range batch {
			if _, err := tx.Exec(ctx, touchQuery, v.SessionID, v.OrderID); err != nil {
				return err
			}
		}
		views = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
