package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderViewRepository describes the per-session cache of order read copies.
type OrderViewRepository interface {
	Upsert(ctx context.Context, views ...model.OrderView) error
	Get(ctx context.Context, sessionID, orderID string) (*model.OrderView, error)
	Delete(ctx context.Context, sessionID, orderID string) error
	DeleteBySession(ctx context.Context, sessionID string) error
	// SelectBatchForSync returns non-terminal views not refreshed since staleBefore.
	SelectBatchForSync(ctx context.Context, limit int, staleBefore time.Time) ([]model.OrderView, error)
}
