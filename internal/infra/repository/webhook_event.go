package repository

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
)

var _ shared.WebhookEventRepository = (*WebhookEventRepository)(nil)

// WebhookEventRepository is the idempotency ledger for payment event
// deliveries. The unique index on event_id arbitrates concurrent
// deliveries of the same event.
type WebhookEventRepository struct{}

func NewWebhookEventRepository() *WebhookEventRepository {
	return &WebhookEventRepository{}
}

func (r *WebhookEventRepository) FindByEventID(ctx context.Context, tx db.DBTX, eventID string) (*shared.WebhookEventRecord, error) {
	var record shared.WebhookEventRecord
	err := tx.QueryRow(ctx,
		`SELECT id, event_id, event_type, processed_at, processing_error, created_at
		 FROM webhook_events WHERE event_id = $1`,
		eventID).Scan(&record.ID, &record.EventID, &record.EventType,
		&record.ProcessedAt, &record.ProcessingError, &record.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("webhook event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find webhook event", err)
	}
	return &record, nil
}

func (r *WebhookEventRepository) Insert(ctx context.Context, tx db.DBTX, eventID, eventType string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO webhook_events (event_id, event_type) VALUES ($1, $2)`,
		eventID, eventType)
	if err != nil {
		return infra.WrapRepoErr("failed to insert webhook event", err)
	}
	return nil
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, tx db.DBTX, eventID, eventType string, processedAt time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE webhook_events
		 SET event_type = $2, processed_at = $3, processing_error = NULL
		 WHERE event_id = $1`,
		eventID, eventType, processedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to mark webhook event processed", err)
	}
	return nil
}

func (r *WebhookEventRepository) RecordError(ctx context.Context, tx db.DBTX, eventID, eventType, message string) error {
	_, err := tx.Exec(ctx,
		`UPDATE webhook_events SET event_type = $2, processing_error = $3 WHERE event_id = $1`,
		eventID, eventType, message)
	if err != nil {
		return infra.WrapRepoErr("failed to record webhook event error", err)
	}
	return nil
}
