package repository

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
)

var _ shared.NotificationRepository = (*NotificationRepository)(nil)

// NotificationRepository queues outbound mail jobs for a worker to pick
// up; nothing in the request path sends mail directly.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
		 VALUES ($1, $2, $3, $4, 'queued')`,
		kind, topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) UpdateJobStatus(ctx context.Context, tx db.DBTX, jobID uuid.UUID, status string, lastError *string) error {
	_, err := tx.Exec(ctx,
		`UPDATE notification_jobs
		 SET status = $2, last_error = $3, attempts = attempts + 1, updated_at = now()
		 WHERE id = $1`,
		jobID, status, lastError)
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}
