package repository

import (
	"context"
	"time"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	createNotificationJobSQL = `
INSERT INTO notification_jobs (kind, topic, key, payload, status, run_at)
VALUES ($1, $2, $3, $4, 'queued', $5)`

	claimNotificationJobsSQL = `
SELECT id, kind, topic, key, payload, attempts
FROM notification_jobs
WHERE status = 'queued' AND run_at <= $1
ORDER BY run_at, created_at
LIMIT $2
FOR UPDATE SKIP LOCKED`

	markNotificationSentSQL = `
UPDATE notification_jobs
SET status = 'sent', sent_at = $2, last_error = NULL, updated_at = $2
WHERE id = $1`

	markNotificationFailedSQL = `
UPDATE notification_jobs
SET attempts = attempts + 1,
    last_error = $2,
    run_at = $3,
    status = CASE WHEN attempts + 1 >= $4 THEN 'failed' ELSE 'queued' END,
    updated_at = now()
WHERE id = $1`
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, job shared.NewNotificationJob) error {
	_, err := tx.Exec(ctx, createNotificationJobSQL, job.Kind, job.Topic, job.Key, job.Payload, pgconv.TimeToPgtype(job.RunAt))
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) ClaimBatch(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]shared.NotificationJob, error) {
	rows, err := tx.Query(ctx, claimNotificationJobsSQL, pgconv.TimeToPgtype(now), int32(limit))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	var jobs []shared.NotificationJob
	for rows.Next() {
		var (
			job      shared.NotificationJob
			attempts int32
		)
		if err := rows.Scan(&job.ID, &job.Kind, &job.Topic, &job.Key, &job.Payload, &attempts); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		job.Attempts = int(attempts)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, tx db.DBTX, id uuid.UUID, at time.Time) error {
	tag, err := tx.Exec(ctx, markNotificationSentSQL, id, pgconv.TimeToPgtype(at))
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return mustAffect(tag, "notification job to mark sent does not exist")
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error {
	tag, err := tx.Exec(ctx, markNotificationFailedSQL, id, lastError, pgconv.TimeToPgtype(retryAt), int32(maxAttempts))
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return mustAffect(tag, "notification job to mark failed does not exist")
}
