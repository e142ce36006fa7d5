package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewEmailRetrySweepTask constructs the periodic sweep task. Uniqueness
// over the sweep window keeps overlapping runs from double-enqueueing
// the same notifications.
func NewEmailRetrySweepTask() (*asynq.Task, []asynq.Option) {
	return asynq.NewTask(TaskTypeEmailRetrySweep, nil),
		[]asynq.Option{asynq.Queue(QueueDefault), asynq.Unique(10 * time.Minute)}
}

// EmailRetrySweeper re-enqueues notification emails that failed fewer
// than maxAttempts times.
type EmailRetrySweeper struct {
	pool        *pgxpool.Pool
	client      *Client
	logger      *slog.Logger
	maxAttempts int
}

// NewEmailRetrySweeper constructs a sweeper.
func NewEmailRetrySweeper(pool *pgxpool.Pool, client *Client, logger *slog.Logger) *EmailRetrySweeper {
	return &EmailRetrySweeper{pool: pool, client: client, logger: logger, maxAttempts: 5}
}

// Handler processes TaskTypeEmailRetrySweep tasks.
func (s *EmailRetrySweeper) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		return s.sweep(ctx)
	}
}

func (s *EmailRetrySweeper) sweep(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT id, recipient, subject, body FROM notification_emails
WHERE status = 'FAILED' AND attempts < $1
ORDER BY updated_at ASC LIMIT 100`, s.maxAttempts)
	if err != nil {
		return err
	}
	defer rows.Close()

	type pending struct {
		id      int64
		payload SendEmailPayload
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.payload.To, &p.payload.Subject, &p.payload.Body); err != nil {
			return err
		}
		batch = append(batch, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range batch {
		if _, err := s.client.EnqueueSendEmail(ctx, p.payload); err != nil {
			s.logger.Warn("requeue email", slog.Int64("id", p.id), slog.Any("error", err))
			continue
		}
		if _, err := s.pool.Exec(ctx, `UPDATE notification_emails
SET status = 'QUEUED', attempts = attempts + 1, updated_at = NOW() WHERE id = $1`, p.id); err != nil {
			s.logger.Warn("mark email queued", slog.Int64("id", p.id), slog.Any("error", err))
		}
	}
	return nil
}
