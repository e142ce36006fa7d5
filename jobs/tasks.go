package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for transactional email.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeTermCleanup purges expired legal-term acceptances.
	TaskTypeTermCleanup = "termos:cleanup"
	// TaskTypeEmailRetrySweep re-enqueues notification emails stuck in
	// a failed state.
	TaskTypeEmailRetrySweep = "mail:retry_sweep"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Mailer sends one email. The SMTP implementation lives in the worker
// binary; tests use a recording fake.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks.
func NewSendEmailHandler(mailer Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			logger.Warn("send email", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		return nil
	}
}

// TermCleaner removes expired acceptances; satisfied by shared.TermStore.
type TermCleaner interface {
	Cleanup(ctx context.Context) error
}

// NewTermCleanupTask constructs the daily cleanup task.
func NewTermCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeTermCleanup, nil)
}

// NewTermCleanupHandler processes TaskTypeTermCleanup tasks.
func NewTermCleanupHandler(cleaner TermCleaner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := cleaner.Cleanup(ctx); err != nil {
			logger.Warn("term cleanup", slog.Any("error", err))
			return err
		}
		return nil
	}
}
