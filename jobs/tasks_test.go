package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []SendEmailPayload
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, SendEmailPayload{To: to, Subject: subject, Body: body})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendEmailHandlerDeliversPayload(t *testing.T) {
	mailer := &fakeMailer{}
	handler := NewSendEmailHandler(mailer, discardLogger())

	task, err := NewSendEmailTask(SendEmailPayload{
		To:      "aluno@escola.ao",
		Subject: "Pauta publicada",
		Body:    "A pauta de Matemática foi aprovada.",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "aluno@escola.ao", mailer.sent[0].To)
	assert.Equal(t, "Pauta publicada", mailer.sent[0].Subject)
}

func TestSendEmailHandlerSkipsRetryOnBadPayload(t *testing.T) {
	handler := NewSendEmailHandler(&fakeMailer{}, discardLogger())
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))

	err := handler(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSendEmailHandlerPropagatesSendFailure(t *testing.T) {
	sendErr := errors.New("smtp down")
	handler := NewSendEmailHandler(&fakeMailer{err: sendErr}, discardLogger())

	data, err := json.Marshal(SendEmailPayload{To: "x@escola.ao"})
	require.NoError(t, err)

	err = handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, data))
	assert.ErrorIs(t, err, sendErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry, "transient failures must stay retryable")
}

type fakeCleaner struct {
	calls int
	err   error
}

func (c *fakeCleaner) Cleanup(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestTermCleanupHandler(t *testing.T) {
	cleaner := &fakeCleaner{}
	handler := NewTermCleanupHandler(cleaner, discardLogger())

	require.NoError(t, handler(context.Background(), NewTermCleanupTask()))
	assert.Equal(t, 1, cleaner.calls)

	cleaner.err = errors.New("db gone")
	assert.Error(t, handler(context.Background(), NewTermCleanupTask()))
}

func TestEmailRetrySweepTaskIsUnique(t *testing.T) {
	task, opts := NewEmailRetrySweepTask()
	assert.Equal(t, TaskTypeEmailRetrySweep, task.Type())
	assert.NotEmpty(t, opts, "sweep must carry enqueue options so overlapping runs collapse")
}
