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

	"github.com/courseboard/courseboard/internal/observability"
)

type stubScanner struct {
	count int64
	err   error
}

func (s *stubScanner) CountDangling(ctx context.Context) (int64, error) {
	return s.count, s.err
}

func newIntegrityTask(t *testing.T, payload RosterIntegrityPayload) *asynq.Task {
	t.Helper()
	task, err := NewRosterIntegrityTask(payload)
	require.NoError(t, err)
	return task
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRosterIntegrityClean(t *testing.T) {
	job := NewRosterIntegrityJob(&stubScanner{count: 0}, observability.NewMetrics(), discardLogger())

	err := job.Handle(context.Background(), newIntegrityTask(t, RosterIntegrityPayload{}))
	assert.NoError(t, err)
}

func TestRosterIntegrityReportsWithoutFailing(t *testing.T) {
	job := NewRosterIntegrityJob(&stubScanner{count: 2}, observability.NewMetrics(), discardLogger())

	err := job.Handle(context.Background(), newIntegrityTask(t, RosterIntegrityPayload{}))
	assert.NoError(t, err, "reporting mode must not trigger a retry")
}

func TestRosterIntegrityFailOnDangling(t *testing.T) {
	job := NewRosterIntegrityJob(&stubScanner{count: 2}, observability.NewMetrics(), discardLogger())

	err := job.Handle(context.Background(), newIntegrityTask(t, RosterIntegrityPayload{FailOnDangling: true}))
	assert.Error(t, err)
}

func TestRosterIntegrityScannerError(t *testing.T) {
	job := NewRosterIntegrityJob(&stubScanner{err: errors.New("connection refused")}, observability.NewMetrics(), discardLogger())

	err := job.Handle(context.Background(), newIntegrityTask(t, RosterIntegrityPayload{}))
	assert.Error(t, err)
}

func TestRosterIntegrityBadPayloadSkipsRetry(t *testing.T) {
	job := NewRosterIntegrityJob(&stubScanner{}, observability.NewMetrics(), discardLogger())

	task := asynq.NewTask(TaskRosterIntegrity, []byte("not json"))
	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSessionsSweepPayloadRoundTrip(t *testing.T) {
	task, err := NewSessionsSweepTask(SessionsSweepPayload{})
	require.NoError(t, err)

	var payload SessionsSweepPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Zero(t, payload.Retention)
}
