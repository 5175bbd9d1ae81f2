package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/courseboard/courseboard/internal/observability"
)

// LedgerScanner reports assignments with unresolvable references.
type LedgerScanner interface {
	CountDangling(ctx context.Context) (int64, error)
}

// RosterIntegrityJob scans the assignment ledger for rows whose course or
// role reference no longer resolves. The schema constraints should make
// the count permanently zero; a nonzero count means a migration or manual
// intervention bypassed them.
type RosterIntegrityJob struct {
	scanner LedgerScanner
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRosterIntegrityJob constructs the job.
func NewRosterIntegrityJob(scanner LedgerScanner, metrics *observability.Metrics, logger *slog.Logger) *RosterIntegrityJob {
	return &RosterIntegrityJob{scanner: scanner, metrics: metrics, logger: logger}
}

// Handle processes TaskRosterIntegrity tasks.
func (j *RosterIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RosterIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	count, err := j.scanner.CountDangling(ctx)
	if err != nil {
		return fmt.Errorf("jobs: count dangling assignments: %w", err)
	}
	j.metrics.SetDanglingAssignments(count)
	if count > 0 {
		if j.logger != nil {
			j.logger.Warn("dangling assignments detected", slog.Int64("count", count))
		}
		if payload.FailOnDangling {
			return fmt.Errorf("jobs: %d dangling assignments", count)
		}
		return nil
	}
	if j.logger != nil {
		j.logger.Info("roster integrity scan clean", slog.String("job", TaskRosterIntegrity))
	}
	return nil
}
