package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/infrastructure/monitoring"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
)

const defaultBatchSize = 100

// MissingScheduleFinder is the part of loan.Repository the job reads from.
type MissingScheduleFinder interface {
	FindRequestsMissingSchedule(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// ScheduleRetrier is the part of loan.LoanService the job drives.
type ScheduleRetrier interface {
	RetrySchedule(ctx context.Context, requestID uuid.UUID) ([]loan.Installment, error)
}

// ScheduleRecoveryJob regenerates schedules for requests that were stored
// after a partial failure.
type ScheduleRecoveryJob struct {
	finder    MissingScheduleFinder
	retrier   ScheduleRetrier
	batchSize int
	logger    *slog.Logger
}

func NewScheduleRecoveryJob(
	finder MissingScheduleFinder,
	retrier ScheduleRetrier,
	batchSize int,
	logger *slog.Logger,
) *ScheduleRecoveryJob {
	if finder == nil || retrier == nil || logger == nil {
		panic("ScheduleRecoveryJob dependencies cannot be nil")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &ScheduleRecoveryJob{
		finder:    finder,
		retrier:   retrier,
		batchSize: batchSize,
		logger:    logger.With("job", "ScheduleRecovery"),
	}
}

func (j *ScheduleRecoveryJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting schedule recovery job.", slog.Int("batch_size", j.batchSize))

	requestIDs, err := j.finder.FindRequestsMissingSchedule(ctx, j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list requests missing a schedule, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list requests: %w", err)
	}

	if len(requestIDs) == 0 {
		j.logger.InfoContext(ctx, "No requests missing a schedule.")
		return nil
	}

	var wg sync.WaitGroup
	var recovered, skipped, failed atomic.Int32

	for _, requestID := range requestIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("requestID", id.String()))
			schedule, retryErr := j.retrier.RetrySchedule(ctx, id)
			switch {
			case retryErr == nil:
				logCtx.DebugContext(ctx, "Schedule recovered.", slog.Int("installments", len(schedule)))
				monitoring.RecordScheduleRecovery("recovered")
				recovered.Add(1)
			case errors.Is(retryErr, apperrors.ErrNotFound), errors.Is(retryErr, apperrors.ErrConflict):
				logCtx.WarnContext(ctx, "Request no longer needs a schedule.", slog.Any("error", retryErr))
				monitoring.RecordScheduleRecovery("skipped")
				skipped.Add(1)
			default:
				logCtx.ErrorContext(ctx, "Failed to recover schedule.", slog.Any("error", retryErr))
				monitoring.RecordScheduleRecovery("failed")
				failed.Add(1)
			}
		}(requestID)
	}

	wg.Wait()

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("requests_found", len(requestIDs)),
		slog.Int("schedules_recovered", int(recovered.Load())),
		slog.Int("requests_skipped", int(skipped.Load())),
		slog.Int("errors_encountered", int(failed.Load())),
	)

	if n := failed.Load(); n > 0 {
		summaryLog.WarnContext(ctx, "Schedule recovery job finished with errors.")
		return fmt.Errorf("job completed with %d errors", n)
	}
	summaryLog.InfoContext(ctx, "Schedule recovery job finished successfully.")
	return nil
}
