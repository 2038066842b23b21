package loan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loan-underwriter/internal/event"
	"loan-underwriter/internal/infrastructure/monitoring"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// Ledger records installment payments. Concurrent Pay calls on the same
// installment are serialized by the store's conditional update: exactly one
// succeeds and the rest see apperrors.ErrAlreadyPaid.
type Ledger struct {
	store     InstallmentStore
	publisher event.EventPublisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewLedger(store InstallmentStore, publisher event.EventPublisher, logger *slog.Logger, opts ...Option) *Ledger {
	o := applyOptions(opts)
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &Ledger{
		store:     store,
		publisher: publisher,
		now:       o.now,
		logger:    logger.With(slog.String("component", "Ledger")),
	}
}

func (l *Ledger) Pay(ctx context.Context, installmentID uuid.UUID) (*Installment, error) {
	logCtx := l.logger.With(slog.String("installmentID", installmentID.String()))

	paid, err := l.store.MarkInstallmentPaid(ctx, installmentID, l.now())
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			monitoring.RecordInstallmentPayment("not_found")
			logCtx.WarnContext(ctx, "Installment not found")
		case errors.Is(err, apperrors.ErrAlreadyPaid):
			monitoring.RecordInstallmentPayment("already_paid")
			logCtx.InfoContext(ctx, "Installment already paid")
		default:
			monitoring.RecordInstallmentPayment("error")
			logCtx.ErrorContext(ctx, "Failed to mark installment paid", slog.Any("error", err))
		}
		return nil, err
	}

	monitoring.RecordInstallmentPayment("success")
	logCtx.InfoContext(ctx, "Installment paid", slog.String("requestID", paid.RequestID.String()), slog.Int("number", paid.Number))

	evt := event.InstallmentPaidEvent{
		InstallmentID: paid.ID.String(),
		RequestID:     paid.RequestID.String(),
		Number:        paid.Number,
		Amount:        paid.Amount,
	}
	if paid.PaidAt != nil {
		evt.PaidAt = *paid.PaidAt
	}
	if err := l.publisher.PublishInstallmentPaid(ctx, evt); err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish installment paid event", slog.Any("error", err))
	}

	return paid, nil
}
