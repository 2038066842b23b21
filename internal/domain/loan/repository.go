package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InstallmentStore is the storage side of the ledger.
type InstallmentStore interface {
	// MarkInstallmentPaid flips a pending installment to paid in one
	// conditional write. It returns apperrors.ErrNotFound for an unknown id
	// and apperrors.ErrAlreadyPaid when the installment was already paid.
	MarkInstallmentPaid(ctx context.Context, installmentID uuid.UUID, paidAt time.Time) (*Installment, error)
}

type Repository interface {
	InstallmentStore

	// CreateRequestWithSchedule stores the request and its installments
	// atomically. A store that cannot do so must wrap
	// apperrors.ErrScheduleNotPersisted when the request row survived.
	CreateRequestWithSchedule(ctx context.Context, req *LoanRequest, schedule []Installment) (*LoanRequest, error)

	// CreateSchedule inserts installments for an existing request unless it
	// already has some, in which case the stored ones are returned.
	CreateSchedule(ctx context.Context, requestID uuid.UUID, schedule []Installment) ([]Installment, error)

	GetRequestByID(ctx context.Context, requestID uuid.UUID) (*LoanRequest, error)

	GetScheduleByRequestID(ctx context.Context, requestID uuid.UUID) ([]Installment, error)

	ListRequestsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]LoanRequest, error)

	// FindRequestsMissingSchedule lists non-rejected requests with no installments.
	FindRequestsMissingSchedule(ctx context.Context, limit int) ([]uuid.UUID, error)

	GetOutstandingAmount(ctx context.Context, requestID uuid.UUID) (Money, error)
}
