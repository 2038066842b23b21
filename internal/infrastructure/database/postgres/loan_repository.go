package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/domain/underwriting"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	insertLoanRequestSQL = `
        INSERT INTO loan_requests (id, applicant_id, amount, term_months, interest_rate, status, max_amount, message, requested_at, approved_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING created_at, updated_at`

	selectLoanRequestSQL = `
        SELECT id, applicant_id, amount, term_months, interest_rate, status, max_amount, message, requested_at, approved_at, created_at, updated_at
        FROM loan_requests`

	selectLoanRequestByIDSQL = selectLoanRequestSQL + `
        WHERE id = $1`

	selectLoanRequestsByApplicantSQL = selectLoanRequestSQL + `
        WHERE applicant_id = $1
        ORDER BY requested_at DESC`

	lockLoanRequestSQL = `SELECT status FROM loan_requests WHERE id = $1 FOR UPDATE`

	selectInstallmentsSQL = `
        SELECT id, request_id, number, due_date, amount, principal, interest, remaining_balance, status, paid_at, created_at, updated_at
        FROM installments
        WHERE request_id = $1
        ORDER BY number ASC`

	markInstallmentPaidSQL = `
        UPDATE installments
        SET status = 'paid', paid_at = $2, updated_at = NOW()
        WHERE id = $1 AND status = 'pending'
        RETURNING id, request_id, number, due_date, amount, principal, interest, remaining_balance, status, paid_at, created_at, updated_at`

	installmentStatusSQL = `SELECT status FROM installments WHERE id = $1`

	outstandingAmountSQL = `
        SELECT COALESCE(SUM(amount), 0)
        FROM installments
        WHERE request_id = $1 AND status = 'pending'`

	requestsMissingScheduleSQL = `
        SELECT r.id
        FROM loan_requests r
        WHERE r.status <> 'rejected'
          AND NOT EXISTS (SELECT 1 FROM installments i WHERE i.request_id = r.id)
        ORDER BY r.requested_at ASC
        LIMIT $1`
)

var (
	installmentsTable   = pgx.Identifier{"installments"}
	installmentsColumns = []string{"id", "request_id", "number", "due_date", "amount", "principal", "interest", "remaining_balance", "status", "created_at", "updated_at"}
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) CreateRequestWithSchedule(ctx context.Context, req *loan.LoanRequest, schedule []loan.Installment) (created *loan.LoanRequest, err error) {
	start := time.Now()
	defer func() { observe("CreateRequestWithSchedule", start, err) }()
	logCtx := r.logger.With(slog.String("requestID", req.ID.String()))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, tx, logCtx)
		}
	}()

	stored := *req
	err = tx.QueryRow(ctx, insertLoanRequestSQL,
		req.ID, req.ApplicantID, req.Amount, req.TermMonths, req.InterestRate,
		string(req.Status), req.MaxAmount, req.Message, req.RequestedAt, req.ApprovedAt,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to insert loan request", slog.Any("error", err))
		return nil, translateDBError(err, logCtx)
	}

	if len(schedule) > 0 {
		stored.Schedule, err = r.copyInstallments(ctx, tx, schedule)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to insert schedule", slog.Any("error", err))
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		logCtx.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Loan request created in DB", slog.Int("installments", len(schedule)))
	return &stored, nil
}

func (r *LoanRepository) CreateSchedule(ctx context.Context, requestID uuid.UUID, schedule []loan.Installment) (result []loan.Installment, err error) {
	start := time.Now()
	defer func() { observe("CreateSchedule", start, err) }()
	logCtx := r.logger.With(slog.String("requestID", requestID.String()))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, tx, logCtx)
		}
	}()

	var status underwriting.Status
	if err = tx.QueryRow(ctx, lockLoanRequestSQL, requestID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Loan request not found")
		}
		return nil, translateDBError(err, logCtx)
	}
	if status == underwriting.StatusRejected {
		err = fmt.Errorf("%w: rejected request %s has no schedule", apperrors.ErrConflict, requestID)
		return nil, err
	}

	existing, err := r.queryInstallments(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	result = existing
	if len(existing) == 0 {
		result, err = r.copyInstallments(ctx, tx, schedule)
		if err != nil {
			return nil, err
		}
	} else {
		logCtx.InfoContext(ctx, "Schedule already present, skipping insert", slog.Int("installments", len(existing)))
	}

	if err = tx.Commit(ctx); err != nil {
		logCtx.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return result, nil
}

func (r *LoanRepository) copyInstallments(ctx context.Context, tx pgx.Tx, schedule []loan.Installment) ([]loan.Installment, error) {
	now := time.Now()
	stored := make([]loan.Installment, len(schedule))
	copy(stored, schedule)

	rows := make([][]any, len(stored))
	for i := range stored {
		stored[i].CreatedAt = now
		stored[i].UpdatedAt = now
		inst := stored[i]
		rows[i] = []any{
			inst.ID, inst.RequestID, inst.Number, inst.DueDate, inst.Amount, inst.Principal,
			inst.Interest, inst.RemainingBalance, string(inst.Status), inst.CreatedAt, inst.UpdatedAt,
		}
	}

	copied, err := tx.CopyFrom(ctx, installmentsTable, installmentsColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	if copied != int64(len(rows)) {
		return nil, fmt.Errorf("%w: copied %d of %d installments", apperrors.ErrDatabase, copied, len(rows))
	}
	return stored, nil
}

func (r *LoanRepository) GetRequestByID(ctx context.Context, requestID uuid.UUID) (*loan.LoanRequest, error) {
	start := time.Now()
	req, err := scanLoanRequest(r.db.QueryRow(ctx, selectLoanRequestByIDSQL, requestID))
	observe("GetRequestByID", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan request not found", "requestID", requestID)
			return nil, fmt.Errorf("%w: loan request %s", apperrors.ErrNotFound, requestID)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan request by ID", "requestID", requestID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return req, nil
}

func (r *LoanRepository) GetScheduleByRequestID(ctx context.Context, requestID uuid.UUID) ([]loan.Installment, error) {
	start := time.Now()
	schedule, err := r.queryInstallments(ctx, r.db, requestID)
	observe("GetScheduleByRequestID", start, err)
	return schedule, err
}

func (r *LoanRepository) queryInstallments(ctx context.Context, q querier, requestID uuid.UUID) ([]loan.Installment, error) {
	rows, err := q.Query(ctx, selectInstallmentsSQL, requestID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query installments", "requestID", requestID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	schedule := make([]loan.Installment, 0)
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan installment row", "requestID", requestID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		schedule = append(schedule, *inst)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating installment rows", "requestID", requestID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return schedule, nil
}

func (r *LoanRepository) ListRequestsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]loan.LoanRequest, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, selectLoanRequestsByApplicantSQL, applicantID)
	if err != nil {
		observe("ListRequestsByApplicant", start, err)
		r.logger.ErrorContext(ctx, "Failed to query loan requests", "applicantID", applicantID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	requests := make([]loan.LoanRequest, 0)
	for rows.Next() {
		req, err := scanLoanRequest(rows)
		if err != nil {
			observe("ListRequestsByApplicant", start, err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		requests = append(requests, *req)
	}
	err = rows.Err()
	observe("ListRequestsByApplicant", start, err)
	if err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return requests, nil
}

func (r *LoanRepository) FindRequestsMissingSchedule(ctx context.Context, limit int) ([]uuid.UUID, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, requestsMissingScheduleSQL, limit)
	if err != nil {
		observe("FindRequestsMissingSchedule", start, err)
		r.logger.ErrorContext(ctx, "Failed to query requests missing schedule", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			observe("FindRequestsMissingSchedule", start, err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	observe("FindRequestsMissingSchedule", start, err)
	if err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return ids, nil
}

func (r *LoanRepository) GetOutstandingAmount(ctx context.Context, requestID uuid.UUID) (loan.Money, error) {
	start := time.Now()
	var outstanding float64
	err := r.db.QueryRow(ctx, outstandingAmountSQL, requestID).Scan(&outstanding)
	observe("GetOutstandingAmount", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to get outstanding amount", "requestID", requestID, "error", err)
		return 0, translateDBError(err, r.logger)
	}
	return outstanding, nil
}

func (r *LoanRepository) MarkInstallmentPaid(ctx context.Context, installmentID uuid.UUID, paidAt time.Time) (*loan.Installment, error) {
	start := time.Now()
	inst, err := scanInstallment(r.db.QueryRow(ctx, markInstallmentPaidSQL, installmentID, paidAt))
	observe("MarkInstallmentPaid", start, err)
	if err == nil {
		return inst, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.ErrorContext(ctx, "Failed to mark installment paid", "installmentID", installmentID, "error", err)
		return nil, translateDBError(err, r.logger)
	}

	// No pending row matched: either the id is unknown or it was already paid.
	var status loan.InstallmentStatus
	err = r.db.QueryRow(ctx, installmentStatusSQL, installmentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: installment %s", apperrors.ErrNotFound, installmentID)
		}
		return nil, translateDBError(err, r.logger)
	}
	return nil, fmt.Errorf("%w: installment %s", apperrors.ErrAlreadyPaid, installmentID)
}

func scanLoanRequest(row rowScanner) (*loan.LoanRequest, error) {
	var req loan.LoanRequest
	err := row.Scan(
		&req.ID, &req.ApplicantID, &req.Amount, &req.TermMonths, &req.InterestRate,
		&req.Status, &req.MaxAmount, &req.Message, &req.RequestedAt, &req.ApprovedAt,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func scanInstallment(row rowScanner) (*loan.Installment, error) {
	var inst loan.Installment
	err := row.Scan(
		&inst.ID, &inst.RequestID, &inst.Number, &inst.DueDate, &inst.Amount, &inst.Principal,
		&inst.Interest, &inst.RemainingBalance, &inst.Status, &inst.PaidAt,
		&inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}
