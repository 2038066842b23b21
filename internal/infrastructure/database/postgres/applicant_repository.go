package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-underwriter/internal/domain/applicant"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	upsertApplicantSQL = `
        INSERT INTO applicants (id, email, full_name, phone, monthly_income, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (email) DO UPDATE
        SET full_name = EXCLUDED.full_name,
            phone = EXCLUDED.phone,
            monthly_income = EXCLUDED.monthly_income,
            updated_at = NOW()
        RETURNING id, created_at, updated_at`

	selectApplicantByEmailSQL = `
        SELECT id, email, full_name, phone, monthly_income, created_at, updated_at
        FROM applicants
        WHERE email = $1`
)

type ApplicantRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ applicant.Repository = (*ApplicantRepository)(nil)

func NewApplicantRepository(db DBPool, logger *slog.Logger) *ApplicantRepository {
	if db == nil {
		panic("DBPool cannot be nil for ApplicantRepository")
	}
	return &ApplicantRepository{
		db:     db,
		logger: logger.With("component", "ApplicantRepository"),
	}
}

// Upsert keeps the first id ever stored for an email; profile fields take
// the latest submitted values.
func (r *ApplicantRepository) Upsert(ctx context.Context, a *applicant.Applicant) (*applicant.Applicant, error) {
	start := time.Now()
	stored := *a
	err := r.db.QueryRow(ctx, upsertApplicantSQL,
		a.ID, a.Email, a.FullName, a.Phone, a.MonthlyIncome,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	observe("UpsertApplicant", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert applicant", slog.Any("error", err))
		return nil, translateDBError(err, r.logger)
	}
	return &stored, nil
}

func (r *ApplicantRepository) FindByEmail(ctx context.Context, email string) (*applicant.Applicant, error) {
	start := time.Now()
	var a applicant.Applicant
	err := r.db.QueryRow(ctx, selectApplicantByEmailSQL, email).Scan(
		&a.ID, &a.Email, &a.FullName, &a.Phone, &a.MonthlyIncome, &a.CreatedAt, &a.UpdatedAt,
	)
	observe("FindApplicantByEmail", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: applicant %s", apperrors.ErrNotFound, email)
		}
		r.logger.ErrorContext(ctx, "Failed to find applicant by email", slog.Any("error", err))
		return nil, translateDBError(err, r.logger)
	}
	return &a, nil
}
