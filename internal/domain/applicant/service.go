package applicant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type ApplicantService interface {
	Register(ctx context.Context, profile Profile) (*Applicant, error)
	GetByEmail(ctx context.Context, email string) (*Applicant, error)
}

var _ ApplicantService = (*applicantService)(nil)

type applicantService struct {
	repo   Repository
	logger *slog.Logger
}

func NewApplicantService(repo Repository, logger *slog.Logger) ApplicantService {
	if repo == nil {
		panic("applicant repository cannot be nil")
	}
	return &applicantService{
		repo:   repo,
		logger: logger.With(slog.String("component", "applicantService")),
	}
}

// Register validates the profile and upserts the applicant keyed by email.
func (s *applicantService) Register(ctx context.Context, profile Profile) (*Applicant, error) {
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Applicant profile rejected", slog.Any("error", err))
		return nil, err
	}

	stored, err := s.repo.Upsert(ctx, &Applicant{
		ID:            uuid.New(),
		FullName:      profile.FullName,
		Email:         profile.Email,
		Phone:         profile.Phone,
		MonthlyIncome: profile.MonthlyIncome,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert applicant", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save applicant: %w", err)
	}

	s.logger.InfoContext(ctx, "Applicant registered", slog.String("applicantID", stored.ID.String()))
	return stored, nil
}

func (s *applicantService) GetByEmail(ctx context.Context, email string) (*Applicant, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}

	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "Applicant not found by repository")
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to look up applicant", slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up applicant: %w", err)
	}
	return found, nil
}
