package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-underwriter/internal/domain/applicant"
	"loan-underwriter/internal/domain/underwriting"
	"loan-underwriter/internal/event"
	"loan-underwriter/internal/infrastructure/monitoring"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// SubmitInput is one underwriting request. It is read-only for the duration
// of Submit.
type SubmitInput struct {
	Profile    applicant.Profile
	Amount     Money
	TermMonths int
}

type SubmitResult struct {
	Request   *LoanRequest
	Applicant *applicant.Applicant
	Decision  underwriting.Decision
	Summary   Summary
}

type ApplicantLoans struct {
	Applicant *applicant.Applicant
	Requests  []LoanRequest
}

type LoanService interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)

	RetrySchedule(ctx context.Context, requestID uuid.UUID) ([]Installment, error)

	GetRequest(ctx context.Context, requestID uuid.UUID, withSchedule bool) (*LoanRequest, error)

	GetSchedule(ctx context.Context, requestID uuid.UUID) ([]Installment, error)

	GetOutstanding(ctx context.Context, requestID uuid.UUID) (Money, error)

	ListApplicantRequests(ctx context.Context, email string) (*ApplicantLoans, error)

	PayInstallment(ctx context.Context, installmentID uuid.UUID) (*Installment, error)
}

var _ LoanService = (*loanServiceImpl)(nil)

type loanServiceImpl struct {
	repo       Repository
	applicants applicant.ApplicantService
	scorer     *underwriting.Scorer
	ledger     *Ledger
	publisher  event.EventPublisher
	now        func() time.Time
	logger     *slog.Logger
}

func NewLoanService(
	r Repository,
	applicants applicant.ApplicantService,
	scorer *underwriting.Scorer,
	publisher event.EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) LoanService {
	o := applyOptions(opts)
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &loanServiceImpl{
		repo:       r,
		applicants: applicants,
		scorer:     scorer,
		ledger:     NewLedger(r, publisher, logger, opts...),
		publisher:  publisher,
		now:        o.now,
		logger:     logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanServiceImpl) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidTerm, in.TermMonths)
	}
	if maxTerm := s.scorer.Policy().MaxTermMonths; maxTerm > 0 && in.TermMonths > maxTerm {
		return nil, fmt.Errorf("%w: got %d, maximum is %d", apperrors.ErrInvalidTerm, in.TermMonths, maxTerm)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", apperrors.ErrInvalidAmount, in.Amount)
	}

	app, err := s.applicants.Register(ctx, in.Profile)
	if err != nil {
		return nil, err
	}
	logCtx := s.logger.With(slog.String("applicantID", app.ID.String()))

	decision := s.scorer.Evaluate(app.MonthlyIncome, in.Amount)
	now := s.now()

	req := &LoanRequest{
		ID:           uuid.New(),
		ApplicantID:  app.ID,
		Amount:       in.Amount,
		TermMonths:   in.TermMonths,
		InterestRate: decision.InterestRate(),
		Status:       decision.Status(),
		MaxAmount:    decision.MaxAmount,
		Message:      decision.Message,
		RequestedAt:  now,
	}
	if req.Status == underwriting.StatusApproved {
		approvedAt := now
		req.ApprovedAt = &approvedAt
	}
	logCtx = logCtx.With(slog.String("requestID", req.ID.String()), slog.String("status", string(req.Status)))

	var schedule []Installment
	if !decision.Rejected() {
		schedule, err = s.buildSchedule(req)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to generate schedule", slog.Any("error", err))
			return nil, err
		}
	}

	created, err := s.repo.CreateRequestWithSchedule(ctx, req, schedule)
	if err != nil {
		perr := apperrors.NewPersistenceError(err, req.ID.String())
		if errors.Is(perr, apperrors.ErrPartialFailure) {
			monitoring.RecordSubmission("partial_failure")
			logCtx.ErrorContext(ctx, "Loan request stored without schedule", slog.Any("error", err))
		} else {
			monitoring.RecordSubmission("total_failure")
			logCtx.ErrorContext(ctx, "Failed to store loan request", slog.Any("error", err))
		}
		return nil, perr
	}

	monitoring.RecordSubmission(string(created.Status))
	logCtx.InfoContext(ctx, "Loan request decided", slog.Int("installments", len(created.Schedule)))

	result := &SubmitResult{
		Request:   created,
		Applicant: app,
		Decision:  decision,
		Summary:   Summarize(created.Schedule),
	}
	s.publishDecision(ctx, result)
	return result, nil
}

func (s *loanServiceImpl) buildSchedule(req *LoanRequest) ([]Installment, error) {
	schedule, err := GenerateSchedule(req.Amount, req.TermMonths, req.InterestRate, req.RequestedAt)
	if err != nil {
		return nil, err
	}
	for i := range schedule {
		schedule[i].ID = uuid.New()
		schedule[i].RequestID = req.ID
	}
	return schedule, nil
}

func (s *loanServiceImpl) publishDecision(ctx context.Context, result *SubmitResult) {
	req := result.Request
	evt := event.LoanDecidedEvent{
		RequestID:      req.ID.String(),
		ApplicantID:    result.Applicant.ID.String(),
		ApplicantEmail: result.Applicant.Email,
		ApplicantName:  result.Applicant.FullName,
		Status:         string(req.Status),
		Message:        req.Message,
		Amount:         req.Amount,
		TermMonths:     req.TermMonths,
		InterestRate:   req.InterestRate,
		MaxAmount:      req.MaxAmount,
		MonthlyPayment: result.Summary.MonthlyPayment,
		TotalPayment:   result.Summary.TotalPayment,
		Timestamp:      req.RequestedAt,
	}
	if err := s.publisher.PublishLoanDecided(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan decided event",
			slog.String("requestID", evt.RequestID), slog.Any("error", err))
	}
}

// RetrySchedule regenerates the schedule of a stored request from its
// persisted amount, term, rate and request time. The request is not re-scored.
func (s *loanServiceImpl) RetrySchedule(ctx context.Context, requestID uuid.UUID) ([]Installment, error) {
	logCtx := s.logger.With(slog.String("requestID", requestID.String()))

	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Rejected() {
		return nil, fmt.Errorf("%w: rejected request %s has no schedule", apperrors.ErrConflict, requestID)
	}

	schedule, err := s.buildSchedule(req)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to regenerate schedule", slog.Any("error", err))
		return nil, err
	}

	stored, err := s.repo.CreateSchedule(ctx, requestID, schedule)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to store regenerated schedule", slog.Any("error", err))
		return nil, err
	}

	logCtx.InfoContext(ctx, "Schedule ensured", slog.Int("installments", len(stored)))
	return stored, nil
}

func (s *loanServiceImpl) GetRequest(ctx context.Context, requestID uuid.UUID, withSchedule bool) (*LoanRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if withSchedule {
		schedule, err := s.repo.GetScheduleByRequestID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		req.Schedule = schedule
	}
	return req, nil
}

func (s *loanServiceImpl) GetSchedule(ctx context.Context, requestID uuid.UUID) ([]Installment, error) {
	req, err := s.GetRequest(ctx, requestID, true)
	if err != nil {
		return nil, err
	}
	return req.Schedule, nil
}

func (s *loanServiceImpl) GetOutstanding(ctx context.Context, requestID uuid.UUID) (Money, error) {
	if _, err := s.repo.GetRequestByID(ctx, requestID); err != nil {
		return 0, err
	}
	outstanding, err := s.repo.GetOutstandingAmount(ctx, requestID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get outstanding amount",
			slog.String("requestID", requestID.String()), slog.Any("error", err))
		return 0, err
	}
	return roundTo(outstanding, 2), nil
}

func (s *loanServiceImpl) ListApplicantRequests(ctx context.Context, email string) (*ApplicantLoans, error) {
	app, err := s.applicants.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	requests, err := s.repo.ListRequestsByApplicant(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if requests[i].Rejected() {
			continue
		}
		schedule, err := s.repo.GetScheduleByRequestID(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Schedule = schedule
	}

	return &ApplicantLoans{Applicant: app, Requests: requests}, nil
}

func (s *loanServiceImpl) PayInstallment(ctx context.Context, installmentID uuid.UUID) (*Installment, error) {
	return s.ledger.Pay(ctx, installmentID)
}
