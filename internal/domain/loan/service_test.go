package loan_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"loan-underwriter/internal/domain/applicant"
	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/domain/underwriting"
	"loan-underwriter/internal/event"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	logger   = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type serviceFixture struct {
	repo       *loan.MockRepository
	applicants *loan.MockApplicantService
	publisher  *loan.MockPublisher
	service    loan.LoanService
}

func setupService() serviceFixture {
	f := serviceFixture{
		repo:       new(loan.MockRepository),
		applicants: new(loan.MockApplicantService),
		publisher:  new(loan.MockPublisher),
	}
	scorer := underwriting.NewScorer(underwriting.DefaultPolicy())
	f.service = loan.NewLoanService(f.repo, f.applicants, scorer, f.publisher, logger,
		loan.WithClock(func() time.Time { return fixedNow }))
	return f
}

func registeredApplicant(income float64) *applicant.Applicant {
	return &applicant.Applicant{
		ID:            uuid.New(),
		FullName:      "Ana Perez",
		Email:         "ana@example.com",
		MonthlyIncome: income,
	}
}

func submitInput(income, amount float64, term int) loan.SubmitInput {
	return loan.SubmitInput{
		Profile:    applicant.Profile{FullName: "Ana Perez", Email: "ana@example.com", MonthlyIncome: income},
		Amount:     amount,
		TermMonths: term,
	}
}

func echoCreated(_ context.Context, req *loan.LoanRequest, schedule []loan.Installment) *loan.LoanRequest {
	req.Schedule = schedule
	return req
}

func TestLoanService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Approved request stores request with schedule", func(t *testing.T) {
		f := setupService()
		in := submitInput(3_500_000, 10_000_000, 12)
		app := registeredApplicant(3_500_000)

		f.applicants.On("Register", ctx, in.Profile).Return(app, nil).Once()
		f.repo.On("CreateRequestWithSchedule", ctx, mock.AnythingOfType("*loan.LoanRequest"), mock.Anything).
			Return(echoCreated, nil).Once()
		f.publisher.On("PublishLoanDecided", ctx, mock.MatchedBy(func(e event.LoanDecidedEvent) bool {
			return e.Status == "approved" && e.InterestRate == 1.5 && e.ApplicantEmail == "ana@example.com"
		})).Return(nil).Once()

		result, err := f.service.Submit(ctx, in)
		require.NoError(t, err)

		req := result.Request
		assert.NotEqual(t, uuid.Nil, req.ID)
		assert.Equal(t, app.ID, req.ApplicantID)
		assert.Equal(t, underwriting.StatusApproved, req.Status)
		assert.Equal(t, 1.5, req.InterestRate)
		assert.Equal(t, 35_000_000.0, req.MaxAmount)
		require.NotNil(t, req.ApprovedAt)
		assert.Equal(t, fixedNow, *req.ApprovedAt)
		assert.Equal(t, fixedNow, req.RequestedAt)

		require.Len(t, req.Schedule, 12)
		for _, inst := range req.Schedule {
			assert.Equal(t, req.ID, inst.RequestID)
			assert.NotEqual(t, uuid.Nil, inst.ID)
			assert.Equal(t, loan.InstallmentPending, inst.Status)
		}
		assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), req.Schedule[0].DueDate)

		assert.Equal(t, underwriting.StatusApproved, result.Decision.Status())
		assert.Equal(t, req.Schedule[0].Amount, result.Summary.MonthlyPayment)

		f.repo.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("In review request gets standard rate and schedule", func(t *testing.T) {
		f := setupService()
		in := submitInput(2_000_000, 5_000_000, 24)

		f.applicants.On("Register", ctx, in.Profile).Return(registeredApplicant(2_000_000), nil).Once()
		f.repo.On("CreateRequestWithSchedule", ctx, mock.Anything, mock.Anything).Return(echoCreated, nil).Once()
		f.publisher.On("PublishLoanDecided", ctx, mock.Anything).Return(nil).Once()

		result, err := f.service.Submit(ctx, in)
		require.NoError(t, err)

		assert.Equal(t, underwriting.StatusInReview, result.Request.Status)
		assert.Equal(t, 2.2, result.Request.InterestRate)
		assert.Nil(t, result.Request.ApprovedAt)
		assert.Len(t, result.Request.Schedule, 24)
	})

	t.Run("Rejected request is stored without installments", func(t *testing.T) {
		f := setupService()
		in := submitInput(1_000_000, 5_000_000, 12)

		f.applicants.On("Register", ctx, in.Profile).Return(registeredApplicant(1_000_000), nil).Once()
		f.repo.On("CreateRequestWithSchedule", ctx, mock.MatchedBy(func(r *loan.LoanRequest) bool {
			return r.Status == underwriting.StatusRejected && r.InterestRate == 0 && r.ApprovedAt == nil
		}), mock.MatchedBy(func(s []loan.Installment) bool {
			return len(s) == 0
		})).Return(echoCreated, nil).Once()
		f.publisher.On("PublishLoanDecided", ctx, mock.Anything).Return(nil).Once()

		result, err := f.service.Submit(ctx, in)
		require.NoError(t, err)

		assert.True(t, result.Decision.Rejected())
		assert.Empty(t, result.Request.Schedule)
		assert.Equal(t, loan.Summary{}, result.Summary)
		f.repo.AssertExpectations(t)
	})

	t.Run("Invalid term or amount is rejected before any write", func(t *testing.T) {
		f := setupService()

		_, err := f.service.Submit(ctx, submitInput(3_500_000, 1_000_000, 0))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)

		_, err = f.service.Submit(ctx, submitInput(3_500_000, 1_000_000, underwriting.DefaultPolicy().MaxTermMonths+1))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)

		_, err = f.service.Submit(ctx, submitInput(3_500_000, 0, 12))
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

		f.applicants.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "CreateRequestWithSchedule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Profile validation failure stops submission", func(t *testing.T) {
		f := setupService()
		in := submitInput(3_500_000, 1_000_000, 12)
		f.applicants.On("Register", ctx, in.Profile).
			Return(nil, apperrors.NewValidationError("email", "is required")).Once()

		_, err := f.service.Submit(ctx, in)

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		f.repo.AssertNotCalled(t, "CreateRequestWithSchedule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage failure is a total failure", func(t *testing.T) {
		f := setupService()
		in := submitInput(3_500_000, 1_000_000, 12)
		dbErr := errors.New("tx aborted")

		f.applicants.On("Register", ctx, in.Profile).Return(registeredApplicant(3_500_000), nil).Once()
		f.repo.On("CreateRequestWithSchedule", ctx, mock.Anything, mock.Anything).Return(nil, dbErr).Once()

		result, err := f.service.Submit(ctx, in)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, apperrors.ErrTotalFailure)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, apperrors.ErrPartialFailure)
		f.publisher.AssertNotCalled(t, "PublishLoanDecided", mock.Anything, mock.Anything)
	})

	t.Run("Schedule write failure is a partial failure with request id", func(t *testing.T) {
		f := setupService()
		in := submitInput(3_500_000, 1_000_000, 12)
		var storedID uuid.UUID

		f.applicants.On("Register", ctx, in.Profile).Return(registeredApplicant(3_500_000), nil).Once()
		f.repo.On("CreateRequestWithSchedule", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { storedID = args.Get(1).(*loan.LoanRequest).ID }).
			Return(nil, fmt.Errorf("%w: copy interrupted", apperrors.ErrScheduleNotPersisted)).Once()

		_, err := f.service.Submit(ctx, in)

		require.ErrorIs(t, err, apperrors.ErrPartialFailure)
		var pErr *apperrors.PersistenceError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, storedID.String(), pErr.RequestID)
	})

	t.Run("Publish failure does not fail submission", func(t *testing.T) {
		f := setupService()
		in := submitInput(3_500_000, 1_000_000, 12)

		f.applicants.On("Register", ctx, in.Profile).Return(registeredApplicant(3_500_000), nil).Once()
		f.repo.On("CreateRequestWithSchedule", ctx, mock.Anything, mock.Anything).Return(echoCreated, nil).Once()
		f.publisher.On("PublishLoanDecided", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		result, err := f.service.Submit(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, underwriting.StatusApproved, result.Request.Status)
	})
}

func TestLoanService_RetrySchedule(t *testing.T) {
	ctx := context.Background()
	requestedAt := time.Date(2024, time.December, 15, 8, 0, 0, 0, time.UTC)

	t.Run("Regenerates from stored terms without rescoring", func(t *testing.T) {
		f := setupService()
		reqID := uuid.New()
		stored := &loan.LoanRequest{
			ID: reqID, Amount: 5_000_000, TermMonths: 6, InterestRate: 2.2,
			Status: underwriting.StatusInReview, RequestedAt: requestedAt,
		}
		f.repo.On("GetRequestByID", ctx, reqID).Return(stored, nil).Once()
		f.repo.On("CreateSchedule", ctx, reqID, mock.MatchedBy(func(s []loan.Installment) bool {
			return len(s) == 6 && s[0].RequestID == reqID &&
				s[0].DueDate.Equal(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
		})).Return(func(_ context.Context, _ uuid.UUID, s []loan.Installment) []loan.Installment { return s }, nil).Once()

		schedule, err := f.service.RetrySchedule(ctx, reqID)

		require.NoError(t, err)
		assert.Len(t, schedule, 6)
		expected, _ := loan.GenerateSchedule(5_000_000, 6, 2.2, requestedAt)
		assert.Equal(t, expected[0].Amount, schedule[0].Amount)
		f.applicants.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		f.repo.AssertExpectations(t)
	})

	t.Run("Rejected request conflicts", func(t *testing.T) {
		f := setupService()
		reqID := uuid.New()
		f.repo.On("GetRequestByID", ctx, reqID).
			Return(&loan.LoanRequest{ID: reqID, Status: underwriting.StatusRejected}, nil).Once()

		_, err := f.service.RetrySchedule(ctx, reqID)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
		f.repo.AssertNotCalled(t, "CreateSchedule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown request", func(t *testing.T) {
		f := setupService()
		reqID := uuid.New()
		f.repo.On("GetRequestByID", ctx, reqID).Return(nil, apperrors.ErrNotFound).Once()

		_, err := f.service.RetrySchedule(ctx, reqID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestLoanService_Queries(t *testing.T) {
	ctx := context.Background()

	t.Run("GetRequest with schedule", func(t *testing.T) {
		f := setupService()
		reqID := uuid.New()
		schedule := []loan.Installment{{ID: uuid.New(), RequestID: reqID, Number: 1}}
		f.repo.On("GetRequestByID", ctx, reqID).Return(&loan.LoanRequest{ID: reqID}, nil).Once()
		f.repo.On("GetScheduleByRequestID", ctx, reqID).Return(schedule, nil).Once()

		req, err := f.service.GetRequest(ctx, reqID, true)

		require.NoError(t, err)
		assert.Equal(t, schedule, req.Schedule)
	})

	t.Run("GetSchedule of unknown request", func(t *testing.T) {
		f := setupService()
		reqID := uuid.New()
		f.repo.On("GetRequestByID", ctx, reqID).Return(nil, apperrors.ErrNotFound).Once()

		_, err := f.service.GetSchedule(ctx, reqID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.repo.AssertNotCalled(t, "GetScheduleByRequestID", mock.Anything, mock.Anything)
	})

	t.Run("GetOutstanding", func(t *testing.T) {
		f := setupService()
		reqID := uuid.New()
		f.repo.On("GetRequestByID", ctx, reqID).Return(&loan.LoanRequest{ID: reqID}, nil).Once()
		f.repo.On("GetOutstandingAmount", ctx, reqID).Return(loan.Money(194_974.261), nil).Once()

		outstanding, err := f.service.GetOutstanding(ctx, reqID)

		require.NoError(t, err)
		assert.Equal(t, 194_974.26, outstanding)
	})

	t.Run("ListApplicantRequests loads schedules of non rejected requests", func(t *testing.T) {
		f := setupService()
		app := registeredApplicant(2_000_000)
		approved := loan.LoanRequest{ID: uuid.New(), Status: underwriting.StatusApproved}
		rejected := loan.LoanRequest{ID: uuid.New(), Status: underwriting.StatusRejected}
		schedule := []loan.Installment{{ID: uuid.New(), RequestID: approved.ID, Number: 1}}

		f.applicants.On("GetByEmail", ctx, "ana@example.com").Return(app, nil).Once()
		f.repo.On("ListRequestsByApplicant", ctx, app.ID).Return([]loan.LoanRequest{approved, rejected}, nil).Once()
		f.repo.On("GetScheduleByRequestID", ctx, approved.ID).Return(schedule, nil).Once()

		result, err := f.service.ListApplicantRequests(ctx, "ana@example.com")

		require.NoError(t, err)
		assert.Equal(t, app, result.Applicant)
		require.Len(t, result.Requests, 2)
		assert.Equal(t, schedule, result.Requests[0].Schedule)
		assert.Empty(t, result.Requests[1].Schedule)
		f.repo.AssertNotCalled(t, "GetScheduleByRequestID", ctx, rejected.ID)
	})

	t.Run("ListApplicantRequests for unknown email", func(t *testing.T) {
		f := setupService()
		f.applicants.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

		_, err := f.service.ListApplicantRequests(ctx, "nobody@example.com")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
