package loan

import (
	"context"
	"time"

	"loan-underwriter/internal/domain/applicant"
	"loan-underwriter/internal/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) MarkInstallmentPaid(ctx context.Context, installmentID uuid.UUID, paidAt time.Time) (*Installment, error) {
	ret := _m.Called(ctx, installmentID, paidAt)
	var r0 *Installment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) CreateRequestWithSchedule(ctx context.Context, req *LoanRequest, schedule []Installment) (*LoanRequest, error) {
	ret := _m.Called(ctx, req, schedule)
	var r0 *LoanRequest
	if rf, ok := ret.Get(0).(func(context.Context, *LoanRequest, []Installment) *LoanRequest); ok {
		r0 = rf(ctx, req, schedule)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*LoanRequest)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) CreateSchedule(ctx context.Context, requestID uuid.UUID, schedule []Installment) ([]Installment, error) {
	ret := _m.Called(ctx, requestID, schedule)
	var r0 []Installment
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, []Installment) []Installment); ok {
		r0 = rf(ctx, requestID, schedule)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetRequestByID(ctx context.Context, requestID uuid.UUID) (*LoanRequest, error) {
	ret := _m.Called(ctx, requestID)
	var r0 *LoanRequest
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*LoanRequest)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetScheduleByRequestID(ctx context.Context, requestID uuid.UUID) ([]Installment, error) {
	ret := _m.Called(ctx, requestID)
	var r0 []Installment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListRequestsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]LoanRequest, error) {
	ret := _m.Called(ctx, applicantID)
	var r0 []LoanRequest
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]LoanRequest)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindRequestsMissingSchedule(ctx context.Context, limit int) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, limit)
	var r0 []uuid.UUID
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetOutstandingAmount(ctx context.Context, requestID uuid.UUID) (Money, error) {
	ret := _m.Called(ctx, requestID)
	return ret.Get(0).(Money), ret.Error(1)
}

var _ Repository = (*MockRepository)(nil)

type MockApplicantService struct {
	mock.Mock
}

func (_m *MockApplicantService) Register(ctx context.Context, profile applicant.Profile) (*applicant.Applicant, error) {
	ret := _m.Called(ctx, profile)
	var r0 *applicant.Applicant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*applicant.Applicant)
	}
	return r0, ret.Error(1)
}

func (_m *MockApplicantService) GetByEmail(ctx context.Context, email string) (*applicant.Applicant, error) {
	ret := _m.Called(ctx, email)
	var r0 *applicant.Applicant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*applicant.Applicant)
	}
	return r0, ret.Error(1)
}

var _ applicant.ApplicantService = (*MockApplicantService)(nil)

type MockPublisher struct {
	mock.Mock
}

func (_m *MockPublisher) PublishLoanDecided(ctx context.Context, evt event.LoanDecidedEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

func (_m *MockPublisher) PublishInstallmentPaid(ctx context.Context, evt event.InstallmentPaidEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

var _ event.EventPublisher = (*MockPublisher)(nil)
