package applicant

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Upsert(ctx context.Context, applicant *Applicant) (*Applicant, error) {
	ret := _m.Called(ctx, applicant)

	var r0 *Applicant
	if rf, ok := ret.Get(0).(func(context.Context, *Applicant) *Applicant); ok {
		r0 = rf(ctx, applicant)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Applicant)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindByEmail(ctx context.Context, email string) (*Applicant, error) {
	ret := _m.Called(ctx, email)

	var r0 *Applicant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Applicant)
	}
	return r0, ret.Error(1)
}

var _ Repository = (*MockRepository)(nil)
