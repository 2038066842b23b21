package loan_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/event"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryInstallmentStore mimics the conditional update of the SQL store.
type memoryInstallmentStore struct {
	mu           sync.Mutex
	installments map[uuid.UUID]*loan.Installment
}

func (s *memoryInstallmentStore) MarkInstallmentPaid(_ context.Context, id uuid.UUID, paidAt time.Time) (*loan.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.installments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if inst.Status == loan.InstallmentPaid {
		return nil, apperrors.ErrAlreadyPaid
	}
	inst.Status = loan.InstallmentPaid
	inst.PaidAt = &paidAt
	copied := *inst
	return &copied, nil
}

func TestLedger_Pay(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	clock := loan.WithClock(func() time.Time { return paidAt })

	t.Run("Pending installment becomes paid", func(t *testing.T) {
		repo := new(loan.MockRepository)
		pub := new(loan.MockPublisher)
		ledger := loan.NewLedger(repo, pub, logger, clock)

		instID, reqID := uuid.New(), uuid.New()
		paid := &loan.Installment{ID: instID, RequestID: reqID, Number: 2, Amount: 97_487.13, Status: loan.InstallmentPaid, PaidAt: &paidAt}
		repo.On("MarkInstallmentPaid", ctx, instID, paidAt).Return(paid, nil).Once()
		pub.On("PublishInstallmentPaid", ctx, event.InstallmentPaidEvent{
			InstallmentID: instID.String(),
			RequestID:     reqID.String(),
			Number:        2,
			Amount:        97_487.13,
			PaidAt:        paidAt,
		}).Return(nil).Once()

		got, err := ledger.Pay(ctx, instID)

		require.NoError(t, err)
		assert.Equal(t, loan.InstallmentPaid, got.Status)
		assert.Equal(t, paidAt, *got.PaidAt)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("Unknown installment", func(t *testing.T) {
		repo := new(loan.MockRepository)
		pub := new(loan.MockPublisher)
		ledger := loan.NewLedger(repo, pub, logger, clock)
		instID := uuid.New()
		repo.On("MarkInstallmentPaid", ctx, instID, paidAt).Return(nil, apperrors.ErrNotFound).Once()

		_, err := ledger.Pay(ctx, instID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		pub.AssertNotCalled(t, "PublishInstallmentPaid", mock.Anything, mock.Anything)
	})

	t.Run("Second payment reports already paid", func(t *testing.T) {
		repo := new(loan.MockRepository)
		pub := new(loan.MockPublisher)
		ledger := loan.NewLedger(repo, pub, logger, clock)
		instID := uuid.New()
		repo.On("MarkInstallmentPaid", ctx, instID, paidAt).Return(nil, apperrors.ErrAlreadyPaid).Once()

		_, err := ledger.Pay(ctx, instID)

		assert.ErrorIs(t, err, apperrors.ErrAlreadyPaid)
		pub.AssertNotCalled(t, "PublishInstallmentPaid", mock.Anything, mock.Anything)
	})

	t.Run("Publish failure keeps the payment", func(t *testing.T) {
		repo := new(loan.MockRepository)
		pub := new(loan.MockPublisher)
		ledger := loan.NewLedger(repo, pub, logger, clock)
		instID := uuid.New()
		repo.On("MarkInstallmentPaid", ctx, instID, paidAt).
			Return(&loan.Installment{ID: instID, Status: loan.InstallmentPaid, PaidAt: &paidAt}, nil).Once()
		pub.On("PublishInstallmentPaid", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		got, err := ledger.Pay(ctx, instID)

		require.NoError(t, err)
		assert.True(t, got.Paid())
	})

	t.Run("Nil publisher is allowed", func(t *testing.T) {
		repo := new(loan.MockRepository)
		ledger := loan.NewLedger(repo, nil, logger, clock)
		instID := uuid.New()
		repo.On("MarkInstallmentPaid", ctx, instID, paidAt).
			Return(&loan.Installment{ID: instID, Status: loan.InstallmentPaid, PaidAt: &paidAt}, nil).Once()

		_, err := ledger.Pay(ctx, instID)

		assert.NoError(t, err)
	})
}

func TestLedger_ConcurrentPayments(t *testing.T) {
	instID := uuid.New()
	sibling := &loan.Installment{ID: uuid.New(), Number: 2, Status: loan.InstallmentPending}
	store := &memoryInstallmentStore{installments: map[uuid.UUID]*loan.Installment{
		instID:     {ID: instID, Number: 1, Status: loan.InstallmentPending},
		sibling.ID: sibling,
	}}
	ledger := loan.NewLedger(store, event.NoopPublisher{}, logger)

	var succeeded, alreadyPaid atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Pay(context.Background(), instID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperrors.ErrAlreadyPaid):
				alreadyPaid.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(15), alreadyPaid.Load())
	assert.Equal(t, loan.InstallmentPending, sibling.Status)
}
