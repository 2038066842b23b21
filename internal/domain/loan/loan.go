package loan

import (
	"math"
	"time"

	"loan-underwriter/internal/domain/underwriting"

	"github.com/google/uuid"
)

type Money = float64

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
)

type LoanRequest struct {
	ID           uuid.UUID
	ApplicantID  uuid.UUID
	Amount       Money
	TermMonths   int
	InterestRate float64
	Status       underwriting.Status
	MaxAmount    Money
	Message      string
	RequestedAt  time.Time
	// ApprovedAt is set iff Status is approved.
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Schedule   []Installment
}

func (r *LoanRequest) Rejected() bool {
	return r.Status == underwriting.StatusRejected
}

type Installment struct {
	ID               uuid.UUID
	RequestID        uuid.UUID
	Number           int
	DueDate          time.Time
	Amount           Money
	Principal        Money
	Interest         Money
	RemainingBalance Money
	Status           InstallmentStatus
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (i *Installment) Paid() bool {
	return i.Status == InstallmentPaid
}

func roundTo(n float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(n*pow) / pow
}
