package event

import (
	"context"
	"errors"
	"time"
)

type EventPublisher interface {
	PublishLoanDecided(ctx context.Context, event LoanDecidedEvent) error
	PublishInstallmentPaid(ctx context.Context, event InstallmentPaidEvent) error
}

type LoanDecidedEvent struct {
	RequestID      string    `json:"requestId"`
	ApplicantID    string    `json:"applicantId"`
	ApplicantEmail string    `json:"applicantEmail"`
	ApplicantName  string    `json:"applicantName"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	Amount         float64   `json:"amount"`
	TermMonths     int       `json:"termMonths"`
	InterestRate   float64   `json:"interestRate"`
	MaxAmount      float64   `json:"maxAmount"`
	MonthlyPayment float64   `json:"monthlyPayment"`
	TotalPayment   float64   `json:"totalPayment"`
	Timestamp      time.Time `json:"timestamp"`
}

type InstallmentPaidEvent struct {
	InstallmentID string    `json:"installmentId"`
	RequestID     string    `json:"requestId"`
	Number        int       `json:"number"`
	Amount        float64   `json:"amount"`
	PaidAt        time.Time `json:"paidAt"`
}

type NoopPublisher struct{}

func (NoopPublisher) PublishLoanDecided(context.Context, LoanDecidedEvent) error { return nil }

func (NoopPublisher) PublishInstallmentPaid(context.Context, InstallmentPaidEvent) error { return nil }

// MultiPublisher fans an event out to every publisher, continuing past failures.
type MultiPublisher []EventPublisher

func (m MultiPublisher) PublishLoanDecided(ctx context.Context, event LoanDecidedEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishLoanDecided(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiPublisher) PublishInstallmentPaid(ctx context.Context, event InstallmentPaidEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishInstallmentPaid(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ EventPublisher = NoopPublisher{}
	_ EventPublisher = MultiPublisher(nil)
)
