package loan

import (
	"fmt"
	"math"
	"time"

	"loan-underwriter/internal/pkg/apperrors"
)

type Summary struct {
	MonthlyPayment Money
	TotalPayment   Money
	TotalInterest  Money
}

// FixedPayment returns the annuity installment for the given principal, term
// and monthly rate in percent, unrounded. The factor is computed as
// 1-(1+i)^-n through Log1p/Expm1 so long terms and tiny rates stay finite.
func FixedPayment(amount Money, termMonths int, monthlyRatePercent float64) Money {
	i := monthlyRatePercent / 100
	if i == 0 {
		return amount / float64(termMonths)
	}
	discount := -math.Expm1(-float64(termMonths) * math.Log1p(i))
	if discount == 0 {
		return amount / float64(termMonths)
	}
	return amount * i / discount
}

// GenerateSchedule builds the pending installments of a fixed-payment loan.
// Interest accrues on the rounded outstanding balance and the last installment
// settles whatever principal remains, so principals sum to amount and the
// final remaining balance is exactly zero.
func GenerateSchedule(amount Money, termMonths int, monthlyRatePercent float64, start time.Time) ([]Installment, error) {
	if termMonths <= 0 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidTerm, termMonths)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: got %.2f", apperrors.ErrInvalidAmount, amount)
	}
	if monthlyRatePercent < 0 || math.IsNaN(monthlyRatePercent) {
		return nil, fmt.Errorf("%w: monthly rate must not be negative", apperrors.ErrInvalidArgument)
	}

	i := monthlyRatePercent / 100
	payment := roundTo(FixedPayment(amount, termMonths, monthlyRatePercent), 2)
	start = truncateToDay(start)

	schedule := make([]Installment, 0, termMonths)
	remaining := roundTo(amount, 2)

	for n := 1; n <= termMonths; n++ {
		interest := roundTo(remaining*i, 2)

		var principal, due Money
		if n == termMonths {
			principal = remaining
			due = roundTo(principal+interest, 2)
		} else {
			principal = roundTo(payment-interest, 2)
			if principal > remaining {
				principal = remaining
			}
			due = roundTo(principal+interest, 2)
		}
		remaining = roundTo(remaining-principal, 2)

		schedule = append(schedule, Installment{
			Number:           n,
			DueDate:          AddMonths(start, n),
			Amount:           due,
			Principal:        principal,
			Interest:         interest,
			RemainingBalance: remaining,
			Status:           InstallmentPending,
		})
	}

	return schedule, nil
}

// AddMonths advances t by n calendar months, clamping the day to the last day
// of the target month (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	lastDay := time.Date(year, month+time.Month(n)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, min, sec := t.Clock()
	return time.Date(year, month+time.Month(n), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func Summarize(schedule []Installment) Summary {
	if len(schedule) == 0 {
		return Summary{}
	}
	var total, interest Money
	for _, inst := range schedule {
		total += inst.Amount
		interest += inst.Interest
	}
	return Summary{
		MonthlyPayment: schedule[0].Amount,
		TotalPayment:   roundTo(total, 2),
		TotalInterest:  roundTo(interest, 2),
	}
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
