package dto

import (
	"fmt"
	"time"

	"loan-underwriter/internal/domain/applicant"
	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// SubmitApplicationRequest accepts money as JSON numbers or strings.
type SubmitApplicationRequest struct {
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome" swaggertype:"string" example:"4000000"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"1000000"`
	TermMonths    int             `json:"termMonths" example:"12"`
}

// Validate checks the application shape. A maxTermMonths of zero leaves the
// term unbounded.
func (r *SubmitApplicationRequest) Validate(maxTermMonths int) error {
	if r.TermMonths <= 0 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInvalidTerm, r.TermMonths)
	}
	if maxTermMonths > 0 && r.TermMonths > maxTermMonths {
		return fmt.Errorf("%w: got %d, maximum is %d", apperrors.ErrInvalidTerm, r.TermMonths, maxTermMonths)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, r.Amount.String())
	}
	return r.profile().Validate()
}

func (r *SubmitApplicationRequest) profile() applicant.Profile {
	income, _ := r.MonthlyIncome.Float64()
	return applicant.Profile{
		FullName:      r.FullName,
		Email:         r.Email,
		Phone:         r.Phone,
		MonthlyIncome: income,
	}.Normalize()
}

func (r *SubmitApplicationRequest) ToInput() loan.SubmitInput {
	amount, _ := r.Amount.Round(2).Float64()
	return loan.SubmitInput{
		Profile:    r.profile(),
		Amount:     amount,
		TermMonths: r.TermMonths,
	}
}

type SubmitApplicationResponse struct {
	RequestID      string                `json:"requestId"`
	ApplicantID    string                `json:"applicantId"`
	Status         string                `json:"status"`
	Message        string                `json:"message"`
	InterestRate   string                `json:"interestRate"`
	MaxAmount      string                `json:"maxAmount"`
	MonthlyPayment string                `json:"monthlyPayment"`
	TotalPayment   string                `json:"totalPayment"`
	TotalInterest  string                `json:"totalInterest"`
	Schedule       []InstallmentResponse `json:"schedule,omitempty"`
}

type LoanRequestResponse struct {
	ID           string                `json:"id"`
	ApplicantID  string                `json:"applicantId"`
	Amount       string                `json:"amount"`
	TermMonths   int                   `json:"termMonths"`
	InterestRate string                `json:"interestRate"`
	Status       string                `json:"status"`
	MaxAmount    string                `json:"maxAmount"`
	Message      string                `json:"message"`
	RequestedAt  time.Time             `json:"requestedAt"`
	ApprovedAt   *time.Time            `json:"approvedAt,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Schedule     []InstallmentResponse `json:"schedule,omitempty"`
}

type InstallmentResponse struct {
	ID               string     `json:"id"`
	Number           int        `json:"number"`
	DueDate          string     `json:"dueDate"`
	Amount           string     `json:"amount"`
	Principal        string     `json:"principal"`
	Interest         string     `json:"interest"`
	RemainingBalance string     `json:"remainingBalance"`
	Status           string     `json:"status"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

type ScheduleResponse struct {
	RequestID      string                `json:"requestId"`
	MonthlyPayment string                `json:"monthlyPayment"`
	TotalPayment   string                `json:"totalPayment"`
	TotalInterest  string                `json:"totalInterest"`
	Installments   []InstallmentResponse `json:"installments"`
}

type OutstandingResponse struct {
	RequestID         string `json:"requestId"`
	OutstandingAmount string `json:"outstandingAmount"`
}

type ApplicantLoansResponse struct {
	ApplicantID   string                `json:"applicantId"`
	FullName      string                `json:"fullName"`
	Email         string                `json:"email"`
	Phone         string                `json:"phone,omitempty"`
	MonthlyIncome string                `json:"monthlyIncome"`
	Requests      []LoanRequestResponse `json:"requests"`
}

type ErrorDetail struct {
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username   string `json:"username"`
	AccessCode string `json:"accessCode,omitempty"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatRate(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func NewSubmitApplicationResponse(result *loan.SubmitResult) SubmitApplicationResponse {
	req := result.Request
	resp := SubmitApplicationResponse{
		RequestID:      req.ID.String(),
		ApplicantID:    result.Applicant.ID.String(),
		Status:         string(req.Status),
		Message:        req.Message,
		InterestRate:   formatRate(req.InterestRate),
		MaxAmount:      formatMoney(req.MaxAmount),
		MonthlyPayment: formatMoney(result.Summary.MonthlyPayment),
		TotalPayment:   formatMoney(result.Summary.TotalPayment),
		TotalInterest:  formatMoney(result.Summary.TotalInterest),
	}
	if len(req.Schedule) > 0 {
		resp.Schedule = NewInstallmentResponses(req.Schedule)
	}
	return resp
}

func NewLoanRequestResponse(req *loan.LoanRequest, includeSchedule bool) LoanRequestResponse {
	resp := LoanRequestResponse{
		ID:           req.ID.String(),
		ApplicantID:  req.ApplicantID.String(),
		Amount:       formatMoney(req.Amount),
		TermMonths:   req.TermMonths,
		InterestRate: formatRate(req.InterestRate),
		Status:       string(req.Status),
		MaxAmount:    formatMoney(req.MaxAmount),
		Message:      req.Message,
		RequestedAt:  req.RequestedAt,
		ApprovedAt:   req.ApprovedAt,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
	}
	if includeSchedule && req.Schedule != nil {
		resp.Schedule = NewInstallmentResponses(req.Schedule)
	}
	return resp
}

func NewInstallmentResponse(inst *loan.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:               inst.ID.String(),
		Number:           inst.Number,
		DueDate:          inst.DueDate.Format(dateLayout),
		Amount:           formatMoney(inst.Amount),
		Principal:        formatMoney(inst.Principal),
		Interest:         formatMoney(inst.Interest),
		RemainingBalance: formatMoney(inst.RemainingBalance),
		Status:           string(inst.Status),
		PaidAt:           inst.PaidAt,
	}
}

func NewInstallmentResponses(schedule []loan.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, len(schedule))
	for i := range schedule {
		out[i] = NewInstallmentResponse(&schedule[i])
	}
	return out
}

func NewScheduleResponse(requestID string, schedule []loan.Installment) ScheduleResponse {
	summary := loan.Summarize(schedule)
	return ScheduleResponse{
		RequestID:      requestID,
		MonthlyPayment: formatMoney(summary.MonthlyPayment),
		TotalPayment:   formatMoney(summary.TotalPayment),
		TotalInterest:  formatMoney(summary.TotalInterest),
		Installments:   NewInstallmentResponses(schedule),
	}
}

func NewOutstandingResponse(requestID string, outstanding float64) OutstandingResponse {
	return OutstandingResponse{RequestID: requestID, OutstandingAmount: formatMoney(outstanding)}
}

func NewApplicantLoansResponse(loans *loan.ApplicantLoans) ApplicantLoansResponse {
	app := loans.Applicant
	resp := ApplicantLoansResponse{
		ApplicantID:   app.ID.String(),
		FullName:      app.FullName,
		Email:         app.Email,
		Phone:         app.Phone,
		MonthlyIncome: formatMoney(app.MonthlyIncome),
		Requests:      make([]LoanRequestResponse, len(loans.Requests)),
	}
	for i := range loans.Requests {
		resp.Requests[i] = NewLoanRequestResponse(&loans.Requests[i], true)
	}
	return resp
}
