package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"

	"loan-underwriter/internal/config"
	"loan-underwriter/internal/domain/underwriting"
	"loan-underwriter/internal/event"

	"github.com/jordan-wright/email"
)

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

func smtpSend(e *email.Email, addr string, auth smtp.Auth) error {
	return e.Send(addr, auth)
}

// EmailNotifier mails the applicant the outcome of each submission.
type EmailNotifier struct {
	from   string
	addr   string
	auth   smtp.Auth
	send   sendFunc
	logger *slog.Logger
}

var _ event.EventPublisher = (*EmailNotifier)(nil)

func NewEmailNotifier(cfg config.SMTPConfig, logger *slog.Logger) *EmailNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &EmailNotifier{
		from:   cfg.From,
		addr:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		auth:   auth,
		send:   smtpSend,
		logger: logger.With("component", "EmailNotifier"),
	}
}

func (n *EmailNotifier) PublishLoanDecided(ctx context.Context, evt event.LoanDecidedEvent) error {
	if evt.ApplicantEmail == "" {
		n.logger.WarnContext(ctx, "Decision has no recipient, skipping e-mail", "requestID", evt.RequestID)
		return nil
	}

	e := buildDecisionEmail(n.from, evt)
	if err := n.send(e, n.addr, n.auth); err != nil {
		n.logger.ErrorContext(ctx, "Failed to send decision e-mail", "requestID", evt.RequestID, slog.Any("error", err))
		return fmt.Errorf("failed to send decision e-mail: %w", err)
	}

	n.logger.InfoContext(ctx, "Decision e-mail sent", "requestID", evt.RequestID, "subject", e.Subject)
	return nil
}

// PublishInstallmentPaid is a no-op: payments are confirmed synchronously.
func (n *EmailNotifier) PublishInstallmentPaid(context.Context, event.InstallmentPaidEvent) error {
	return nil
}

func buildDecisionEmail(from string, evt event.LoanDecidedEvent) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{evt.ApplicantEmail}

	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\n", evt.ApplicantName)
	fmt.Fprintf(&body, "Your request %s for %.2f over %d months has been reviewed.\n", evt.RequestID, evt.Amount, evt.TermMonths)

	switch underwriting.Status(evt.Status) {
	case underwriting.StatusApproved:
		e.Subject = "Your loan has been approved"
		fmt.Fprintf(&body, "%s\n\nMonthly rate: %.2f%%\nMonthly payment: %.2f\nTotal payment: %.2f\n",
			evt.Message, evt.InterestRate, evt.MonthlyPayment, evt.TotalPayment)
	case underwriting.StatusInReview:
		e.Subject = "Your loan application is under review"
		fmt.Fprintf(&body, "%s\n\nIndicative monthly rate: %.2f%%\nIndicative monthly payment: %.2f\nMaximum amount: %.2f\n",
			evt.Message, evt.InterestRate, evt.MonthlyPayment, evt.MaxAmount)
	default:
		e.Subject = "Your loan application was not approved"
		fmt.Fprintf(&body, "%s\n", evt.Message)
	}

	body.WriteString("\nBest regards,\nLoan Underwriting")
	e.Text = []byte(body.String())
	return e
}
