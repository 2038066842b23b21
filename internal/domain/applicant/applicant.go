package applicant

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"loan-underwriter/internal/pkg/apperrors"

	"github.com/google/uuid"
)

var (
	namePattern  = regexp.MustCompile(`^[\p{L}\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s-]+$`)
)

// Profile is the applicant data submitted with a loan request.
type Profile struct {
	FullName      string
	Email         string
	Phone         string
	MonthlyIncome float64
}

type Applicant struct {
	ID            uuid.UUID
	FullName      string
	Email         string
	Phone         string
	MonthlyIncome float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims every text field and lower-cases the email.
func (p Profile) Normalize() Profile {
	return Profile{
		FullName:      strings.Join(strings.Fields(p.FullName), " "),
		Email:         NormalizeEmail(p.Email),
		Phone:         strings.TrimSpace(p.Phone),
		MonthlyIncome: p.MonthlyIncome,
	}
}

// Validate expects a normalized profile.
func (p Profile) Validate() error {
	nameLen := utf8.RuneCountInString(p.FullName)
	if nameLen < 3 || nameLen > 100 {
		return apperrors.NewValidationError("fullName", "must be between 3 and 100 characters")
	}
	if !namePattern.MatchString(p.FullName) {
		return apperrors.NewValidationError("fullName", "must contain only letters and spaces")
	}

	if p.Email == "" {
		return apperrors.NewValidationError("email", "is required")
	}
	addr, err := mail.ParseAddress(p.Email)
	if err != nil || addr.Address != p.Email {
		return apperrors.NewValidationError("email", "is not a valid email address")
	}

	if p.Phone != "" {
		if len(p.Phone) < 10 || len(p.Phone) > 15 {
			return apperrors.NewValidationError("phone", "must be between 10 and 15 characters")
		}
		if !phonePattern.MatchString(p.Phone) {
			return apperrors.NewValidationError("phone", "may contain only digits, spaces, dashes and a leading +")
		}
	}

	if p.MonthlyIncome <= 0 {
		return apperrors.NewValidationError("monthlyIncome", "must be greater than zero")
	}
	return nil
}
