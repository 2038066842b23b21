package applicant

import "context"

type Repository interface {
	// Upsert inserts the applicant or updates the row that already holds its
	// email, returning the stored record.
	Upsert(ctx context.Context, applicant *Applicant) (*Applicant, error)

	FindByEmail(ctx context.Context, email string) (*Applicant, error)
}
