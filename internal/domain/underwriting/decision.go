package underwriting

type Status string

const (
	StatusRejected Status = "rejected"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRejected, StatusInReview, StatusApproved:
		return true
	}
	return false
}

// Outcome is the closed set of underwriting results. Only Rejected, InReview
// and Approved implement it.
type Outcome interface {
	Status() Status
	Rate() float64
	isOutcome()
}

type Rejected struct{}

func (Rejected) Status() Status { return StatusRejected }
func (Rejected) Rate() float64  { return 0 }
func (Rejected) isOutcome()     {}

// InReview carries the monthly rate percent that applies if the external
// review approves the request.
type InReview struct {
	MonthlyRate float64
}

func (InReview) Status() Status  { return StatusInReview }
func (o InReview) Rate() float64 { return o.MonthlyRate }
func (InReview) isOutcome()      {}

type Approved struct {
	MonthlyRate float64
}

func (Approved) Status() Status  { return StatusApproved }
func (o Approved) Rate() float64 { return o.MonthlyRate }
func (Approved) isOutcome()      {}

type Decision struct {
	Outcome   Outcome
	MaxAmount float64
	Message   string
}

func (d Decision) Status() Status {
	return d.Outcome.Status()
}

// InterestRate is the assigned monthly rate in percent, 0 when rejected.
func (d Decision) InterestRate() float64 {
	return d.Outcome.Rate()
}

func (d Decision) Rejected() bool {
	_, ok := d.Outcome.(Rejected)
	return ok
}
