package underwriting

import "fmt"

// Scorer turns a declared income and requested principal into a Decision.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	policy Policy
}

func NewScorer(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

func (s *Scorer) Policy() Policy {
	return s.policy
}

// Evaluate applies the rules in order; the first match decides.
func (s *Scorer) Evaluate(monthlyIncome, requestedAmount float64) Decision {
	p := s.policy

	if monthlyIncome < p.MinIncome {
		return Decision{
			Outcome:   Rejected{},
			MaxAmount: 0,
			Message:   fmt.Sprintf("monthly income below the minimum of %.2f", p.MinIncome),
		}
	}

	monthlyBurden := requestedAmount / float64(p.AffordabilityMonths)
	if monthlyBurden > monthlyIncome*p.MaxPaymentRatio {
		return Decision{
			Outcome:   Rejected{},
			MaxAmount: monthlyIncome * p.ReducedLimitIncomeShare * float64(p.ReducedLimitMonths),
			Message:   fmt.Sprintf("requested amount exceeds %.0f%% of monthly income", p.MaxPaymentRatio*100),
		}
	}

	if monthlyIncome >= p.HighTierIncome {
		return Decision{
			Outcome:   Approved{MonthlyRate: p.PreferentialRate},
			MaxAmount: monthlyIncome * p.PreferentialLimitMultiplier,
			Message:   "approved with preferential rate",
		}
	}

	return Decision{
		Outcome:   InReview{MonthlyRate: p.StandardRate},
		MaxAmount: monthlyIncome * p.StandardLimitMultiplier,
		Message:   "pending manual review with standard rate",
	}
}
