package underwriting

import (
	"fmt"
	"os"

	"loan-underwriter/internal/pkg/apperrors"

	"gopkg.in/yaml.v3"
)

// Policy holds the scoring thresholds. Incomes and amounts share one currency
// unit; rates are monthly percentages.
type Policy struct {
	MinIncome                   float64 `yaml:"minIncome"`
	MaxPaymentRatio             float64 `yaml:"maxPaymentRatio"`
	AffordabilityMonths         int     `yaml:"affordabilityMonths"`
	HighTierIncome              float64 `yaml:"highTierIncome"`
	PreferentialRate            float64 `yaml:"preferentialRate"`
	StandardRate                float64 `yaml:"standardRate"`
	PreferentialLimitMultiplier float64 `yaml:"preferentialLimitMultiplier"`
	StandardLimitMultiplier     float64 `yaml:"standardLimitMultiplier"`
	ReducedLimitIncomeShare     float64 `yaml:"reducedLimitIncomeShare"`
	ReducedLimitMonths          int     `yaml:"reducedLimitMonths"`
	MaxTermMonths               int     `yaml:"maxTermMonths"`
}

func DefaultPolicy() Policy {
	return Policy{
		MinIncome:                   1_500_000,
		MaxPaymentRatio:             0.45,
		AffordabilityMonths:         12,
		HighTierIncome:              3_000_000,
		PreferentialRate:            1.5,
		StandardRate:                2.2,
		PreferentialLimitMultiplier: 10,
		StandardLimitMultiplier:     5,
		ReducedLimitIncomeShare:     0.3,
		ReducedLimitMonths:          12,
		MaxTermMonths:               360,
	}
}

func (p Policy) Validate() error {
	switch {
	case p.MinIncome < 0:
		return apperrors.NewValidationError("minIncome", "must not be negative")
	case p.MaxPaymentRatio <= 0 || p.MaxPaymentRatio > 1:
		return apperrors.NewValidationError("maxPaymentRatio", "must be in (0, 1]")
	case p.AffordabilityMonths <= 0:
		return apperrors.NewValidationError("affordabilityMonths", "must be positive")
	case p.HighTierIncome < p.MinIncome:
		return apperrors.NewValidationError("highTierIncome", "must not be below minIncome")
	case p.PreferentialRate < 0 || p.StandardRate < 0:
		return apperrors.NewValidationError("rate", "rates must not be negative")
	case p.PreferentialLimitMultiplier <= 0 || p.StandardLimitMultiplier <= 0:
		return apperrors.NewValidationError("limitMultiplier", "must be positive")
	case p.ReducedLimitIncomeShare < 0 || p.ReducedLimitMonths < 0:
		return apperrors.NewValidationError("reducedLimit", "must not be negative")
	case p.MaxTermMonths <= 0:
		return apperrors.NewValidationError("maxTermMonths", "must be positive")
	}
	return nil
}

// LoadPolicyFile reads a YAML policy. Keys missing from the file keep their
// DefaultPolicy values.
func LoadPolicyFile(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("%w: parse policy file %s: %w", apperrors.ErrInvalidArgument, path, err)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}
