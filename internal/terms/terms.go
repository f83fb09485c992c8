package terms

import "fmt"

// PaymentTiming is the cadence at which a buyer settles lead payouts.
type PaymentTiming string

const (
	TimingPerLead  PaymentTiming = "per_lead"
	TimingWeekly   PaymentTiming = "weekly"
	TimingBiweekly PaymentTiming = "biweekly"
	TimingMonthly  PaymentTiming = "monthly"
)

// Rate bounds for a single lead, in cents.
const (
	MinRatePerLead int64 = 500   // $5.00
	MaxRatePerLead int64 = 50000 // $500.00
)

// LeadCaps limits how many leads a buyer is obligated to pay for per window.
// A nil limit means unlimited for that window.
type LeadCaps struct {
	WeeklyLimit         *int `json:"weekly_limit,omitempty"`
	MonthlyLimit        *int `json:"monthly_limit,omitempty"`
	PauseWhenCapReached bool `json:"pause_when_cap_reached"`
}

// ContractTerms is the negotiated agreement attached to a connection.
// It is replaced wholesale on renegotiation, never partially mutated.
type ContractTerms struct {
	RatePerLead            int64         `json:"rate_per_lead"` // cents
	PaymentTiming          PaymentTiming `json:"payment_timing"`
	LeadTypes              []string      `json:"lead_types,omitempty"`
	Exclusivity            bool          `json:"exclusivity"`
	TerminationNoticeDays  int           `json:"termination_notice_days"`
	LeadCaps               *LeadCaps     `json:"lead_caps,omitempty"`
	LicensedStates         []string      `json:"licensed_states,omitempty"`
	ComplianceAcknowledged bool          `json:"compliance_acknowledged"`
	AgreementVersion       string        `json:"agreement_version"`
}

// ValidationError reports a single out-of-bounds or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid terms: %s: %s", e.Field, e.Message)
}

// Validate checks the terms against the contract rules. It has no side
// effects and is safe to call concurrently.
func Validate(t ContractTerms) error {
	if t.RatePerLead < MinRatePerLead || t.RatePerLead > MaxRatePerLead {
		return &ValidationError{
			Field: "rate_per_lead",
			Message: fmt.Sprintf("must be between %d and %d cents, got %d",
				MinRatePerLead, MaxRatePerLead, t.RatePerLead),
		}
	}

	switch t.PaymentTiming {
	case TimingPerLead, TimingWeekly, TimingBiweekly, TimingMonthly:
	default:
		return &ValidationError{
			Field:   "payment_timing",
			Message: fmt.Sprintf("must be one of per_lead, weekly, biweekly, monthly, got %q", t.PaymentTiming),
		}
	}

	if t.TerminationNoticeDays < 0 {
		return &ValidationError{
			Field:   "termination_notice_days",
			Message: fmt.Sprintf("must be >= 0, got %d", t.TerminationNoticeDays),
		}
	}

	if t.LeadCaps != nil {
		if l := t.LeadCaps.WeeklyLimit; l != nil && *l <= 0 {
			return &ValidationError{
				Field:   "lead_caps.weekly_limit",
				Message: fmt.Sprintf("must be a positive integer, got %d", *l),
			}
		}

		if l := t.LeadCaps.MonthlyLimit; l != nil && *l <= 0 {
			return &ValidationError{
				Field:   "lead_caps.monthly_limit",
				Message: fmt.Sprintf("must be a positive integer, got %d", *l),
			}
		}
	}

	for _, s := range t.LicensedStates {
		if len(s) != 2 {
			return &ValidationError{
				Field:   "licensed_states",
				Message: fmt.Sprintf("must be 2-letter codes, got %q", s),
			}
		}
	}

	return nil
}
