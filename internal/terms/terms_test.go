package terms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

func validTerms() terms.ContractTerms {
	return terms.ContractTerms{
		RatePerLead:            7500,
		PaymentTiming:          terms.TimingPerLead,
		LeadTypes:              []string{"auto"},
		TerminationNoticeDays:  14,
		LicensedStates:         []string{"CA", "TX"},
		ComplianceAcknowledged: true,
		AgreementVersion:       "v1",
	}
}

func TestValidate_RateBounds(t *testing.T) {
	tests := []struct {
		name    string
		rate    int64
		wantErr bool
	}{
		{name: "BelowMin", rate: 499, wantErr: true},
		{name: "AtMin", rate: 500, wantErr: false},
		{name: "Middle", rate: 7500, wantErr: false},
		{name: "AtMax", rate: 50000, wantErr: false},
		{name: "AboveMax", rate: 50001, wantErr: true},
		{name: "Zero", rate: 0, wantErr: true},
		{name: "Negative", rate: -100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := validTerms()
			tm.RatePerLead = tt.rate

			err := terms.Validate(tm)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var vErr *terms.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "rate_per_lead", vErr.Field)
			assert.Contains(t, vErr.Message, "500")
			assert.Contains(t, vErr.Message, "50000")
		})
	}
}

func TestValidate_PaymentTiming(t *testing.T) {
	for _, timing := range []terms.PaymentTiming{
		terms.TimingPerLead, terms.TimingWeekly, terms.TimingBiweekly, terms.TimingMonthly,
	} {
		tm := validTerms()
		tm.PaymentTiming = timing
		assert.NoError(t, terms.Validate(tm), string(timing))
	}

	tm := validTerms()
	tm.PaymentTiming = "quarterly"

	var vErr *terms.ValidationError
	require.ErrorAs(t, terms.Validate(tm), &vErr)
	assert.Equal(t, "payment_timing", vErr.Field)
}

func TestValidate_LeadCaps(t *testing.T) {
	tests := []struct {
		name      string
		caps      *terms.LeadCaps
		wantField string
	}{
		{name: "NoCaps", caps: nil},
		{name: "BothSet", caps: &terms.LeadCaps{WeeklyLimit: ptr(3), MonthlyLimit: ptr(10)}},
		{name: "OnlyWeekly", caps: &terms.LeadCaps{WeeklyLimit: ptr(1)}},
		{name: "ZeroWeekly", caps: &terms.LeadCaps{WeeklyLimit: ptr(0)}, wantField: "lead_caps.weekly_limit"},
		{name: "NegativeMonthly", caps: &terms.LeadCaps{MonthlyLimit: ptr(-5)}, wantField: "lead_caps.monthly_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := validTerms()
			tm.LeadCaps = tt.caps

			err := terms.Validate(tm)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *terms.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidate_NoticeDaysAndStates(t *testing.T) {
	tm := validTerms()
	tm.TerminationNoticeDays = -1

	var vErr *terms.ValidationError
	require.ErrorAs(t, terms.Validate(tm), &vErr)
	assert.Equal(t, "termination_notice_days", vErr.Field)

	tm = validTerms()
	tm.TerminationNoticeDays = 0
	assert.NoError(t, terms.Validate(tm))

	tm = validTerms()
	tm.LicensedStates = []string{"CAL"}
	require.ErrorAs(t, terms.Validate(tm), &vErr)
	assert.Equal(t, "licensed_states", vErr.Field)
}

func ptr[T any](v T) *T { return &v }
