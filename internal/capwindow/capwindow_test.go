package capwindow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/leadbroker/internal/capwindow"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "Monday", in: date(2024, time.January, 15), want: date(2024, time.January, 15)},
		{name: "MondayLate", in: time.Date(2024, time.January, 15, 23, 59, 0, 0, time.UTC), want: date(2024, time.January, 15)},
		{name: "Wednesday", in: date(2024, time.January, 17), want: date(2024, time.January, 15)},
		{name: "Saturday", in: date(2024, time.January, 20), want: date(2024, time.January, 15)},
		// Sunday belongs to the week that started the previous Monday.
		{name: "Sunday", in: date(2024, time.January, 21), want: date(2024, time.January, 15)},
		{name: "NextMonday", in: date(2024, time.January, 22), want: date(2024, time.January, 22)},
		{name: "AcrossMonth", in: date(2024, time.February, 1), want: date(2024, time.January, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, capwindow.WeekStart(tt.in))
		})
	}
}

func TestMonthStart(t *testing.T) {
	assert.Equal(t, date(2024, time.January, 1), capwindow.MonthStart(date(2024, time.January, 31)))
	assert.Equal(t, date(2024, time.February, 1), capwindow.MonthStart(time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)))
}

func TestEvaluate_NoCaps(t *testing.T) {
	now := date(2024, time.January, 17)
	d := capwindow.Evaluate(capwindow.Usage{LeadsThisWeek: 99, LeadsThisMonth: 99}, nil, now)

	assert.True(t, d.Allowed)
	assert.Nil(t, d.WeeklyRemaining)
	assert.Nil(t, d.MonthlyRemaining)
	assert.Equal(t, date(2024, time.January, 15), d.WeekStart)
	assert.Equal(t, date(2024, time.January, 1), d.MonthStart)
}

func TestEvaluate_WeeklyCap(t *testing.T) {
	now := date(2024, time.January, 17)
	caps := &terms.LeadCaps{WeeklyLimit: ptr(3), PauseWhenCapReached: true}

	usage := capwindow.Usage{
		LeadsThisWeek: 2,
		WeekStart:     date(2024, time.January, 15),
		MonthStart:    date(2024, time.January, 1),
	}

	d := capwindow.Evaluate(usage, caps, now)
	assert.True(t, d.Allowed)
	require.NotNil(t, d.WeeklyRemaining)
	assert.Equal(t, 0, *d.WeeklyRemaining) // net of this submission
	assert.False(t, d.ResetWeekly)

	usage.LeadsThisWeek = 3
	d = capwindow.Evaluate(usage, caps, now)
	assert.False(t, d.Allowed)
	require.NotNil(t, d.WeeklyRemaining)
	assert.Equal(t, 0, *d.WeeklyRemaining)
	assert.Contains(t, d.ResetHint, "weekly cap reached")
	assert.Contains(t, d.ResetHint, "2024-01-22")
	assert.Contains(t, d.ResetHint, "resume")
}

func TestEvaluate_StaleWindowCountsAsZero(t *testing.T) {
	caps := &terms.LeadCaps{WeeklyLimit: ptr(3)}

	// Counter belongs to last week; clock has rolled past Monday.
	usage := capwindow.Usage{
		LeadsThisWeek: 3,
		WeekStart:     date(2024, time.January, 8),
		MonthStart:    date(2024, time.January, 1),
	}

	d := capwindow.Evaluate(usage, caps, date(2024, time.January, 17))
	assert.True(t, d.Allowed)
	assert.True(t, d.ResetWeekly)
	assert.False(t, d.ResetMonthly)
	require.NotNil(t, d.WeeklyRemaining)
	assert.Equal(t, 2, *d.WeeklyRemaining)
	assert.Equal(t, date(2024, time.January, 15), d.WeekStart)
}

func TestEvaluate_MonthlyCap(t *testing.T) {
	caps := &terms.LeadCaps{MonthlyLimit: ptr(10)}

	usage := capwindow.Usage{
		LeadsThisMonth: 10,
		WeekStart:      date(2024, time.January, 15),
		MonthStart:     date(2024, time.January, 1),
	}

	d := capwindow.Evaluate(usage, caps, date(2024, time.January, 17))
	assert.False(t, d.Allowed)
	assert.Nil(t, d.WeeklyRemaining)
	require.NotNil(t, d.MonthlyRemaining)
	assert.Equal(t, 0, *d.MonthlyRemaining)
	assert.Contains(t, d.ResetHint, "monthly cap reached")
	assert.Contains(t, d.ResetHint, "2024-02-01")

	// New month, counter is stale.
	d = capwindow.Evaluate(usage, caps, date(2024, time.February, 2))
	assert.True(t, d.Allowed)
	assert.True(t, d.ResetMonthly)
	assert.Equal(t, 9, *d.MonthlyRemaining)
}

func TestEvaluate_BothCapsMostRestrictiveWins(t *testing.T) {
	caps := &terms.LeadCaps{WeeklyLimit: ptr(5), MonthlyLimit: ptr(5)}

	usage := capwindow.Usage{
		LeadsThisWeek:  1,
		LeadsThisMonth: 5,
		WeekStart:      date(2024, time.January, 15),
		MonthStart:     date(2024, time.January, 1),
	}

	d := capwindow.Evaluate(usage, caps, date(2024, time.January, 17))
	assert.False(t, d.Allowed)
	require.NotNil(t, d.WeeklyRemaining)
	assert.Equal(t, 4, *d.WeeklyRemaining)
	require.NotNil(t, d.MonthlyRemaining)
	assert.Equal(t, 0, *d.MonthlyRemaining)
}

func ptr[T any](v T) *T { return &v }
