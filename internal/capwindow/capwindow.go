// Package capwindow decides whether a lead submission fits inside a
// connection's weekly and monthly caps. All window boundaries are computed
// in UTC so decisions are reproducible across deployments.
package capwindow

import (
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

// Usage is the window-tracking slice of a connection's stats.
type Usage struct {
	LeadsThisWeek  int
	LeadsThisMonth int
	WeekStart      time.Time
	MonthStart     time.Time
}

// Decision is the outcome of evaluating one prospective submission.
// WeekStart/MonthStart are the current window keys; ResetWeekly/ResetMonthly
// report whether the stored counter belongs to an older window and must be
// restarted at 1 when the submission is actually counted.
type Decision struct {
	Allowed          bool
	WeeklyRemaining  *int
	MonthlyRemaining *int
	WeekStart        time.Time
	MonthStart       time.Time
	ResetWeekly      bool
	ResetMonthly     bool
	ResetHint        string
}

// WeekStart returns the most recent Monday at 00:00 UTC.
// ISO week starts Monday; Sunday counts as 6 days after it.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()

	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	} // Sunday -> 7

	monday := t.AddDate(0, 0, -offset+1)

	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's calendar month at 00:00 UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Evaluate decides whether a submission at now is allowed under caps.
// Counters whose stored window key differs from the current window are
// treated as zero; the physical reset happens when the caller counts the
// submission, not here.
func Evaluate(u Usage, caps *terms.LeadCaps, now time.Time) Decision {
	d := Decision{
		WeekStart:  WeekStart(now),
		MonthStart: MonthStart(now),
	}

	d.ResetWeekly = !u.WeekStart.Equal(d.WeekStart)
	d.ResetMonthly = !u.MonthStart.Equal(d.MonthStart)

	if caps == nil {
		d.Allowed = true
		return d
	}

	weekUsed := u.LeadsThisWeek
	if d.ResetWeekly {
		weekUsed = 0
	}

	monthUsed := u.LeadsThisMonth
	if d.ResetMonthly {
		monthUsed = 0
	}

	weeklyReached := false

	if caps.WeeklyLimit != nil {
		remaining := max(*caps.WeeklyLimit-weekUsed, 0)
		d.WeeklyRemaining = &remaining
		weeklyReached = weekUsed >= *caps.WeeklyLimit
	}

	monthlyReached := false

	if caps.MonthlyLimit != nil {
		remaining := max(*caps.MonthlyLimit-monthUsed, 0)
		d.MonthlyRemaining = &remaining
		monthlyReached = monthUsed >= *caps.MonthlyLimit
	}

	d.Allowed = !weeklyReached && !monthlyReached
	if d.Allowed {
		// Remaining is reported net of the submission being evaluated.
		if d.WeeklyRemaining != nil {
			*d.WeeklyRemaining--
		}

		if d.MonthlyRemaining != nil {
			*d.MonthlyRemaining--
		}

		return d
	}

	d.ResetHint = resetHint(weeklyReached, monthlyReached, d.WeekStart, d.MonthStart, caps.PauseWhenCapReached)

	return d
}

func resetHint(weekly, monthly bool, weekStart, monthStart time.Time, pause bool) string {
	var hint string

	switch {
	case weekly:
		next := weekStart.AddDate(0, 0, 7)
		hint = fmt.Sprintf("weekly cap reached; window resets %s UTC", next.Format("Mon 2006-01-02"))
	case monthly:
		next := monthStart.AddDate(0, 1, 0)
		hint = fmt.Sprintf("monthly cap reached; window resets %s UTC", next.Format("2006-01-02"))
	}

	if pause {
		hint += "; submissions resume automatically"
	}

	return hint
}
