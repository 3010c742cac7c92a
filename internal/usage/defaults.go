package usage

import "time"

const (
	defaultPlan  = "Starter"
	defaultLimit = 10
)

// nextMonthStart returns midnight UTC on the first day of the month
// after now. Quotas reset on calendar month boundaries.
func nextMonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

func defaultUsage(limit int, now time.Time) Usage {
	if limit <= 0 {
		limit = defaultLimit
	}
	return Usage{
		Plan:     defaultPlan,
		Limit:    limit,
		Used:     0,
		ResetsAt: nextMonthStart(now),
	}
}
