// Package report builds the date expressions substituted into scheduled
// report prompts.
package report

import (
	"fmt"
	"time"
)

// Reports are rendered for Vietnam local time regardless of server zone.
var reportZone = time.FixedZone("UTC+7", 7*60*60)

// Granularity selects which period a scheduled report covers.
type Granularity string

const (
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// FromCronIdentity maps a scheduled-trigger identity to its report
// granularity. Unknown identities report false and the trigger is a no-op.
// The hour granularity exists only for prompt text and has no trigger.
func FromCronIdentity(id string) (Granularity, bool) {
	switch id {
	case "report-daily":
		return Day, true
	case "report-weekly":
		return Week, true
	case "report-monthly":
		return Month, true
	}
	return "", false
}

const dayFormat = "02/01/2006"

// DateExpression renders the human-readable date expression for one report
// granularity at the given wall-clock instant. Callers pass time.Now() on
// every invocation; nothing is cached.
//
// The week range runs Monday through the most recent Sunday, so a report
// generated on a Sunday covers the week ending that day.
func DateExpression(g Granularity, now time.Time) string {
	now = now.In(reportZone)
	switch g {
	case Day:
		return now.Format(dayFormat)
	case Week:
		end := now.AddDate(0, 0, -int(now.Weekday()))
		start := end.AddDate(0, 0, -6)
		return fmt.Sprintf("%s - %s", start.Format(dayFormat), end.Format(dayFormat))
	case Month:
		return now.Format("01/2006")
	case Hour:
		return now.Format("15:04")
	}
	return now.Format(dayFormat + " 15:04:05")
}
