// Package schedule produces the fixed spaced-repetition review sequence.
package schedule

import "time"

// Step is one offset in the review sequence.
type Step struct {
	Years, Months, Days int
	Label               string
}

// Steps is the review sequence relative to the creation instant. The first
// review is always the creation day itself.
var Steps = [...]Step{
	{Days: 0, Label: "day 0"},
	{Days: 1, Label: "day 1"},
	{Days: 7, Label: "day 7"},
	{Days: 16, Label: "day 16"},
	{Days: 35, Label: "day 35"},
	{Months: 2, Label: "2 months"},
	{Months: 6, Label: "6 months"},
	{Years: 1, Label: "1 year"},
	{Years: 2, Label: "2 years"},
}

// Len is the number of reviews every generated schedule holds.
const Len = len(Steps)

// Generate returns the review dates for a topic created at ref. Month and year
// steps use calendar rollover (Jan 31 + 2 months is Mar 31; Aug 31 + 6
// months is Mar 3 in a non-leap year). Time of day and location are kept.
func Generate(ref time.Time) []time.Time {
	dates := make([]time.Time, 0, Len)
	for _, s := range Steps {
		dates = append(dates, ref.AddDate(s.Years, s.Months, s.Days))
	}
	return dates
}

// Label names review i ("day 7", "6 months"), or "" when out of range.
func Label(i int) string {
	if i < 0 || i >= Len {
		return ""
	}
	return Steps[i].Label
}

// SameDay reports whether a and b fall on the same calendar day in b's
// location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to local midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBefore reports whether a falls on a calendar day strictly before b's,
// evaluated in b's location.
func DayBefore(a, b time.Time) bool {
	return a.In(b.Location()).Before(StartOfDay(b))
}

// DateKey formats t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDateKey parses a YYYY-MM-DD string as midnight in loc.
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}
