package reports

import (
	"fmt"
	"strings"
)

// FormatDailyMarkdown renders a daily report as Markdown.
func FormatDailyMarkdown(r *DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Reviews for %s\n\n", r.Date.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "%d due · %d overdue · %d done · %d topics\n", len(r.Due), len(r.Overdue), len(r.Done), r.TopicCount)

	writeItems(&b, "Due today", r.Due, false)
	writeItems(&b, "Overdue", r.Overdue, true)
	writeItems(&b, "Done", r.Done, false)
	writeSubjects(&b, r.BySubject)
	return b.String()
}

// FormatWeeklyMarkdown renders a weekly report as Markdown.
func FormatWeeklyMarkdown(r *WeeklyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Week of %s\n\n", r.StartDate.Format("January 2, 2006"))
	fmt.Fprintf(&b, "%d due · %d done · %d overdue from earlier weeks\n", r.TotalDue, r.TotalDone, r.OverdueAtEnd)

	for _, d := range r.Days {
		fmt.Fprintf(&b, "\n## %s %s\n\n", d.DayOfWeek, d.Date)
		if len(d.Due) == 0 && d.DoneCount == 0 {
			b.WriteString("_Nothing scheduled._\n")
			continue
		}
		for _, it := range d.Due {
			fmt.Fprintf(&b, "- [ ] %s (%s), %s\n", it.Name, it.Subject, it.Label)
		}
		if d.DoneCount > 0 {
			fmt.Fprintf(&b, "- %d already done\n", d.DoneCount)
		}
	}
	writeSubjects(&b, r.BySubject)
	return b.String()
}

func writeItems(b *strings.Builder, title string, items []ReviewItem, withDate bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, it := range items {
		if withDate {
			fmt.Fprintf(b, "- %s (%s), %s, scheduled %s\n", it.Name, it.Subject, it.Label, it.Date)
			continue
		}
		fmt.Fprintf(b, "- %s (%s), %s\n", it.Name, it.Subject, it.Label)
	}
}

func writeSubjects(b *strings.Builder, subjects []SubjectCount) {
	if len(subjects) == 0 {
		return
	}
	b.WriteString("\n## By subject\n\n| Subject | Due | Overdue | Done |\n|---|---|---|---|\n")
	for _, s := range subjects {
		fmt.Fprintf(b, "| %s | %d | %d | %d |\n", s.Subject, s.Due, s.Overdue, s.Done)
	}
}
