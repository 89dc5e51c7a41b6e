// Package reports summarizes review workload for a day or a week.
package reports

import "time"

// ReviewItem is one scheduled review in a report.
type ReviewItem struct {
	TopicID string `json:"topic_id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Review  int    `json:"review"` // 1-based position in the schedule
	Label   string `json:"label"`  // "day 7", "6 months", ...
	Date    string `json:"date"`   // YYYY-MM-DD
}

// SubjectCount groups review counts by subject.
type SubjectCount struct {
	Subject string `json:"subject"`
	Due     int    `json:"due"`
	Overdue int    `json:"overdue"`
	Done    int    `json:"done"`
}

// DailyReport describes the review load of one day.
type DailyReport struct {
	Date        time.Time      `json:"date"`
	Due         []ReviewItem   `json:"due"`
	Overdue     []ReviewItem   `json:"overdue"`
	Done        []ReviewItem   `json:"done"`
	BySubject   []SubjectCount `json:"by_subject"`
	TopicCount  int            `json:"topic_count"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// DaySummary is one day of a weekly report.
type DaySummary struct {
	Date      string       `json:"date"`
	DayOfWeek string       `json:"day_of_week"`
	Due       []ReviewItem `json:"due"`
	DoneCount int          `json:"done_count"`
}

// WeeklyReport covers the Sunday-to-Saturday week containing a date.
type WeeklyReport struct {
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	Days         []DaySummary   `json:"days"`
	TotalDue     int            `json:"total_due"`
	TotalDone    int            `json:"total_done"`
	OverdueAtEnd int            `json:"overdue_at_end"`
	BySubject    []SubjectCount `json:"by_subject"`
	GeneratedAt  time.Time      `json:"generated_at"`
}
