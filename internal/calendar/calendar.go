// Package calendar projects topics onto dated events and applies calendar
// moves back to the store.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"revise/internal/schedule"
	"revise/internal/storage"
)

// Event colors.
const (
	ColorDone    = "green"
	ColorPending = "red"
)

// DoneMark is appended to titles of completed reviews.
const DoneMark = " ✔"

// ErrMissingMetadata is returned when a move carries no back-reference to a
// topic review. Callers should revert whatever the user dragged.
var ErrMissingMetadata = errors.New("calendar event has no topic reference")

// Ref points from an event back to the review it renders.
type Ref struct {
	TopicID     string `json:"topic_id"`
	ReviewIndex int    `json:"review_index"`
}

// Event is one review rendered on the calendar.
type Event struct {
	Title     string `json:"title"`
	Date      string `json:"date"` // YYYY-MM-DD
	Color     string `json:"color"`
	Completed bool   `json:"completed"`
	Ref       *Ref   `json:"ref,omitempty"`
}

// Title renders "name (subject)" with the completion mark when done.
func Title(t storage.Topic, reviewIndex int) string {
	title := fmt.Sprintf("%s (%s)", t.Name, t.Subject)
	if t.IsCompleted(reviewIndex) {
		title += DoneMark
	}
	return title
}

// Events returns one event per (topic, review), topics in list order and
// reviews in index order.
func Events(topics []storage.Topic) []Event {
	var events []Event
	for _, t := range topics {
		for i, r := range t.Reviews {
			done := t.IsCompleted(i)
			color := ColorPending
			if done {
				color = ColorDone
			}
			events = append(events, Event{
				Title:     Title(t, i),
				Date:      schedule.DateKey(r),
				Color:     color,
				Completed: done,
				Ref:       &Ref{TopicID: t.ID, ReviewIndex: i},
			})
		}
	}
	return events
}

// DayEntry is a review falling on a given day.
type DayEntry struct {
	Ref
	TopicName string
	Subject   string
	Date      time.Time
	Completed bool
}

// OnDay lists the reviews scheduled on day's calendar date.
func OnDay(topics []storage.Topic, day time.Time) []DayEntry {
	var out []DayEntry
	for _, t := range topics {
		for i, r := range t.Reviews {
			if !schedule.SameDay(r, day) {
				continue
			}
			out = append(out, DayEntry{
				Ref:       Ref{TopicID: t.ID, ReviewIndex: i},
				TopicName: t.Name,
				Subject:   t.Subject,
				Date:      r,
				Completed: t.IsCompleted(i),
			})
		}
	}
	return out
}

// Cell is one day of a month grid.
type Cell struct {
	Date    time.Time
	InMonth bool
	Pending int
	Done    int
}

// Month is a week-aligned grid covering one calendar month.
type Month struct {
	Year  int
	Month time.Month
	Weeks [][7]Cell
}

// BuildMonth lays out the month containing anchor, weeks starting on
// weekStart, and counts the reviews falling on each day.
func BuildMonth(topics []storage.Topic, anchor time.Time, weekStart time.Weekday) Month {
	loc := anchor.Location()
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	start := first.AddDate(0, 0, -lead)

	counts := map[string][2]int{}
	for _, t := range topics {
		for i, r := range t.Reviews {
			key := schedule.DateKey(r.In(loc))
			c := counts[key]
			if t.IsCompleted(i) {
				c[1]++
			} else {
				c[0]++
			}
			counts[key] = c
		}
	}

	m := Month{Year: first.Year(), Month: first.Month()}
	day := start
	for {
		var week [7]Cell
		for d := 0; d < 7; d++ {
			c := counts[schedule.DateKey(day)]
			week[d] = Cell{Date: day, InMonth: day.Month() == first.Month(), Pending: c[0], Done: c[1]}
			day = day.AddDate(0, 0, 1)
		}
		m.Weeks = append(m.Weeks, week)
		if day.Month() != first.Month() {
			break
		}
	}
	return m
}

// Upcoming returns the incomplete reviews between from and to (inclusive
// calendar days), ordered by date.
func Upcoming(topics []storage.Topic, from, to time.Time) []DayEntry {
	start := schedule.StartOfDay(from)
	end := schedule.StartOfDay(to).AddDate(0, 0, 1)
	var out []DayEntry
	for _, t := range topics {
		for i, r := range t.Reviews {
			if t.IsCompleted(i) {
				continue
			}
			local := r.In(from.Location())
			if local.Before(start) || !local.Before(end) {
				continue
			}
			out = append(out, DayEntry{
				Ref:       Ref{TopicID: t.ID, ReviewIndex: i},
				TopicName: t.Name,
				Subject:   t.Subject,
				Date:      r,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
