package storage

import (
	"time"

	"revise/internal/schedule"
)

// Classify derives the topic's status relative to now.
//
// Reviews are scanned in index order and the first incomplete review that is
// either due today (pending) or on an earlier day (still) decides the result,
// so a topic with an overdue review 2 and a due-today review 3 is still, not
// pending. With no such review the topic is done.
func Classify(t Topic, now time.Time) Status {
	for i, r := range t.Reviews {
		if t.IsCompleted(i) {
			continue
		}
		if schedule.SameDay(r, now) {
			return StatusPending
		}
		if schedule.DayBefore(r, now) {
			return StatusStill
		}
	}
	return StatusDone
}

// DueTodayIndex returns the first incomplete review falling on now's day, or
// -1 when nothing is due today.
func (t Topic) DueTodayIndex(now time.Time) int {
	for i, r := range t.Reviews {
		if !t.IsCompleted(i) && schedule.SameDay(r, now) {
			return i
		}
	}
	return -1
}

// OverdueIndex returns the first incomplete review on an earlier day, or -1.
func (t Topic) OverdueIndex(now time.Time) int {
	for i, r := range t.Reviews {
		if !t.IsCompleted(i) && schedule.DayBefore(r, now) {
			return i
		}
	}
	return -1
}

// CountReviews tallies reviews across topics. Completed reviews count as
// completed wherever they fall; future incomplete reviews are not counted.
func CountReviews(topics []Topic, now time.Time) Stats {
	st := Stats{Topics: len(topics)}
	for _, t := range topics {
		for i, r := range t.Reviews {
			done := t.IsCompleted(i)
			switch {
			case schedule.SameDay(r, now) && !done:
				st.DueToday++
			case schedule.DayBefore(r, now) && !done:
				st.StillPending++
			case done:
				st.Completed++
			}
		}
	}
	return st
}
