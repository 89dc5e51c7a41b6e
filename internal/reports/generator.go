package reports

import (
	"sort"
	"time"

	"revise/internal/schedule"
	"revise/internal/storage"
)

// TopicSource is the store query reports read from.
type TopicSource interface {
	Topics() ([]storage.Topic, error)
	Now() time.Time
}

// Generator creates reports from storage data.
type Generator struct {
	store TopicSource
}

// NewGenerator creates a new report generator.
func NewGenerator(store TopicSource) *Generator {
	return &Generator{store: store}
}

// GenerateDaily reports reviews due on date, overdue as of date and already
// completed on date.
func (g *Generator) GenerateDaily(date time.Time) (*DailyReport, error) {
	topics, err := g.store.Topics()
	if err != nil {
		return nil, err
	}
	date = schedule.StartOfDay(date)

	report := &DailyReport{
		Date:        date,
		Due:         []ReviewItem{},
		Overdue:     []ReviewItem{},
		Done:        []ReviewItem{},
		TopicCount:  len(topics),
		GeneratedAt: g.store.Now(),
	}
	subjects := newSubjectTally()

	for _, t := range topics {
		for i, r := range t.Reviews {
			done := t.IsCompleted(i)
			switch {
			case schedule.SameDay(r, date) && done:
				report.Done = append(report.Done, item(t, i))
				subjects.add(t.Subject).Done++
			case schedule.SameDay(r, date):
				report.Due = append(report.Due, item(t, i))
				subjects.add(t.Subject).Due++
			case schedule.DayBefore(r, date) && !done:
				report.Overdue = append(report.Overdue, item(t, i))
				subjects.add(t.Subject).Overdue++
			}
		}
	}
	sortItems(report.Overdue)
	report.BySubject = subjects.sorted()
	return report, nil
}

// GenerateWeekly reports the week (Sunday start) containing date.
func (g *Generator) GenerateWeekly(date time.Time) (*WeeklyReport, error) {
	topics, err := g.store.Topics()
	if err != nil {
		return nil, err
	}
	start := startOfWeekSunday(date)
	end := start.AddDate(0, 0, 7)

	report := &WeeklyReport{
		StartDate:   start,
		EndDate:     end.Add(-time.Nanosecond),
		GeneratedAt: g.store.Now(),
	}
	for d := 0; d < 7; d++ {
		day := start.AddDate(0, 0, d)
		report.Days = append(report.Days, DaySummary{
			Date:      schedule.DateKey(day),
			DayOfWeek: day.Weekday().String(),
			Due:       []ReviewItem{},
		})
	}

	subjects := newSubjectTally()
	for _, t := range topics {
		for i, r := range t.Reviews {
			done := t.IsCompleted(i)
			local := r.In(start.Location())
			if !local.Before(start) && local.Before(end) {
				idx := dayIndex(start, local)
				if done {
					report.Days[idx].DoneCount++
					report.TotalDone++
					subjects.add(t.Subject).Done++
				} else {
					report.Days[idx].Due = append(report.Days[idx].Due, item(t, i))
					report.TotalDue++
					subjects.add(t.Subject).Due++
				}
				continue
			}
			if local.Before(start) && !done {
				report.OverdueAtEnd++
				subjects.add(t.Subject).Overdue++
			}
		}
	}
	report.BySubject = subjects.sorted()
	return report, nil
}

func item(t storage.Topic, i int) ReviewItem {
	return ReviewItem{
		TopicID: t.ID,
		Name:    t.Name,
		Subject: t.Subject,
		Review:  i + 1,
		Label:   schedule.Label(i),
		Date:    schedule.DateKey(t.Reviews[i]),
	}
}

func sortItems(items []ReviewItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
}

type subjectTally map[string]*SubjectCount

func newSubjectTally() subjectTally { return subjectTally{} }

func (s subjectTally) add(subject string) *SubjectCount {
	c, ok := s[subject]
	if !ok {
		c = &SubjectCount{Subject: subject}
		s[subject] = c
	}
	return c
}

// sorted orders subjects by outstanding work, then name.
func (s subjectTally) sorted() []SubjectCount {
	out := make([]SubjectCount, 0, len(s))
	for _, c := range s {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := out[i].Due+out[i].Overdue, out[j].Due+out[j].Overdue
		if wi != wj {
			return wi > wj
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// dayIndex returns the offset of t from start in calendar days. Counting days
// rather than hours keeps DST transitions from shifting entries.
func dayIndex(start, t time.Time) int {
	for i := 0; i < 6; i++ {
		if schedule.SameDay(t, start.AddDate(0, 0, i)) {
			return i
		}
	}
	return 6
}

func startOfWeekSunday(t time.Time) time.Time {
	day := schedule.StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
