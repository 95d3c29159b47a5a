// Package analytics derives read-only views (averages, attendance rates, progress series)
// from the record store. Nothing in here writes.
package analytics

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
)

const (
	averagePlaces    = 2
	percentagePlaces = 1
)

// WeekOf returns the 7 dates of the Monday-first week containing base.
// A Sunday belongs to the week that started the Monday before it.
func WeekOf(base core.Date) []core.Date {
	idx := int(base.Weekday()) // Sunday = 0
	if idx == 0 {
		idx = 7
	}
	monday := base.AddDays(-(idx - 1))

	week := make([]core.Date, 7)
	for i := range week {
		week[i] = monday.AddDays(i)
	}
	return week
}

// Mean is the arithmetic mean of values rounded to two decimals; null when values is empty.
func Mean(values []float64) null.Float64 {
	if len(values) == 0 {
		return null.Float64{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return null.Float64From(core.Round(sum/float64(len(values)), averagePlaces))
}

// Percentage is part/whole*100 rounded to one decimal; null when whole is 0.
func Percentage(part, whole int) null.Float64 {
	if whole == 0 {
		return null.Float64{}
	}
	return null.Float64From(core.Round(float64(part)*100/float64(whole), percentagePlaces))
}

func scores(grades []grade.Grade) []float64 {
	values := make([]float64, 0, len(grades))
	for _, g := range grades {
		values = append(values, g.Score)
	}
	return values
}

// Band is a coarse performance level derived from an average.
type Band string

const (
	BandNone      Band = "none"
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
)

func BandOf(avg null.Float64) Band {
	switch {
	case !avg.Valid:
		return BandNone
	case avg.Float64 >= 90:
		return BandExcellent
	case avg.Float64 >= 70:
		return BandGood
	case avg.Float64 >= 50:
		return BandFair
	default:
		return BandPoor
	}
}

type Average struct {
	Subject grade.Subject `json:"subject,omitempty"`
	Value   null.Float64  `json:"value"` // null when there are no grades
	Count   int           `json:"count"`
	Band    Band          `json:"band"`
}

func averageOf(subject grade.Subject, grades []grade.Grade) Average {
	avg := Mean(scores(grades))
	return Average{Subject: subject, Value: avg, Count: len(grades), Band: BandOf(avg)}
}

// SubjectAverages returns one Average per subject that has grades, in catalog order.
func SubjectAverages(grades []grade.Grade) []Average {
	bySubject := groupBySubject(grades)
	averages := make([]Average, 0, len(bySubject))
	for _, subj := range grade.Subjects {
		if gs, ok := bySubject[subj]; ok {
			averages = append(averages, averageOf(subj, gs))
		}
	}
	return averages
}

func groupBySubject(grades []grade.Grade) map[grade.Subject][]grade.Grade {
	bySubject := make(map[grade.Subject][]grade.Grade)
	for _, g := range grades {
		bySubject[g.Subject] = append(bySubject[g.Subject], g)
	}
	return bySubject
}

type DayStatus string

const (
	DayPresent  DayStatus = "present"
	DayAbsent   DayStatus = "absent"
	DayUnmarked DayStatus = "unmarked"
)

type Day struct {
	Date   core.Date `json:"date"`
	Status DayStatus `json:"status"`
}

type AttendanceSummary struct {
	From       core.Date    `json:"from"`
	To         core.Date    `json:"to"`
	Present    int          `json:"present"`
	Recorded   int          `json:"recorded"`
	Percentage null.Float64 `json:"percentage"` // null when nothing was recorded
	Days       []Day        `json:"days,omitempty"`
}

// Summarize rates the records falling on dates. Dates with no record count for nothing.
// With no dates, every record counts.
func Summarize(records []attendance.Attendance, dates ...core.Date) AttendanceSummary {
	var summary AttendanceSummary

	if len(dates) == 0 {
		for _, a := range records {
			summary.add(a)
			if summary.From.IsZero() || a.Date.Before(summary.From) {
				summary.From = a.Date
			}
			if a.Date.After(summary.To) {
				summary.To = a.Date
			}
		}
		summary.Percentage = Percentage(summary.Present, summary.Recorded)
		return summary
	}

	byDate := make(map[time.Time]attendance.Attendance, len(records))
	for _, a := range records {
		byDate[a.Date.Time] = a
	}
	summary.From, summary.To = dates[0], dates[len(dates)-1]
	summary.Days = make([]Day, 0, len(dates))
	for _, d := range dates {
		a, ok := byDate[d.Time]
		status := DayUnmarked
		if ok {
			summary.add(a)
			status = DayAbsent
			if a.Present {
				status = DayPresent
			}
		}
		summary.Days = append(summary.Days, Day{Date: d, Status: status})
	}
	summary.Percentage = Percentage(summary.Present, summary.Recorded)
	return summary
}

func (s *AttendanceSummary) add(a attendance.Attendance) {
	s.Recorded++
	if a.Present {
		s.Present++
	}
}
