package analytics

import (
	"cmp"
	"encoding/json"
	"iter"
	"slices"
	"sync"

	"github.com/trezcool/academia/core/grade"
)

type Point struct {
	AcademicYear string     `json:"academic_year"`
	Term         grade.Term `json:"term"`
	Label        string     `json:"label"`
	Score        float64    `json:"score"`
}

// Series is the chronological score sequence of one subject.
// Points are ordered on first use and can be iterated any number of times.
type Series struct {
	Subject grade.Subject

	grades []grade.Grade
	once   sync.Once
	points []Point
}

func newSeries(subject grade.Subject, grades []grade.Grade) *Series {
	return &Series{Subject: subject, grades: grades}
}

func (s *Series) sorted() []Point {
	s.once.Do(func() {
		gs := slices.Clone(s.grades)
		slices.SortStableFunc(gs, compareChronologically)
		s.points = make([]Point, 0, len(gs))
		for _, g := range gs {
			s.points = append(s.points, Point{
				AcademicYear: g.AcademicYear,
				Term:         g.Term,
				Label:        g.AcademicYear + " " + string(g.Term),
				Score:        g.Score,
			})
		}
	})
	return s.points
}

// Points yields the series in chronological order.
func (s *Series) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for _, p := range s.sorted() {
			if !yield(p) {
				return
			}
		}
	}
}

func (s *Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subject grade.Subject `json:"subject"`
		Points  []Point       `json:"points"`
	}{s.Subject, slices.Collect(s.Points())})
}

// compareChronologically orders by academic year label, then term, then entry time.
func compareChronologically(a, b grade.Grade) int {
	return cmp.Or(
		cmp.Compare(a.AcademicYear, b.AcademicYear),
		cmp.Compare(a.Term.Rank(), b.Term.Rank()),
		a.CreatedAt.Compare(b.CreatedAt),
	)
}

// ProgressSeries returns one Series per subject with at least one grade, in catalog order.
// A subject filter narrows it to that subject; subjects without grades are omitted, never empty.
func ProgressSeries(grades []grade.Grade, subject grade.Subject) []*Series {
	bySubject := groupBySubject(grades)
	series := make([]*Series, 0, len(bySubject))
	for _, subj := range grade.Subjects {
		if subject != "" && subj != subject {
			continue
		}
		if gs, ok := bySubject[subj]; ok {
			series = append(series, newSeries(subj, gs))
		}
	}
	return series
}
