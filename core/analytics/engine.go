package analytics

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
)

// Kind names an aggregate a client can ask for.
type Kind string

const (
	KindAverageGrade      Kind = "avgGrade"
	KindSubjectAverage    Kind = "subjectAvg"
	KindSubjectAverages   Kind = "subjectAverages"
	KindWeeklyAttendance  Kind = "weeklyAttendance"
	KindOverallAttendance Kind = "overallAttendance"
	KindProgressSeries    Kind = "progressSeries"
)

var Kinds = []Kind{
	KindAverageGrade,
	KindSubjectAverage,
	KindSubjectAverages,
	KindWeeklyAttendance,
	KindOverallAttendance,
	KindProgressSeries,
}

func (k Kind) Valid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type (
	GradeReader interface {
		QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error)
	}

	AttendanceReader interface {
		QueryAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error)
	}

	StudentReader interface {
		GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error)
		QueryStudents(ctx context.Context, filter student.QueryFilter, orderings []core.DBOrdering) ([]student.Student, error)
	}

	// Options tune a Compute call. Subject is required for subjectAvg and optional for progressSeries;
	// Base defaults to today for weeklyAttendance.
	Options struct {
		Subject grade.Subject `query:"subject"`
		Base    core.Date     `query:"date"`
	}

	Result struct {
		Kind       Kind               `json:"kind"`
		StudentID  string             `json:"student_id"`
		Average    *Average           `json:"average,omitempty"`
		Subjects   []Average          `json:"subjects,omitempty"`
		Attendance *AttendanceSummary `json:"attendance,omitempty"`
		Series     []*Series          `json:"series,omitempty"`
	}

	Overview struct {
		Students             int          `json:"students"`
		Grades               int          `json:"grades"`
		ClassAverage         null.Float64 `json:"class_average"` // mean of the per-student averages
		AttendancePercentage null.Float64 `json:"attendance_percentage"`
		Bands                map[Band]int `json:"bands"`
	}

	// Engine computes aggregates from the current state of the record store.
	Engine struct {
		grades     GradeReader
		attendance AttendanceReader
		students   StudentReader
	}
)

// TodayFunc is the reference date of weekly attendance when none is given; mockable in tests.
var TodayFunc = core.Today

var errUnknownKind = core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "unknown aggregate kind"})

func NewEngine(grades GradeReader, attendance AttendanceReader, students StudentReader) *Engine {
	vala.BeginValidation().Validate(
		vala.IsNotNil(grades, "grades"),
		vala.IsNotNil(attendance, "attendance"),
		vala.IsNotNil(students, "students"),
	).CheckAndPanic()

	return &Engine{grades: grades, attendance: attendance, students: students}
}

func (e *Engine) studentGrades(ctx context.Context, studentID string, subject grade.Subject) ([]grade.Grade, error) {
	grades, err := e.grades.QueryGrades(ctx, grade.QueryFilter{StudentID: studentID, Subject: subject})
	return grades, errors.Wrap(err, "querying grades")
}

func (e *Engine) studentAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	records, err := e.attendance.QueryAttendance(ctx, filter)
	return records, errors.Wrap(err, "querying attendance")
}

// AverageGrade is the mean of all the student's scores.
func (e *Engine) AverageGrade(ctx context.Context, studentID string) (Average, error) {
	grades, err := e.studentGrades(ctx, studentID, "")
	if err != nil {
		return Average{}, err
	}
	return averageOf("", grades), nil
}

// SubjectAverage is the mean of the student's scores in subject.
func (e *Engine) SubjectAverage(ctx context.Context, studentID string, subject grade.Subject) (Average, error) {
	if !subject.Valid() {
		return Average{}, core.NewValidationError(nil, core.FieldError{Field: "subject", Error: "unknown subject"})
	}
	grades, err := e.studentGrades(ctx, studentID, subject)
	if err != nil {
		return Average{}, err
	}
	return averageOf(subject, grades), nil
}

func (e *Engine) SubjectAverages(ctx context.Context, studentID string) ([]Average, error) {
	grades, err := e.studentGrades(ctx, studentID, "")
	if err != nil {
		return nil, err
	}
	return SubjectAverages(grades), nil
}

// WeeklyAttendance rates the week containing base, day by day.
func (e *Engine) WeeklyAttendance(ctx context.Context, studentID string, base core.Date) (AttendanceSummary, error) {
	week := WeekOf(base)
	return e.AttendanceOn(ctx, studentID, week...)
}

// AttendanceOn rates the given dates only; the dates need not be contiguous.
func (e *Engine) AttendanceOn(ctx context.Context, studentID string, dates ...core.Date) (AttendanceSummary, error) {
	if len(dates) == 0 {
		return AttendanceSummary{}, nil
	}
	from, to := dates[0], dates[0]
	for _, d := range dates {
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}
	records, err := e.studentAttendance(ctx, attendance.QueryFilter{StudentID: studentID, From: from, To: to})
	if err != nil {
		return AttendanceSummary{}, err
	}
	return Summarize(records, dates...), nil
}

func (e *Engine) OverallAttendance(ctx context.Context, studentID string) (AttendanceSummary, error) {
	records, err := e.studentAttendance(ctx, attendance.QueryFilter{StudentID: studentID})
	if err != nil {
		return AttendanceSummary{}, err
	}
	return Summarize(records), nil
}

// Progress returns the per-subject score series; an empty subject means all subjects.
func (e *Engine) Progress(ctx context.Context, studentID string, subject grade.Subject) ([]*Series, error) {
	if subject != "" && !subject.Valid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "subject", Error: "unknown subject"})
	}
	grades, err := e.studentGrades(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}
	return ProgressSeries(grades, subject), nil
}

// Compute dispatches kind for an existing student.
func (e *Engine) Compute(ctx context.Context, studentID string, kind Kind, opts Options) (Result, error) {
	if !kind.Valid() {
		return Result{}, errUnknownKind
	}
	if _, err := e.students.GetStudent(ctx, student.GetFilter{ID: studentID}); err != nil {
		return Result{}, err
	}

	res := Result{Kind: kind, StudentID: studentID}
	switch kind {
	case KindAverageGrade:
		avg, err := e.AverageGrade(ctx, studentID)
		if err != nil {
			return Result{}, err
		}
		res.Average = &avg
	case KindSubjectAverage:
		avg, err := e.SubjectAverage(ctx, studentID, opts.Subject)
		if err != nil {
			return Result{}, err
		}
		res.Average = &avg
	case KindSubjectAverages:
		avgs, err := e.SubjectAverages(ctx, studentID)
		if err != nil {
			return Result{}, err
		}
		res.Subjects = avgs
	case KindWeeklyAttendance:
		base := opts.Base
		if base.IsZero() {
			base = TodayFunc()
		}
		summary, err := e.WeeklyAttendance(ctx, studentID, base)
		if err != nil {
			return Result{}, err
		}
		res.Attendance = &summary
	case KindOverallAttendance:
		summary, err := e.OverallAttendance(ctx, studentID)
		if err != nil {
			return Result{}, err
		}
		res.Attendance = &summary
	case KindProgressSeries:
		series, err := e.Progress(ctx, studentID, opts.Subject)
		if err != nil {
			return Result{}, err
		}
		res.Series = series
	}
	return res, nil
}

// ClassOverview rolls up every student. Students without grades do not weigh on the class average.
func (e *Engine) ClassOverview(ctx context.Context) (Overview, error) {
	students, err := e.students.QueryStudents(ctx, student.QueryFilter{}, nil)
	if err != nil {
		return Overview{}, errors.Wrap(err, "querying students")
	}
	grades, err := e.grades.QueryGrades(ctx, grade.QueryFilter{})
	if err != nil {
		return Overview{}, errors.Wrap(err, "querying grades")
	}
	records, err := e.studentAttendance(ctx, attendance.QueryFilter{})
	if err != nil {
		return Overview{}, err
	}

	byStudent := make(map[string][]grade.Grade, len(students))
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	ov := Overview{
		Students: len(students),
		Grades:   len(grades),
		Bands:    make(map[Band]int),
	}
	studentAvgs := make([]float64, 0, len(students))
	for _, std := range students {
		avg := Mean(scores(byStudent[std.ID]))
		ov.Bands[BandOf(avg)]++
		if avg.Valid {
			studentAvgs = append(studentAvgs, avg.Float64)
		}
	}
	ov.ClassAverage = Mean(studentAvgs)
	ov.AttendancePercentage = Summarize(records).Percentage
	return ov, nil
}
