package portal

import (
	"context"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
)

func (p *Portal) ListStudents(ctx context.Context, token string, filter student.QueryFilter, orderings ...core.DBOrdering) ([]student.Student, error) {
	if _, err := p.gate.Authorize(ctx, token, OpListStudents); err != nil {
		return nil, err
	}
	return p.students.Query(ctx, filter, orderings...)
}

func (p *Portal) GetStudent(ctx context.Context, token, id string) (student.Student, error) {
	if _, err := p.gate.Authorize(ctx, token, OpGetStudent); err != nil {
		return student.Student{}, err
	}
	return p.students.Get(ctx, id)
}

func (p *Portal) CreateStudent(ctx context.Context, token string, ns student.NewStudent) (student.Student, error) {
	if _, err := p.gate.Authorize(ctx, token, OpCreateStudent); err != nil {
		return student.Student{}, err
	}
	return p.students.Create(ctx, ns)
}

func (p *Portal) UpdateStudent(ctx context.Context, token, id string, us student.UpdateStudent) (student.Student, error) {
	if _, err := p.gate.Authorize(ctx, token, OpUpdateStudent); err != nil {
		return student.Student{}, err
	}
	return p.students.Update(ctx, id, us)
}

// DeleteStudent removes the student along with its grades and attendance.
func (p *Portal) DeleteStudent(ctx context.Context, token, id string) error {
	caller, err := p.gate.Authorize(ctx, token, OpDeleteStudent)
	if err != nil {
		return err
	}
	if err = p.students.Delete(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, caller, id)
	return nil
}

// UpdateOwnProfile lets a student edit the contact details of their own profile.
func (p *Portal) UpdateOwnProfile(ctx context.Context, token string, up student.UpdateProfile) (student.Student, error) {
	caller, err := p.gate.Authorize(ctx, token, OpUpdateOwnProfile)
	if err != nil {
		return student.Student{}, err
	}
	return p.students.UpdateProfile(ctx, caller.StudentID(), up)
}

func (p *Portal) ListGrades(ctx context.Context, token string, filter grade.QueryFilter) ([]grade.Grade, error) {
	if _, err := p.gate.Authorize(ctx, token, OpListGrades); err != nil {
		return nil, err
	}
	return p.grades.Query(ctx, filter)
}

// GetGradesForStudent is empty, not an error, for unknown students.
func (p *Portal) GetGradesForStudent(ctx context.Context, token, studentID string) ([]grade.Grade, error) {
	if _, err := p.gate.Authorize(ctx, token, OpGetGradesForStudent, studentID); err != nil {
		return nil, err
	}
	return p.grades.QueryByStudent(ctx, studentID)
}

func (p *Portal) CreateGrade(ctx context.Context, token string, ng grade.NewGrade) (grade.Grade, error) {
	caller, err := p.gate.Authorize(ctx, token, OpCreateGrade)
	if err != nil {
		return grade.Grade{}, err
	}
	g, err := p.grades.Create(ctx, caller.Account, ng)
	if err != nil {
		return grade.Grade{}, err
	}
	p.invalidate(ctx, caller, g.StudentID)
	return g, nil
}

func (p *Portal) UpdateGrade(ctx context.Context, token, id string, ug grade.UpdateGrade) (grade.Grade, error) {
	caller, err := p.gate.Authorize(ctx, token, OpUpdateGrade)
	if err != nil {
		return grade.Grade{}, err
	}
	g, err := p.grades.Update(ctx, id, ug)
	if err != nil {
		return grade.Grade{}, err
	}
	p.invalidate(ctx, caller, g.StudentID)
	return g, nil
}

func (p *Portal) DeleteGrade(ctx context.Context, token, id string) error {
	caller, err := p.gate.Authorize(ctx, token, OpDeleteGrade)
	if err != nil {
		return err
	}
	g, err := p.grades.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = p.grades.Delete(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, caller, g.StudentID)
	return nil
}

func (p *Portal) ListAttendance(ctx context.Context, token string, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	if _, err := p.gate.Authorize(ctx, token, OpListAttendance); err != nil {
		return nil, err
	}
	return p.attendance.Query(ctx, filter)
}

// GetAttendanceForStudent lists the student's records, optionally within [from, to].
func (p *Portal) GetAttendanceForStudent(ctx context.Context, token, studentID string, from, to core.Date) ([]attendance.Attendance, error) {
	if _, err := p.gate.Authorize(ctx, token, OpGetAttendanceForStudent, studentID); err != nil {
		return nil, err
	}
	return p.attendance.Query(ctx, attendance.QueryFilter{StudentID: studentID, From: from, To: to})
}

func (p *Portal) GetAttendanceForDate(ctx context.Context, token string, date core.Date) ([]attendance.Attendance, error) {
	if _, err := p.gate.Authorize(ctx, token, OpGetAttendanceForDate); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}
	return p.attendance.Query(ctx, attendance.QueryFilter{Date: date})
}

func (p *Portal) MarkAttendance(ctx context.Context, token string, na attendance.NewAttendance) (attendance.Attendance, error) {
	caller, err := p.gate.Authorize(ctx, token, OpMarkAttendance)
	if err != nil {
		return attendance.Attendance{}, err
	}
	a, err := p.attendance.Mark(ctx, caller.Account, na)
	if err != nil {
		return attendance.Attendance{}, err
	}
	p.invalidate(ctx, caller, a.StudentID)
	return a, nil
}

// MarkAttendanceBatch marks every entry or none.
func (p *Portal) MarkAttendanceBatch(ctx context.Context, token string, nb attendance.NewBatch) ([]attendance.Attendance, error) {
	caller, err := p.gate.Authorize(ctx, token, OpMarkAttendanceBatch)
	if err != nil {
		return nil, err
	}
	records, err := p.attendance.MarkBatch(ctx, caller.Account, nb)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, a := range records {
		ids = append(ids, a.StudentID)
	}
	p.invalidate(ctx, caller, ids...)
	return records, nil
}

func (p *Portal) UpdateAttendance(ctx context.Context, token, id string, ua attendance.UpdateAttendance) (attendance.Attendance, error) {
	caller, err := p.gate.Authorize(ctx, token, OpUpdateAttendance)
	if err != nil {
		return attendance.Attendance{}, err
	}
	a, err := p.attendance.Update(ctx, id, ua)
	if err != nil {
		return attendance.Attendance{}, err
	}
	p.invalidate(ctx, caller, a.StudentID)
	return a, nil
}

func (p *Portal) DeleteAttendance(ctx context.Context, token, id string) error {
	caller, err := p.gate.Authorize(ctx, token, OpDeleteAttendance)
	if err != nil {
		return err
	}
	a, err := p.attendance.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = p.attendance.Delete(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, caller, a.StudentID)
	return nil
}
