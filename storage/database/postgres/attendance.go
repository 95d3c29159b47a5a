package pgrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/student"
)

const attendanceColumns = `id, student_id, date, present, marked_by, created_at, updated_at`

type attendanceRepository struct {
	db *DB
}

var (
	_ attendance.Repository = (*attendanceRepository)(nil)

	attendanceConstraints = map[string]error{
		"attendance_student_date_key": attendance.ErrDuplicate,
		"attendance_student_id_fkey":  student.ErrNotFound,
	}
)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	_, err := repo.db.namedExec(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (:id, :student_id, :date, :present, :marked_by, :created_at, :updated_at)`,
		a,
	)
	if err != nil {
		if mapped, ok := constraintError(err, attendanceConstraints); ok {
			return attendance.Attendance{}, mapped
		}
		if isInvalidUUID(err) {
			return attendance.Attendance{}, student.ErrNotFound
		}
		return attendance.Attendance{}, storeError(err, "inserting attendance")
	}
	return a, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, id string) (attendance.Attendance, error) {
	var a attendance.Attendance
	if err := repo.db.get(ctx, &a, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, storeError(err, "selecting attendance")
	}
	return utcAttendance(a), nil
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	w := new(where)
	if filter.StudentID != "" {
		w.add("student_id::text = ?", filter.StudentID)
	}
	if !filter.Date.IsZero() {
		w.add("date = ?", filter.Date)
	}
	if !filter.From.IsZero() {
		w.add("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.add("date <= ?", filter.To)
	}

	records := make([]attendance.Attendance, 0)
	query := `SELECT ` + attendanceColumns + ` FROM attendance` + w.String() + ` ORDER BY date, student_id`
	if err := repo.db.selectAll(ctx, &records, query, w.args...); err != nil {
		return nil, storeError(err, "selecting attendance")
	}
	for i := range records {
		records[i] = utcAttendance(records[i])
	}
	return records, nil
}

// UpdateAttendance only changes the presence flag.
func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	err := repo.db.execOne(ctx, attendance.ErrNotFound,
		`UPDATE attendance SET present = ?, updated_at = ? WHERE id = ?`,
		a.Present, a.UpdatedAt, a.ID,
	)
	switch {
	case isInvalidUUID(err):
		return attendance.Attendance{}, attendance.ErrNotFound
	case errors.Is(err, attendance.ErrNotFound):
		return attendance.Attendance{}, err
	case err != nil:
		return attendance.Attendance{}, storeError(err, "updating attendance")
	}
	return repo.GetAttendance(ctx, a.ID)
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	err := repo.db.execOne(ctx, attendance.ErrNotFound, `DELETE FROM attendance WHERE id = ?`, id)
	switch {
	case err == nil, errors.Is(err, attendance.ErrNotFound):
		return err
	case isInvalidUUID(err):
		return attendance.ErrNotFound
	}
	return storeError(err, "deleting attendance")
}

func utcAttendance(a attendance.Attendance) attendance.Attendance {
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a
}
