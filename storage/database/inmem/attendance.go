package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/student"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	err := repo.db.write(ctx, func() error {
		if _, ok := repo.db.students[a.StudentID]; !ok {
			return student.ErrNotFound
		}
		for _, other := range repo.db.attendance {
			if other.StudentID == a.StudentID && other.Date.Equal(a.Date) {
				return attendance.ErrDuplicate
			}
		}
		repo.db.attendance[a.ID] = a
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, id string) (attendance.Attendance, error) {
	var found attendance.Attendance
	err := repo.db.read(ctx, func() error {
		a, ok := repo.db.attendance[id]
		if !ok {
			return attendance.ErrNotFound
		}
		found = a
		return nil
	})
	return found, err
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	records := make([]attendance.Attendance, 0)
	_ = repo.db.read(ctx, func() error {
		for _, a := range repo.db.attendance {
			if filter.Match(a) {
				records = append(records, a)
			}
		}
		return nil
	})

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].StudentID < records[j].StudentID
	})
	return records, nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	err := repo.db.write(ctx, func() error {
		orig, ok := repo.db.attendance[a.ID]
		if !ok {
			return attendance.ErrNotFound
		}
		// only the flag may change
		orig.Present = a.Present
		orig.UpdatedAt = a.UpdatedAt
		repo.db.attendance[a.ID] = orig
		a = orig
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	return repo.db.write(ctx, func() error {
		if _, ok := repo.db.attendance[id]; !ok {
			return attendance.ErrNotFound
		}
		delete(repo.db.attendance, id)
		return nil
	})
}
