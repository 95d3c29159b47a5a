package inmemdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
)

func newStudent(id, identifier string) student.Student {
	return student.Student{ID: id, StudentIdentifier: identifier, Name: "Student " + identifier, Class: "Grade 8"}
}

func TestDB_InTx(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	t.Run("commit", func(t *testing.T) {
		db := Open()
		students := NewStudentRepository(db)

		err := db.InTx(ctx, func(ctx context.Context) error {
			_, err := students.CreateStudent(ctx, newStudent("s1", "STD-001"))
			return err
		})
		require.NoError(t, err)

		_, err = students.GetStudent(ctx, student.GetFilter{ID: "s1"})
		assert.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		db := Open()
		students := NewStudentRepository(db)
		grades := NewGradeRepository(db)
		_, err := students.CreateStudent(ctx, newStudent("s1", "STD-001"))
		require.NoError(t, err)

		err = db.InTx(ctx, func(ctx context.Context) error {
			if _, err := students.CreateStudent(ctx, newStudent("s2", "STD-002")); err != nil {
				return err
			}
			g := grade.Grade{ID: "g1", StudentID: "s1", Subject: grade.SubjectHistory, Term: grade.TermFirst, AcademicYear: "2024", Score: 80}
			if _, err := grades.CreateGrade(ctx, g); err != nil {
				return err
			}
			if err := students.DeleteStudent(ctx, "s1"); err != nil {
				return err
			}
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)

		_, err = students.GetStudent(ctx, student.GetFilter{ID: "s1"})
		assert.NoError(t, err, "deleted student is restored")
		_, err = students.GetStudent(ctx, student.GetFilter{ID: "s2"})
		assert.ErrorIs(t, err, student.ErrNotFound)
		_, err = grades.GetGrade(ctx, "g1")
		assert.ErrorIs(t, err, grade.ErrNotFound)
	})

	t.Run("nested joins outer", func(t *testing.T) {
		db := Open()
		students := NewStudentRepository(db)

		err := db.InTx(ctx, func(ctx context.Context) error {
			if err := db.InTx(ctx, func(ctx context.Context) error {
				_, err := students.CreateStudent(ctx, newStudent("s1", "STD-001"))
				return err
			}); err != nil {
				return err
			}
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)

		_, err = students.GetStudent(ctx, student.GetFilter{ID: "s1"})
		assert.ErrorIs(t, err, student.ErrNotFound)
	})

	t.Run("serializes writers", func(t *testing.T) {
		db := Open()
		students := NewStudentRepository(db)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			conflicts int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := db.InTx(ctx, func(ctx context.Context) error {
					_, err := students.CreateStudent(ctx, newStudent(fmt.Sprintf("s%d", i), "STD-001"))
					return err
				})
				if errors.Is(err, student.ErrIdentifierExists) {
					mu.Lock()
					conflicts++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 7, conflicts)
		all, err := students.QueryStudents(ctx, student.QueryFilter{}, nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestDB_Reset(t *testing.T) {
	ctx := context.Background()
	db := Open()
	students := NewStudentRepository(db)
	attendances := NewAttendanceRepository(db)

	_, err := students.CreateStudent(ctx, newStudent("s1", "STD-001"))
	require.NoError(t, err)
	_, err = attendances.CreateAttendance(ctx, attendance.Attendance{ID: "a1", StudentID: "s1", Date: core.NewDate(2024, time.June, 3), Present: true})
	require.NoError(t, err)

	db.Reset()

	all, err := students.QueryStudents(ctx, student.QueryFilter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	_, err = attendances.GetAttendance(ctx, "a1")
	assert.ErrorIs(t, err, attendance.ErrNotFound)

	_, err = students.CreateStudent(ctx, newStudent("s1", "STD-001"))
	assert.NoError(t, err, "store is usable after a reset")
}

func TestRepositories_ReferentialIntegrity(t *testing.T) {
	ctx := context.Background()
	db := Open()
	students := NewStudentRepository(db)
	grades := NewGradeRepository(db)
	attendances := NewAttendanceRepository(db)

	_, err := grades.CreateGrade(ctx, grade.Grade{ID: "g1", StudentID: "ghost", Subject: grade.SubjectHistory, Term: grade.TermFirst, AcademicYear: "2024"})
	assert.ErrorIs(t, err, student.ErrNotFound)
	_, err = attendances.CreateAttendance(ctx, attendance.Attendance{ID: "a1", StudentID: "ghost", Date: core.NewDate(2024, time.June, 3)})
	assert.ErrorIs(t, err, student.ErrNotFound)

	_, err = students.CreateStudent(ctx, newStudent("s1", "STD-001"))
	require.NoError(t, err)
	_, err = grades.CreateGrade(ctx, grade.Grade{ID: "g1", StudentID: "s1", Subject: grade.SubjectHistory, Term: grade.TermFirst, AcademicYear: "2024"})
	require.NoError(t, err)
	_, err = grades.CreateGrade(ctx, grade.Grade{ID: "g2", StudentID: "s1", Subject: grade.SubjectHistory, Term: grade.TermFirst, AcademicYear: "2024"})
	assert.ErrorIs(t, err, grade.ErrDuplicate)
}
