package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
	testutil "github.com/trezcool/academia/tests"
)

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()

	std, err := app.Students.Create(ctx, student.NewStudent{
		StudentIdentifier: "  STD-001 ",
		Name:              " Ada Lovelace",
		Class:             "Grade 8",
		DateOfBirth:       core.NewDate(2010, time.December, 10),
		Guardian:          student.Guardian{Name: "Anne Byron", Contact: " +44 20 0000 0000 "},
	})
	require.NoError(t, err)
	assert.Equal(t, "STD-001", std.StudentIdentifier)
	assert.Equal(t, "Ada Lovelace", std.Name)
	assert.Equal(t, "+44 20 0000 0000", std.Guardian.Contact)
	assert.False(t, std.AccountID.Valid)

	tests := []struct {
		name     string
		ns       student.NewStudent
		wantKind core.Kind
	}{
		{name: "duplicate identifier", ns: student.NewStudent{StudentIdentifier: "STD-001", Name: "Someone", Class: "Grade 8"}, wantKind: core.KindConflict},
		{name: "blank identifier", ns: student.NewStudent{StudentIdentifier: "  ", Name: "Someone", Class: "Grade 8"}, wantKind: core.KindValidation},
		{name: "blank name", ns: student.NewStudent{StudentIdentifier: "STD-009", Class: "Grade 8"}, wantKind: core.KindValidation},
		{name: "blank class", ns: student.NewStudent{StudentIdentifier: "STD-009", Name: "Someone"}, wantKind: core.KindValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := app.Students.Create(ctx, tc.ns)
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, core.KindOf(err))
		})
	}
}

func TestService_Query(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()

	testutil.CreateStudent(t, app.StudentRepo, "STD-003", "Charles Babbage", "Grade 9")
	testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8")
	testutil.CreateStudent(t, app.StudentRepo, "STD-002", "alan Turing", "Grade 8")

	names := func(stds []student.Student) []string {
		out := make([]string, 0, len(stds))
		for _, s := range stds {
			out = append(out, s.Name)
		}
		return out
	}

	tests := []struct {
		name      string
		filter    student.QueryFilter
		orderings string
		want      []string
	}{
		{name: "default order", want: []string{"Ada Lovelace", "alan Turing", "Charles Babbage"}},
		{name: "descending name", orderings: "-name", want: []string{"Charles Babbage", "alan Turing", "Ada Lovelace"}},
		{name: "by identifier", orderings: "-student_identifier", want: []string{"Charles Babbage", "alan Turing", "Ada Lovelace"}},
		{name: "class", filter: student.QueryFilter{Class: "grade 8"}, want: []string{"Ada Lovelace", "alan Turing"}},
		{name: "search name", filter: student.QueryFilter{Search: " TURING "}, want: []string{"alan Turing"}},
		{name: "search identifier", filter: student.QueryFilter{Search: "std-003"}, want: []string{"Charles Babbage"}},
		{name: "no match", filter: student.QueryFilter{Search: "hopper"}, want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := app.Students.Query(ctx, tc.filter, core.ParseOrderings(tc.orderings, student.OrderingFields...)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestService_Update(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()
	std := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8")

	updated, err := app.Students.Update(ctx, std.ID, student.UpdateStudent{
		Class:   strPtr("Grade 9"),
		Section: strPtr(" A "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Grade 9", updated.Class)
	assert.Equal(t, "A", updated.Section)
	assert.Equal(t, std.Name, updated.Name)
	assert.Equal(t, std.StudentIdentifier, updated.StudentIdentifier)

	_, err = app.Students.Update(ctx, std.ID, student.UpdateStudent{Name: strPtr("   ")})
	assert.Equal(t, core.KindValidation, core.KindOf(err))

	_, err = app.Students.Update(ctx, "ghost", student.UpdateStudent{Class: strPtr("Grade 9")})
	assert.ErrorIs(t, err, student.ErrNotFound)
}

func TestService_Enroll(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()
	existing := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8")

	claimed, err := app.Students.Enroll(ctx, "acc-1", student.NewStudent{StudentIdentifier: "STD-001"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, claimed.ID)
	assert.Equal(t, "acc-1", claimed.AccountID.String)
	assert.Equal(t, existing.Class, claimed.Class, "claiming keeps the teacher's record")

	_, err = app.Students.Enroll(ctx, "acc-2", student.NewStudent{StudentIdentifier: "STD-001"})
	assert.ErrorIs(t, err, student.ErrAlreadyClaimed)

	created, err := app.Students.Enroll(ctx, "acc-3", student.NewStudent{StudentIdentifier: "STD-002", Name: "Alan Turing", Class: "Grade 8"})
	require.NoError(t, err)
	assert.Equal(t, "acc-3", created.AccountID.String)

	byAccount, err := app.Students.GetByAccount(ctx, "acc-3")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byAccount.ID)
}

func TestService_DeleteCascades(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()
	std := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8")
	keep := testutil.CreateStudent(t, app.StudentRepo, "STD-002", "Alan Turing", "Grade 8")
	testutil.CreateGrade(t, app.GradeRepo, std.ID, grade.SubjectHistory, grade.TermFirst, "2024", 50, "t1")
	testutil.CreateGrade(t, app.GradeRepo, keep.ID, grade.SubjectHistory, grade.TermFirst, "2024", 70, "t1")
	testutil.MarkAttendance(t, app.AttendanceRepo, std.ID, core.NewDate(2024, time.June, 3), true, "t1")

	require.NoError(t, app.Students.Delete(ctx, std.ID))
	assert.ErrorIs(t, app.Students.Delete(ctx, std.ID), student.ErrNotFound)

	grades, err := app.Grades.Query(ctx, grade.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, keep.ID, grades[0].StudentID)

	records, err := app.Attendance.Query(ctx, attendance.QueryFilter{StudentID: std.ID})
	require.NoError(t, err)
	assert.Empty(t, records)
}
