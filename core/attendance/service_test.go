package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/student"
	testutil "github.com/trezcool/academia/tests"
)

func boolPtr(v bool) *bool { return &v }

func TestService_Mark(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()

	teacher := testutil.CreateAccount(t, app.AccountRepo, account.RoleTeacher, "teacher@school.test", "Grace Hopper")
	pupil := testutil.CreateAccount(t, app.AccountRepo, account.RoleStudent, "STD-001", "Ada Lovelace")
	std := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8", pupil.ID)
	day := core.NewDate(2024, time.June, 3)

	tests := []struct {
		name     string
		marker   account.Account
		na       attendance.NewAttendance
		wantKind core.Kind
	}{
		{name: "student marker", marker: pupil, na: attendance.NewAttendance{StudentID: std.ID, Date: day, Present: boolPtr(true)}, wantKind: core.KindForbidden},
		{name: "missing date", marker: teacher, na: attendance.NewAttendance{StudentID: std.ID, Present: boolPtr(true)}, wantKind: core.KindValidation},
		{name: "missing flag", marker: teacher, na: attendance.NewAttendance{StudentID: std.ID, Date: day}, wantKind: core.KindValidation},
		{name: "unknown student", marker: teacher, na: attendance.NewAttendance{StudentID: "ghost", Date: day, Present: boolPtr(true)}, wantKind: core.KindNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := app.Attendance.Mark(ctx, tc.marker, tc.na)
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, core.KindOf(err))
		})
	}

	a, err := app.Attendance.Mark(ctx, teacher, attendance.NewAttendance{StudentID: std.ID, Date: day, Present: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, a.MarkedBy)
	assert.False(t, a.Present)

	_, err = app.Attendance.Mark(ctx, teacher, attendance.NewAttendance{StudentID: std.ID, Date: day, Present: boolPtr(true)})
	assert.ErrorIs(t, err, attendance.ErrDuplicate)

	updated, err := app.Attendance.Update(ctx, a.ID, attendance.UpdateAttendance{Present: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Present)
	assert.True(t, updated.Date.Equal(day))

	_, err = app.Attendance.Update(ctx, "ghost", attendance.UpdateAttendance{Present: boolPtr(true)})
	assert.ErrorIs(t, err, attendance.ErrNotFound)

	require.NoError(t, app.Attendance.Delete(ctx, a.ID))
	assert.ErrorIs(t, app.Attendance.Delete(ctx, a.ID), attendance.ErrNotFound)
}

func TestService_MarkBatch(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()

	teacher := testutil.CreateAccount(t, app.AccountRepo, account.RoleTeacher, "teacher@school.test", "Grace Hopper")
	ada := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8")
	alan := testutil.CreateStudent(t, app.StudentRepo, "STD-002", "Alan Turing", "Grade 8")
	day := core.NewDate(2024, time.June, 4)

	t.Run("all or nothing", func(t *testing.T) {
		_, err := app.Attendance.MarkBatch(ctx, teacher, attendance.NewBatch{
			Date: day,
			Entries: []attendance.BatchEntry{
				{StudentID: ada.ID, Present: boolPtr(true)},
				{StudentID: "ghost", Present: boolPtr(true)},
			},
		})
		assert.ErrorIs(t, err, student.ErrNotFound)
		assert.Contains(t, err.Error(), "ghost")

		records, err := app.Attendance.Query(ctx, attendance.QueryFilter{Date: day})
		require.NoError(t, err)
		assert.Empty(t, records, "the first entry must be rolled back")
	})

	t.Run("listed twice", func(t *testing.T) {
		_, err := app.Attendance.MarkBatch(ctx, teacher, attendance.NewBatch{
			Date: day,
			Entries: []attendance.BatchEntry{
				{StudentID: ada.ID, Present: boolPtr(true)},
				{StudentID: ada.ID, Present: boolPtr(false)},
			},
		})
		assert.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := app.Attendance.MarkBatch(ctx, teacher, attendance.NewBatch{Date: day})
		assert.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("marks everyone", func(t *testing.T) {
		records, err := app.Attendance.MarkBatch(ctx, teacher, attendance.NewBatch{
			Date: day,
			Entries: []attendance.BatchEntry{
				{StudentID: ada.ID, Present: boolPtr(true)},
				{StudentID: alan.ID, Present: boolPtr(false)},
			},
		})
		require.NoError(t, err)
		assert.Len(t, records, 2)

		stored, err := app.Attendance.Query(ctx, attendance.QueryFilter{Date: day})
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("conflict rolls back", func(t *testing.T) {
		other := core.NewDate(2024, time.June, 5)
		testutil.MarkAttendance(t, app.AttendanceRepo, alan.ID, other, true, teacher.ID)

		_, err := app.Attendance.MarkBatch(ctx, teacher, attendance.NewBatch{
			Date: other,
			Entries: []attendance.BatchEntry{
				{StudentID: ada.ID, Present: boolPtr(true)},
				{StudentID: alan.ID, Present: boolPtr(false)},
			},
		})
		assert.Equal(t, core.KindConflict, core.KindOf(err))

		stored, err := app.Attendance.Query(ctx, attendance.QueryFilter{Date: other})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, alan.ID, stored[0].StudentID)
		assert.True(t, stored[0].Present)
	})
}

func TestService_QueryRange(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()

	std := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8")
	for day := 10; day >= 1; day-- {
		testutil.MarkAttendance(t, app.AttendanceRepo, std.ID, core.NewDate(2024, time.June, day), day%2 == 0, "t1")
	}

	records, err := app.Attendance.Query(ctx, attendance.QueryFilter{
		StudentID: std.ID,
		From:      core.NewDate(2024, time.June, 3),
		To:        core.NewDate(2024, time.June, 6),
	})
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "2024-06-03", records[0].Date.String())
	assert.Equal(t, "2024-06-06", records[3].Date.String())

	records, err = app.Attendance.Query(ctx, attendance.QueryFilter{StudentID: "ghost"})
	assert.NoError(t, err)
	assert.Empty(t, records)
}
