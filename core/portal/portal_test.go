package portal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/portal"
	"github.com/trezcool/academia/core/student"
	emailsvc "github.com/trezcool/academia/services/email"
	testutil "github.com/trezcool/academia/tests"
)

// mapCache is an in-process analytics.Cache counting its invalidations.
// Like redis, it never deletes: invalidation only bumps the generation.
type mapCache struct {
	mu          sync.Mutex
	gens        map[string]int64
	entries     map[string]map[string][]byte // student id -> gen/key -> value
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{gens: make(map[string]int64), entries: make(map[string]map[string][]byte)}
}

func entryKey(gen int64, key string) string { return fmt.Sprintf("%d/%s", gen, key) }

func (c *mapCache) Generation(_ context.Context, studentID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[studentID], nil
}

func (c *mapCache) Get(_ context.Context, studentID string, gen int64, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[studentID][entryKey(gen, key)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(_ context.Context, studentID string, gen int64, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[studentID] == nil {
		c.entries[studentID] = make(map[string][]byte)
	}
	c.entries[studentID][entryKey(gen, key)] = raw
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, studentIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range studentIDs {
		c.gens[id]++
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

// size counts the student's servable entries.
func (c *mapCache) size(studentID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := entryKey(c.gens[studentID], "")
	var n int
	for k := range c.entries[studentID] {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// racingCache runs beforeSet once, between a computation and the caching of its result.
type racingCache struct {
	*mapCache
	once      sync.Once
	beforeSet func()
}

func (c *racingCache) Set(ctx context.Context, studentID string, gen int64, key string, value interface{}) error {
	c.once.Do(c.beforeSet)
	return c.mapCache.Set(ctx, studentID, gen, key, value)
}

type fixture struct {
	app          *testutil.App
	cache        *mapCache
	teacher      account.Account
	teacherToken string
	owner        account.Account
	ownerToken   string
	own          student.Student
	other        student.Student
}

func setup(t *testing.T) fixture {
	cache := newMapCache()
	return newFixture(t, cache, cache)
}

func newFixture(t *testing.T, cache analytics.Cache, entries *mapCache) fixture {
	app := testutil.NewApp(t, cache, nil)

	teacher := testutil.CreateAccount(t, app.AccountRepo, account.RoleTeacher, "teacher@school.test", "Grace Hopper")
	owner := testutil.CreateAccount(t, app.AccountRepo, account.RoleStudent, "STD-001", "Ada Lovelace")
	own := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8", owner.ID)
	other := testutil.CreateStudent(t, app.StudentRepo, "STD-002", "Alan Turing", "Grade 8")

	return fixture{
		app:          app,
		cache:        entries,
		teacher:      teacher,
		teacherToken: testutil.Token(t, app.Conf, teacher),
		owner:        owner,
		ownerToken:   testutil.Token(t, app.Conf, owner),
		own:          own,
		other:        other,
	}
}

func score(v float64) *float64 { return &v }
func boolPtr(v bool) *bool     { return &v }

func newGrade(studentID string, subject grade.Subject, s float64) grade.NewGrade {
	return grade.NewGrade{
		StudentID:    studentID,
		Subject:      subject,
		Score:        score(s),
		Term:         grade.TermFirst,
		AcademicYear: "2024-2025",
		Remarks:      "steady progress",
	}
}

func TestPortal_CreateGrade_StudentIsForbidden(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	for _, target := range []string{fx.own.ID, fx.other.ID, "unknown-student"} {
		_, err := fx.app.Portal.CreateGrade(ctx, fx.ownerToken, newGrade(target, grade.SubjectMathematics, 80))
		require.Error(t, err)
		assert.Equal(t, core.KindForbidden, core.KindOf(err), target)
	}

	grades, err := fx.app.GradeRepo.QueryGrades(ctx, grade.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, grades)
}

func TestPortal_Unauthenticated(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "not.a.token"},
		{name: "foreign signature", token: func() string {
			conf := core.NewTestConfig()
			conf.SecretKey = "another-secret"
			return testutil.Token(t, conf, fx.teacher)
		}()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.app.Portal.ListStudents(ctx, tc.token, student.QueryFilter{})
			require.Error(t, err)
			assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
		})
	}
}

func TestPortal_StudentScope(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	p := fx.app.Portal

	t.Run("own records", func(t *testing.T) {
		_, err := p.GetGradesForStudent(ctx, fx.ownerToken, fx.own.ID)
		assert.NoError(t, err)
		_, err = p.GetAttendanceForStudent(ctx, fx.ownerToken, fx.own.ID, core.Date{}, core.Date{})
		assert.NoError(t, err)
		_, err = p.GetAggregates(ctx, fx.ownerToken, fx.own.ID, analytics.KindAverageGrade, analytics.Options{})
		assert.NoError(t, err)
	})

	t.Run("cross-student reads", func(t *testing.T) {
		_, err := p.GetStudent(ctx, fx.ownerToken, fx.other.ID)
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
		_, err = p.GetGradesForStudent(ctx, fx.ownerToken, fx.other.ID)
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
		_, err = p.GetAttendanceForStudent(ctx, fx.ownerToken, fx.other.ID, core.Date{}, core.Date{})
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
		_, err = p.GetAggregates(ctx, fx.ownerToken, fx.other.ID, analytics.KindAverageGrade, analytics.Options{})
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
	})

	t.Run("own profile goes through me", func(t *testing.T) {
		_, err := p.GetStudent(ctx, fx.ownerToken, fx.own.ID)
		assert.Equal(t, core.KindForbidden, core.KindOf(err))

		id, err := p.Me(ctx, fx.ownerToken)
		require.NoError(t, err)
		require.NotNil(t, id.Student)
		assert.Equal(t, fx.own.ID, id.Student.ID)
	})

	t.Run("teacher-only operations", func(t *testing.T) {
		_, err := p.ListStudents(ctx, fx.ownerToken, student.QueryFilter{})
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
		_, err = p.ListGrades(ctx, fx.ownerToken, grade.QueryFilter{})
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
		_, err = p.GetClassOverview(ctx, fx.ownerToken)
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
		err = p.DeleteStudent(ctx, fx.ownerToken, fx.own.ID)
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
	})

	t.Run("teachers read anyone", func(t *testing.T) {
		_, err := p.GetStudent(ctx, fx.teacherToken, fx.other.ID)
		assert.NoError(t, err)
		_, err = p.GetStudent(ctx, fx.teacherToken, "unknown-student")
		assert.ErrorIs(t, err, student.ErrNotFound)
	})
}

func TestPortal_GradeRoundTripAndCascade(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	p := fx.app.Portal

	std, err := p.CreateStudent(ctx, fx.teacherToken, student.NewStudent{
		StudentIdentifier: "STD-100",
		Name:              "Katherine Johnson",
		Class:             "Grade 9",
		Section:           "B",
		DateOfBirth:       core.NewDate(2009, time.August, 26),
	})
	require.NoError(t, err)

	ng := newGrade(std.ID, grade.SubjectPhysics, 91.5)
	created, err := p.CreateGrade(ctx, fx.teacherToken, ng)
	require.NoError(t, err)

	grades, err := p.GetGradesForStudent(ctx, fx.teacherToken, std.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	got := grades[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, std.ID, got.StudentID)
	assert.Equal(t, grade.SubjectPhysics, got.Subject)
	assert.Equal(t, 91.5, got.Score)
	assert.Equal(t, grade.TermFirst, got.Term)
	assert.Equal(t, "2024-2025", got.AcademicYear)
	assert.Equal(t, "steady progress", got.Remarks)
	assert.Equal(t, fx.teacher.ID, got.GradedBy)

	_, err = p.MarkAttendance(ctx, fx.teacherToken, attendance.NewAttendance{
		StudentID: std.ID,
		Date:      core.NewDate(2024, time.June, 3),
		Present:   boolPtr(true),
	})
	require.NoError(t, err)

	require.NoError(t, p.DeleteStudent(ctx, fx.teacherToken, std.ID))

	grades, err = p.GetGradesForStudent(ctx, fx.teacherToken, std.ID)
	assert.NoError(t, err)
	assert.Empty(t, grades)
	records, err := p.GetAttendanceForStudent(ctx, fx.teacherToken, std.ID, core.Date{}, core.Date{})
	assert.NoError(t, err)
	assert.Empty(t, records)

	err = p.DeleteStudent(ctx, fx.teacherToken, std.ID)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestPortal_GradeValidationLeavesStoreUnchanged(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	p := fx.app.Portal

	for _, s := range []float64{-0.5, 100.01, 250} {
		_, err := p.CreateGrade(ctx, fx.teacherToken, newGrade(fx.own.ID, grade.SubjectEnglish, s))
		assert.Equal(t, core.KindValidation, core.KindOf(err), s)
	}

	g, err := p.CreateGrade(ctx, fx.teacherToken, newGrade(fx.own.ID, grade.SubjectEnglish, 70))
	require.NoError(t, err)
	_, err = p.UpdateGrade(ctx, fx.teacherToken, g.ID, grade.UpdateGrade{Score: score(101)})
	assert.Equal(t, core.KindValidation, core.KindOf(err))

	stored, err := fx.app.GradeRepo.GetGrade(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 70.0, stored.Score)

	_, err = p.CreateGrade(ctx, fx.teacherToken, newGrade(fx.own.ID, grade.SubjectEnglish, 75))
	assert.Equal(t, core.KindConflict, core.KindOf(err))
}

func TestPortal_AggregatesCache(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	p := fx.app.Portal

	_, err := p.CreateGrade(ctx, fx.teacherToken, newGrade(fx.own.ID, grade.SubjectMathematics, 80))
	require.NoError(t, err)

	res, err := p.GetAggregates(ctx, fx.ownerToken, fx.own.ID, analytics.KindAverageGrade, analytics.Options{})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Average.Value.Float64)
	assert.Equal(t, 1, fx.cache.size(fx.own.ID))

	again, err := p.GetAggregates(ctx, fx.ownerToken, fx.own.ID, analytics.KindAverageGrade, analytics.Options{})
	require.NoError(t, err)
	assert.Equal(t, res.Average.Value, again.Average.Value)

	g, err := p.CreateGrade(ctx, fx.teacherToken, newGrade(fx.own.ID, grade.SubjectScience, 90))
	require.NoError(t, err)
	assert.Equal(t, 0, fx.cache.size(fx.own.ID), "a new grade must drop the cached aggregates")

	res, err = p.GetAggregates(ctx, fx.ownerToken, fx.own.ID, analytics.KindAverageGrade, analytics.Options{})
	require.NoError(t, err)
	assert.Equal(t, 85.0, res.Average.Value.Float64)

	require.NoError(t, p.DeleteGrade(ctx, fx.teacherToken, g.ID))
	res, err = p.GetAggregates(ctx, fx.ownerToken, fx.own.ID, analytics.KindAverageGrade, analytics.Options{})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Average.Value.Float64)

	_, err = p.MarkAttendanceBatch(ctx, fx.teacherToken, attendance.NewBatch{
		Date: core.NewDate(2024, time.June, 4),
		Entries: []attendance.BatchEntry{
			{StudentID: fx.own.ID, Present: boolPtr(true)},
			{StudentID: fx.other.ID, Present: boolPtr(false)},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, fx.cache.invalidated, fx.other.ID)
	assert.Equal(t, 0, fx.cache.size(fx.own.ID))
}

func TestPortal_AggregatesCache_WriteDuringCompute(t *testing.T) {
	cache := &racingCache{mapCache: newMapCache()}
	fx := newFixture(t, cache, cache.mapCache)
	ctx := context.Background()
	p := fx.app.Portal

	_, err := p.CreateGrade(ctx, fx.teacherToken, newGrade(fx.own.ID, grade.SubjectMathematics, 40))
	require.NoError(t, err)
	cache.beforeSet = func() {
		_, err := p.CreateGrade(ctx, fx.teacherToken, newGrade(fx.own.ID, grade.SubjectScience, 100))
		require.NoError(t, err)
	}

	res, err := p.GetAggregates(ctx, fx.ownerToken, fx.own.ID, analytics.KindAverageGrade, analytics.Options{})
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Average.Value.Float64, "computed before the write")

	res, err = p.GetAggregates(ctx, fx.ownerToken, fx.own.ID, analytics.KindAverageGrade, analytics.Options{})
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.Average.Value.Float64, "the result computed before the write must not be served")

	fresh, err := fx.app.Engine.AverageGrade(ctx, fx.own.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.Value, res.Average.Value)
	assert.Equal(t, 1, fx.cache.size(fx.own.ID))
}

func TestPortal_Register(t *testing.T) {
	t.Run("teacher", func(t *testing.T) {
		fx := setup(t)
		id, err := fx.app.Portal.Register(context.Background(), portal.Registration{
			NewAccount: account.NewAccount{
				Role:            account.RoleTeacher,
				Handle:          "Marie.Curie@School.test",
				Name:            "Marie Curie",
				Password:        testutil.Password,
				PasswordConfirm: testutil.Password,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "marie.curie@school.test", id.Account.Handle)
		assert.Nil(t, id.Student)
		assert.NotEmpty(t, id.Account.PasswordHash)

		sent := emailsvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "welcome", sent[0].TemplateName)
	})

	t.Run("student claims the teacher-created profile", func(t *testing.T) {
		fx := setup(t)
		id, err := fx.app.Portal.Register(context.Background(), portal.Registration{
			NewAccount: account.NewAccount{
				Role:            account.RoleStudent,
				Handle:          "STD-002",
				Name:            "Alan Turing",
				Password:        testutil.Password,
				PasswordConfirm: testutil.Password,
			},
		})
		require.NoError(t, err)
		require.NotNil(t, id.Student)
		assert.Equal(t, fx.other.ID, id.Student.ID)
		assert.Equal(t, id.Account.ID, id.Student.AccountID.String)
		assert.Empty(t, emailsvc.SentMessages())
	})

	t.Run("student creates a profile", func(t *testing.T) {
		fx := setup(t)
		id, err := fx.app.Portal.Register(context.Background(), portal.Registration{
			NewAccount: account.NewAccount{
				Role:            account.RoleStudent,
				Handle:          "STD-300",
				Name:            "Emmy Noether",
				Password:        testutil.Password,
				PasswordConfirm: testutil.Password,
			},
			Profile: &student.NewStudent{Class: "Grade 10"},
		})
		require.NoError(t, err)
		require.NotNil(t, id.Student)
		assert.Equal(t, "STD-300", id.Student.StudentIdentifier)
		assert.Equal(t, "Emmy Noether", id.Student.Name)
	})

	t.Run("failed profile rolls back the account", func(t *testing.T) {
		fx := setup(t)
		ctx := context.Background()
		_, err := fx.app.Portal.Register(ctx, portal.Registration{
			NewAccount: account.NewAccount{
				Role:            account.RoleStudent,
				Handle:          "STD-301",
				Name:            "Rosalind Franklin",
				Password:        testutil.Password,
				PasswordConfirm: testutil.Password,
			},
		})
		assert.Equal(t, core.KindValidation, core.KindOf(err)) // class is required

		_, err = fx.app.Accounts.GetByHandle(ctx, account.RoleStudent, "STD-301")
		assert.Equal(t, core.KindNotFound, core.KindOf(err))
	})

	t.Run("duplicate handle", func(t *testing.T) {
		fx := setup(t)
		_, err := fx.app.Portal.Register(context.Background(), portal.Registration{
			NewAccount: account.NewAccount{
				Role:            account.RoleTeacher,
				Handle:          "TEACHER@school.test",
				Name:            "Someone Else",
				Password:        testutil.Password,
				PasswordConfirm: testutil.Password,
			},
		})
		assert.True(t, core.IsKind(err, core.KindConflict))
	})
}

// trackingTx reports whether a transaction is open.
type trackingTx struct {
	core.Transactor
	open atomic.Bool
}

func (tx *trackingTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return tx.Transactor.InTx(ctx, func(ctx context.Context) error {
		tx.open.Store(true)
		defer tx.open.Store(false)
		return fn(ctx)
	})
}

func TestPortal_Register_HashesOutsideTransaction(t *testing.T) {
	fx := setup(t)
	app := fx.app
	tx := &trackingTx{Transactor: app.DB}
	p := portal.New(portal.Deps{
		Logger:     app.Logger,
		Tx:         tx,
		Accounts:   app.Accounts,
		Students:   app.Students,
		Grades:     app.Grades,
		Attendance: app.Attendance,
		Engine:     app.Engine,
		Gate:       app.Gate,
	})

	var hashes, hashesInTx int
	account.HashFunc = func(pwd []byte, cost int) ([]byte, error) {
		hashes++
		if tx.open.Load() {
			hashesInTx++
		}
		return bcrypt.GenerateFromPassword(pwd, cost)
	}
	defer func() { account.HashFunc = bcrypt.GenerateFromPassword }()

	id, err := p.Register(context.Background(), portal.Registration{
		NewAccount: account.NewAccount{
			Role:            account.RoleStudent,
			Handle:          "STD-002",
			Name:            "Alan Turing",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, id.Student)
	assert.Equal(t, fx.other.ID, id.Student.ID)
	assert.Equal(t, 1, hashes)
	assert.Zero(t, hashesInTx, "the store must not be locked while hashing")
}

func TestPortal_LoginAndMe(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	p := fx.app.Portal

	_, err := p.Login(ctx, account.RoleStudent, "STD-001", "wrong-password")
	assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
	_, err = p.Login(ctx, account.RoleTeacher, "STD-001", testutil.Password)
	assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))

	sess, err := p.Login(ctx, account.RoleStudent, "STD-001", testutil.Password)
	require.NoError(t, err)
	require.NotNil(t, sess.Student)
	assert.Equal(t, fx.own.ID, sess.Student.ID)
	assert.True(t, sess.Account.LastLogin.Valid)

	me, err := p.Me(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, fx.owner.ID, me.Account.ID)
	require.NotNil(t, me.Student)
	assert.Equal(t, fx.own.ID, me.Student.ID)
}

func TestPortal_UpdateOwnProfile(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	p := fx.app.Portal

	contact := "+243 990 123 456"
	std, err := p.UpdateOwnProfile(ctx, fx.ownerToken, student.UpdateProfile{
		GuardianContact: &contact,
		Address:         &student.Address{Street: "12 Avenue Kasa-Vubu", City: "Kinshasa"},
	})
	require.NoError(t, err)
	assert.Equal(t, contact, std.Guardian.Contact)
	assert.Equal(t, fx.own.Guardian.Name, std.Guardian.Name)
	assert.Equal(t, "Kinshasa", std.Address.City)

	_, err = p.UpdateOwnProfile(ctx, fx.teacherToken, student.UpdateProfile{GuardianContact: &contact})
	assert.Equal(t, core.KindForbidden, core.KindOf(err))

	orphan := testutil.CreateAccount(t, fx.app.AccountRepo, account.RoleStudent, "STD-999", "No Profile")
	_, err = p.UpdateOwnProfile(ctx, testutil.Token(t, fx.app.Conf, orphan), student.UpdateProfile{GuardianContact: &contact})
	assert.ErrorIs(t, err, access.ErrNoProfile)
}

func TestPortal_ClassOverview(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	p := fx.app.Portal

	testutil.CreateGrade(t, fx.app.GradeRepo, fx.own.ID, grade.SubjectMathematics, grade.TermFirst, "2024", 95, fx.teacher.ID)
	testutil.CreateGrade(t, fx.app.GradeRepo, fx.own.ID, grade.SubjectEnglish, grade.TermFirst, "2024", 85, fx.teacher.ID)
	testutil.CreateGrade(t, fx.app.GradeRepo, fx.other.ID, grade.SubjectMathematics, grade.TermFirst, "2024", 40, fx.teacher.ID)
	testutil.MarkAttendance(t, fx.app.AttendanceRepo, fx.own.ID, core.NewDate(2024, time.June, 3), true, fx.teacher.ID)
	testutil.MarkAttendance(t, fx.app.AttendanceRepo, fx.other.ID, core.NewDate(2024, time.June, 3), false, fx.teacher.ID)

	ov, err := p.GetClassOverview(ctx, fx.teacherToken)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Students)
	assert.Equal(t, 3, ov.Grades)
	assert.Equal(t, 65.0, ov.ClassAverage.Float64) // (90 + 40) / 2
	assert.Equal(t, 50.0, ov.AttendancePercentage.Float64)
	assert.Equal(t, 1, ov.Bands[analytics.BandExcellent])
	assert.Equal(t, 1, ov.Bands[analytics.BandPoor])
}
