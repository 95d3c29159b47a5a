// Package testutil assembles the core over the in-memory store and seeds records for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/portal"
	"github.com/trezcool/academia/core/student"
	emailsvc "github.com/trezcool/academia/services/email"
	logsvc "github.com/trezcool/academia/services/logger"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
)

// Password passes the password policy for every fixture account.
const Password = "Kx9#mQ2$vL"

type App struct {
	Conf       *core.Config
	Logger     core.Logger
	Translator ut.Translator
	Validate   *validator.Validate
	DB         *inmemdb.DB

	AccountRepo    account.Repository
	StudentRepo    student.Repository
	GradeRepo      grade.Repository
	AttendanceRepo attendance.Repository

	Accounts   *account.Service
	Students   *student.Service
	Grades     *grade.Service
	Attendance *attendance.Service
	Engine     *analytics.Engine
	Gate       *access.Gate
	Portal     *portal.Portal
}

// NewValidator returns a validator with every app validator registered.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	account.InitValidators(validate, translator)
	grade.InitValidators(validate, translator)
	return validate
}

// NewApp wires the whole core over a fresh in-memory store.
// Passwords are hashed at minimum cost and emails are delivered synchronously.
func NewApp(t *testing.T, cache analytics.Cache, recorder access.Recorder) *App {
	t.Helper()

	account.HashCost = 4 // bcrypt.MinCost
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	core.ParseEmailTemplates(logger, true)
	emailsvc.ResetSentMessages()

	db := inmemdb.Open()
	translator := core.NewTranslator()
	app := &App{
		Conf:           conf,
		Logger:         logger,
		Translator:     translator,
		Validate:       NewValidator(translator),
		DB:             db,
		AccountRepo:    inmemdb.NewAccountRepository(db),
		StudentRepo:    inmemdb.NewStudentRepository(db),
		GradeRepo:      inmemdb.NewGradeRepository(db),
		AttendanceRepo: inmemdb.NewAttendanceRepository(db),
	}
	app.Accounts = account.NewService(conf, app.AccountRepo, emailsvc.NewConsoleServiceMock(conf, logger), app.Validate)
	app.Students = student.NewService(app.StudentRepo, app.Validate)
	app.Grades = grade.NewService(app.GradeRepo, app.Validate)
	app.Attendance = attendance.NewService(db, app.AttendanceRepo, app.Validate)
	app.Engine = analytics.NewEngine(app.GradeRepo, app.AttendanceRepo, app.StudentRepo)
	app.Gate = access.NewGate(app.Accounts, app.Students, recorder)
	app.Portal = portal.New(portal.Deps{
		Logger:     logger,
		Tx:         db,
		Accounts:   app.Accounts,
		Students:   app.Students,
		Grades:     app.Grades,
		Attendance: app.Attendance,
		Engine:     app.Engine,
		Gate:       app.Gate,
		Cache:      cache,
	})
	return app
}

func CreateAccount(t *testing.T, repo account.Repository, role account.Role, handle, name string) account.Account {
	t.Helper()

	now := time.Now().UTC()
	acc := account.Account{
		ID:        uuid.NewString(),
		Role:      role,
		Handle:    account.CleanHandle(role, handle),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acc.SetPassword(Password); err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

// Token issues a session token for acc.
func Token(t *testing.T, conf *core.Config, acc account.Account) string {
	t.Helper()

	token, err := account.NewTokenizer(conf).Issue(acc)
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

// CreateStudent stores a student profile, linked to accountID if given.
func CreateStudent(t *testing.T, repo student.Repository, identifier, name, class string, accountID ...string) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std := student.Student{
		ID:                uuid.NewString(),
		StudentIdentifier: identifier,
		Name:              name,
		Class:             class,
		DateOfBirth:       core.NewDate(2010, time.March, 14),
		Guardian:          student.Guardian{Name: "Guardian of " + name, Contact: "+243 810 000 000"},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if len(accountID) > 0 {
		std.AccountID = null.StringFrom(accountID[0])
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateGrade(
	t *testing.T,
	repo grade.Repository,
	studentID string,
	subject grade.Subject,
	term grade.Term,
	year string,
	score float64,
	gradedBy string,
	createdAt ...time.Time,
) grade.Grade {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	g := grade.Grade{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Subject:      subject,
		Score:        score,
		Term:         term,
		AcademicYear: year,
		GradedBy:     gradedBy,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}
	g, err := repo.CreateGrade(context.Background(), g)
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}

func MarkAttendance(t *testing.T, repo attendance.Repository, studentID string, date core.Date, present bool, markedBy string) attendance.Attendance {
	t.Helper()

	now := time.Now().UTC()
	a := attendance.Attendance{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Date:      date,
		Present:   present,
		MarkedBy:  markedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a, err := repo.CreateAttendance(context.Background(), a)
	if err != nil {
		t.Fatalf("MarkAttendance() failed: %v", err)
	}
	return a
}
