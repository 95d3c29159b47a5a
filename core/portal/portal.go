// Package portal is the logical operation surface: every call carries its session token
// explicitly, goes through the access gate, then reaches the record services or the analytics engine.
package portal

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
)

type (
	Deps struct {
		Logger     core.Logger
		Tx         core.Transactor
		Accounts   *account.Service
		Students   *student.Service
		Grades     *grade.Service
		Attendance *attendance.Service
		Engine     *analytics.Engine
		Gate       *access.Gate
		Cache      analytics.Cache // optional
	}

	Portal struct {
		logger     core.Logger
		tx         core.Transactor
		accounts   *account.Service
		students   *student.Service
		grades     *grade.Service
		attendance *attendance.Service
		engine     *analytics.Engine
		gate       *access.Gate
		cache      analytics.Cache
	}

	// Registration is a new Account plus, for students, the profile to create
	// when no teacher-created profile exists for the handle yet.
	Registration struct {
		account.NewAccount
		Profile *student.NewStudent `json:"profile"`
	}

	// Identity is an Account along with its student profile, if any.
	Identity struct {
		Account account.Account  `json:"account"`
		Student *student.Student `json:"student,omitempty"`
	}

	Session struct {
		Token string `json:"token"`
		Identity
	}
)

func New(deps Deps) *Portal {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Logger, "Logger"),
		vala.IsNotNil(deps.Tx, "Tx"),
		vala.IsNotNil(deps.Accounts, "Accounts"),
		vala.IsNotNil(deps.Students, "Students"),
		vala.IsNotNil(deps.Grades, "Grades"),
		vala.IsNotNil(deps.Attendance, "Attendance"),
		vala.IsNotNil(deps.Engine, "Engine"),
		vala.IsNotNil(deps.Gate, "Gate"),
	).CheckAndPanic()

	cache := deps.Cache
	if cache == nil {
		cache = analytics.NopCache()
	}
	return &Portal{
		logger:     deps.Logger,
		tx:         deps.Tx,
		accounts:   deps.Accounts,
		students:   deps.Students,
		grades:     deps.Grades,
		attendance: deps.Attendance,
		engine:     deps.Engine,
		gate:       deps.Gate,
		cache:      cache,
	}
}

// Register creates the Account and, for students, links or creates their profile, atomically.
// Student handles are their student identifier.
func (p *Portal) Register(ctx context.Context, reg Registration) (Identity, error) {
	prepared, err := p.accounts.Prepare(reg.NewAccount)
	if err != nil {
		return Identity{}, err
	}

	var id Identity
	err = p.tx.InTx(ctx, func(ctx context.Context) error {
		acc, err := p.accounts.Insert(ctx, prepared)
		if err != nil {
			return err
		}
		id.Account = acc
		if !acc.IsStudent() {
			return nil
		}

		var ns student.NewStudent
		if reg.Profile != nil {
			ns = *reg.Profile
		}
		ns.StudentIdentifier = acc.Handle
		if core.CleanString(ns.Name) == "" {
			ns.Name = acc.Name
		}
		std, err := p.students.Enroll(ctx, acc.ID, ns)
		if err != nil {
			return err
		}
		id.Student = &std
		return nil
	})
	if err != nil {
		return Identity{}, err
	}

	p.accounts.SendWelcome(id.Account)
	return id, nil
}

// Login is the only way to obtain a session token.
func (p *Portal) Login(ctx context.Context, role account.Role, handle, secret string) (Session, error) {
	token, acc, err := p.accounts.Authenticate(ctx, role, handle, secret)
	if err != nil {
		return Session{}, err
	}
	sess := Session{Token: token, Identity: Identity{Account: acc}}
	if acc.IsStudent() {
		std, err := p.students.GetByAccount(ctx, acc.ID)
		switch {
		case err == nil:
			sess.Student = &std
		case !errors.Is(err, student.ErrNotFound):
			return Session{}, errors.Wrap(err, "finding student profile")
		}
	}
	return sess, nil
}

func (p *Portal) Me(ctx context.Context, token string) (Identity, error) {
	caller, err := p.gate.Authorize(ctx, token, OpMe)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Account: caller.Account, Student: caller.Student}, nil
}

func (p *Portal) ChangePassword(ctx context.Context, token string, cp account.ChangePassword) error {
	caller, err := p.gate.Authorize(ctx, token, OpChangePassword)
	if err != nil {
		return err
	}
	return p.accounts.ChangePassword(ctx, caller.Account, cp)
}

// invalidate retires the cached aggregates of studentIDs. A failure is logged, not returned:
// the write is already committed, and entries expire within the cache TTL since their own write.
func (p *Portal) invalidate(ctx context.Context, caller access.Caller, studentIDs ...string) {
	if err := p.cache.Invalidate(ctx, studentIDs...); err != nil {
		p.logger.Error("invalidating cached aggregates", err, caller.Account, map[string]interface{}{
			"student_ids": studentIDs,
		})
	}
}
