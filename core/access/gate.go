// Package access is the single authorization point: every operation is authenticated,
// matched against its role requirement and, for students, scoped to their own records.
package access

import (
	"context"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/student"
)

var (
	Teachers = []account.Role{account.RoleTeacher}
	Students = []account.Role{account.RoleStudent}
	Anyone   []account.Role // any authenticated role

	ErrNotOwner  = core.NewError(core.KindForbidden, "students may only access their own records")
	ErrNoProfile = core.NewError(core.KindForbidden, "no student profile is linked to this account")
)

// Operation declares who may call an operation.
type Operation struct {
	Name  string
	Roles []account.Role
	// SelfScoped operations take a target student: student callers may only target their own profile.
	SelfScoped bool
}

func (op Operation) allows(role account.Role) bool {
	if len(op.Roles) == 0 {
		return true
	}
	for _, r := range op.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (op Operation) roleNames() string {
	names := make([]string, 0, len(op.Roles))
	for _, r := range op.Roles {
		names = append(names, r.String())
	}
	return strings.Join(names, " or ")
}

type Outcome string

const (
	OutcomeAllowed         Outcome = "allowed"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeForbidden       Outcome = "forbidden"
	OutcomeError           Outcome = "error"
)

type (
	Authenticator interface {
		Validate(ctx context.Context, token string) (account.Account, error)
	}

	ProfileFinder interface {
		GetByAccount(ctx context.Context, accountID string) (student.Student, error)
	}

	// Recorder observes gate decisions (metrics).
	Recorder interface {
		RecordDecision(operation string, outcome Outcome)
	}

	// Caller is the authenticated identity an operation runs for.
	Caller struct {
		Account account.Account
		Student *student.Student // own profile, for student callers
	}

	Gate struct {
		auth     Authenticator
		profiles ProfileFinder
		recorder Recorder
	}
)

func (c Caller) IsTeacher() bool { return c.Account.IsTeacher() }

// StudentID is the caller's own student id; empty for teachers.
func (c Caller) StudentID() string {
	if c.Student == nil {
		return ""
	}
	return c.Student.ID
}

type nopRecorder struct{}

func (nopRecorder) RecordDecision(string, Outcome) {}

func NewGate(auth Authenticator, profiles ProfileFinder, recorder Recorder) *Gate {
	vala.BeginValidation().Validate(
		vala.IsNotNil(auth, "auth"),
		vala.IsNotNil(profiles, "profiles"),
	).CheckAndPanic()

	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Gate{auth: auth, profiles: profiles, recorder: recorder}
}

// Authorize authenticates token and checks it against op.
// Authentication failures are Unauthenticated errors; role or ownership failures are Forbidden.
// target is the student id a SelfScoped operation reads.
func (g *Gate) Authorize(ctx context.Context, token string, op Operation, target ...string) (Caller, error) {
	caller, err := g.authorize(ctx, token, op, target...)
	g.recorder.RecordDecision(op.Name, outcomeOf(err))
	return caller, err
}

func (g *Gate) authorize(ctx context.Context, token string, op Operation, target ...string) (Caller, error) {
	acc, err := g.auth.Validate(ctx, token)
	if err != nil {
		if core.IsKind(err, core.KindUnauthenticated) {
			return Caller{}, err
		}
		return Caller{}, errors.Wrap(err, "validating token")
	}

	if !op.allows(acc.Role) {
		return Caller{}, core.NewError(core.KindForbidden, op.Name+" requires role "+op.roleNames())
	}

	caller := Caller{Account: acc}
	if !acc.IsStudent() {
		return caller, nil
	}

	std, err := g.profiles.GetByAccount(ctx, acc.ID)
	switch {
	case errors.Is(err, student.ErrNotFound):
		if op.SelfScoped {
			return Caller{}, ErrNoProfile
		}
		return caller, nil
	case err != nil:
		return Caller{}, errors.Wrap(err, "finding student profile")
	}
	caller.Student = &std

	if op.SelfScoped {
		for _, t := range target {
			if t != std.ID {
				return Caller{}, ErrNotOwner
			}
		}
	}
	return caller, nil
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAllowed
	case core.IsKind(err, core.KindUnauthenticated):
		return OutcomeUnauthenticated
	case core.IsKind(err, core.KindForbidden):
		return OutcomeForbidden
	default:
		return OutcomeError
	}
}
