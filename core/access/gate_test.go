package access_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/account"
	testutil "github.com/trezcool/academia/tests"
)

type decision struct {
	op      string
	outcome access.Outcome
}

type recorder struct {
	mu        sync.Mutex
	decisions []decision
}

func (r *recorder) RecordDecision(op string, outcome access.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, decision{op, outcome})
}

func (r *recorder) last() decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decisions[len(r.decisions)-1]
}

var (
	teacherOnly = access.Operation{Name: "teacherOnly", Roles: access.Teachers}
	studentOnly = access.Operation{Name: "studentOnly", Roles: access.Students}
	anyone      = access.Operation{Name: "anyone", Roles: access.Anyone}
	selfScoped  = access.Operation{Name: "selfScoped", Roles: access.Anyone, SelfScoped: true}
)

func TestGate_Authorize(t *testing.T) {
	rec := new(recorder)
	app := testutil.NewApp(t, nil, rec)
	ctx := context.Background()

	teacher := testutil.CreateAccount(t, app.AccountRepo, account.RoleTeacher, "teacher@school.test", "Grace Hopper")
	owner := testutil.CreateAccount(t, app.AccountRepo, account.RoleStudent, "STD-001", "Ada Lovelace")
	orphan := testutil.CreateAccount(t, app.AccountRepo, account.RoleStudent, "STD-404", "No Profile")
	own := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8", owner.ID)
	other := testutil.CreateStudent(t, app.StudentRepo, "STD-002", "Alan Turing", "Grade 8")

	teacherToken := testutil.Token(t, app.Conf, teacher)
	ownerToken := testutil.Token(t, app.Conf, owner)
	orphanToken := testutil.Token(t, app.Conf, orphan)

	tests := []struct {
		name    string
		token   string
		op      access.Operation
		target  []string
		wantErr core.Kind
		outcome access.Outcome
	}{
		{name: "no token", token: "", op: anyone, wantErr: core.KindUnauthenticated, outcome: access.OutcomeUnauthenticated},
		{name: "bad token", token: "abc", op: teacherOnly, wantErr: core.KindUnauthenticated, outcome: access.OutcomeUnauthenticated},
		{name: "teacher on teacher op", token: teacherToken, op: teacherOnly, outcome: access.OutcomeAllowed},
		{name: "student on teacher op", token: ownerToken, op: teacherOnly, wantErr: core.KindForbidden, outcome: access.OutcomeForbidden},
		{name: "teacher on student op", token: teacherToken, op: studentOnly, wantErr: core.KindForbidden, outcome: access.OutcomeForbidden},
		{name: "student on any op", token: ownerToken, op: anyone, outcome: access.OutcomeAllowed},
		{name: "teacher targets anyone", token: teacherToken, op: selfScoped, target: []string{other.ID}, outcome: access.OutcomeAllowed},
		{name: "student targets self", token: ownerToken, op: selfScoped, target: []string{own.ID}, outcome: access.OutcomeAllowed},
		{name: "student targets other", token: ownerToken, op: selfScoped, target: []string{other.ID}, wantErr: core.KindForbidden, outcome: access.OutcomeForbidden},
		{name: "student without profile", token: orphanToken, op: selfScoped, target: []string{own.ID}, wantErr: core.KindForbidden, outcome: access.OutcomeForbidden},
		{name: "student without profile on any op", token: orphanToken, op: anyone, outcome: access.OutcomeAllowed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			caller, err := app.Gate.Authorize(ctx, tc.token, tc.op, tc.target...)
			if tc.wantErr != core.KindInternal {
				require.Error(t, err)
				assert.Equal(t, tc.wantErr, core.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, caller.Account.ID)
			}
			assert.Equal(t, decision{tc.op.Name, tc.outcome}, rec.last())
		})
	}
}

func TestGate_Caller(t *testing.T) {
	app := testutil.NewApp(t, nil, nil)
	ctx := context.Background()

	owner := testutil.CreateAccount(t, app.AccountRepo, account.RoleStudent, "STD-001", "Ada Lovelace")
	own := testutil.CreateStudent(t, app.StudentRepo, "STD-001", "Ada Lovelace", "Grade 8", owner.ID)
	teacher := testutil.CreateAccount(t, app.AccountRepo, account.RoleTeacher, "teacher@school.test", "Grace Hopper")

	caller, err := app.Gate.Authorize(ctx, testutil.Token(t, app.Conf, owner), anyone)
	require.NoError(t, err)
	assert.False(t, caller.IsTeacher())
	assert.Equal(t, own.ID, caller.StudentID())

	caller, err = app.Gate.Authorize(ctx, testutil.Token(t, app.Conf, teacher), anyone)
	require.NoError(t, err)
	assert.True(t, caller.IsTeacher())
	assert.Empty(t, caller.StudentID())
}
