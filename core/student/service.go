package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrNotFound         = core.NewError(core.KindNotFound, "student not found")
	ErrIdentifierExists = core.NewError(core.KindConflict, "a student with this student identifier already exists")
	ErrAlreadyClaimed   = core.NewError(core.KindConflict, "this student profile is already linked to an account")
)

type (
	Repository interface {
		// CreateStudent fails with ErrIdentifierExists if the student identifier is taken.
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		QueryStudents(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent removes the student along with its grades & attendance records.
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	std := Student{
		ID:                uuid.NewString(),
		StudentIdentifier: ns.StudentIdentifier,
		Name:              ns.Name,
		Class:             ns.Class,
		Section:           ns.Section,
		DateOfBirth:       ns.DateOfBirth,
		Guardian:          ns.Guardian,
		Address:           ns.Address,
		EmergencyContact:  ns.EmergencyContact,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if ns.accountID != "" {
		std.AccountID = null.StringFrom(ns.accountID)
	}

	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		if errors.Is(err, ErrIdentifierExists) {
			return Student{}, err
		}
		return Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

// Enroll links the student Account to its profile: the profile a teacher already created
// under the same identifier is claimed as is, otherwise a new one is created from ns.
// Run it in the same transaction as the account creation.
func (svc *Service) Enroll(ctx context.Context, accountID string, ns NewStudent) (Student, error) {
	ns.StudentIdentifier = core.CleanString(ns.StudentIdentifier)
	std, err := svc.repo.GetStudent(ctx, GetFilter{StudentIdentifier: ns.StudentIdentifier})
	switch {
	case errors.Is(err, ErrNotFound):
		ns.OwnedBy(accountID)
		return svc.Create(ctx, ns)
	case err != nil:
		return Student{}, errors.Wrap(err, "finding student")
	case std.AccountID.Valid:
		return Student{}, ErrAlreadyClaimed
	}

	std.AccountID = null.StringFrom(accountID)
	std.UpdatedAt = time.Now().UTC()
	if std, err = svc.repo.UpdateStudent(ctx, std); err != nil {
		return Student{}, errors.Wrap(err, "claiming student")
	}
	return std, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByAccount(ctx context.Context, accountID string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{AccountID: accountID})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Student, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, filter, orderings)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Student{}, err
	}

	std, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}
	us.Apply(&std)
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

// UpdateProfile is the self-service update of the student's own profile.
func (svc *Service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (Student, error) {
	if err := up.Validate(svc.validate); err != nil {
		return Student{}, err
	}

	std, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}
	up.Apply(&std)
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}
