package grade

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
)

var (
	// errors
	ErrNotFound  = core.NewError(core.KindNotFound, "grade not found")
	ErrDuplicate = core.NewError(core.KindConflict, "a grade already exists for this student, subject, term and academic year")
	ErrNotGrader = core.NewError(core.KindForbidden, "only teachers can grade")
)

type (
	Repository interface {
		// CreateGrade fails with ErrDuplicate if the grade's Key is taken,
		// and with student.ErrNotFound if the student does not exist.
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		GetGrade(ctx context.Context, id string) (Grade, error)
		// QueryGrades returns the matching grades, oldest first.
		QueryGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
		// UpdateGrade fails with ErrDuplicate if the new Key belongs to another grade.
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id string) error
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

func (svc *Service) Create(ctx context.Context, grader account.Account, ng NewGrade) (Grade, error) {
	if !grader.IsTeacher() {
		return Grade{}, ErrNotGrader
	}
	if err := ng.Validate(svc.validate); err != nil {
		return Grade{}, err
	}

	now := time.Now().UTC()
	g := Grade{
		ID:           uuid.NewString(),
		StudentID:    ng.StudentID,
		Subject:      ng.Subject,
		Score:        *ng.Score,
		Term:         ng.Term,
		AcademicYear: ng.AcademicYear,
		Remarks:      ng.Remarks,
		GradedBy:     grader.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateGrade(ctx, g)
}

func (svc *Service) Get(ctx context.Context, id string) (Grade, error) {
	return svc.repo.GetGrade(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, filter)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, QueryFilter{StudentID: studentID})
}

// Update merges ug onto the stored grade and re-validates the result as a whole.
func (svc *Service) Update(ctx context.Context, id string, ug UpdateGrade) (Grade, error) {
	if err := ug.Validate(svc.validate); err != nil {
		return Grade{}, err
	}

	g, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	ug.Apply(&g)

	merged := NewGrade{
		StudentID:    g.StudentID,
		Subject:      g.Subject,
		Score:        &g.Score,
		Term:         g.Term,
		AcademicYear: g.AcademicYear,
		Remarks:      g.Remarks,
	}
	if err = merged.Validate(svc.validate); err != nil {
		return Grade{}, err
	}

	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteGrade(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "deleting grade")
	}
	return nil
}
