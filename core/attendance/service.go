package attendance

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
	ErrNotFound  = core.NewError(core.KindNotFound, "attendance record not found")
	ErrDuplicate = core.NewError(core.KindConflict, "attendance is already marked for this student on this date")
	ErrNotMarker = core.NewError(core.KindForbidden, "only teachers can mark attendance")
)

type (
	Repository interface {
		// CreateAttendance fails with ErrDuplicate if (student, date) is taken,
		// and with student.ErrNotFound if the student does not exist.
		CreateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		GetAttendance(ctx context.Context, id string) (Attendance, error)
		// QueryAttendance returns the matching records ordered by date.
		QueryAttendance(ctx context.Context, filter QueryFilter) ([]Attendance, error)
		UpdateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
	}

	Service struct {
		tx       core.Transactor
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(tx core.Transactor, repo Repository, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tx, "tx"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{tx: tx, repo: repo, validate: validate}
}

func newRecord(marker account.Account, studentID string, date core.Date, present bool) Attendance {
	now := time.Now().UTC()
	return Attendance{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Date:      date,
		Present:   present,
		MarkedBy:  marker.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (svc *Service) Mark(ctx context.Context, marker account.Account, na NewAttendance) (Attendance, error) {
	if !marker.IsTeacher() {
		return Attendance{}, ErrNotMarker
	}
	if err := na.Validate(svc.validate); err != nil {
		return Attendance{}, err
	}
	return svc.repo.CreateAttendance(ctx, newRecord(marker, na.StudentID, na.Date, *na.Present))
}

// MarkBatch marks every entry of nb, or none of them if any fails.
func (svc *Service) MarkBatch(ctx context.Context, marker account.Account, nb NewBatch) ([]Attendance, error) {
	if !marker.IsTeacher() {
		return nil, ErrNotMarker
	}
	if err := nb.Validate(svc.validate); err != nil {
		return nil, err
	}

	records := make([]Attendance, 0, len(nb.Entries))
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		for _, e := range nb.Entries {
			a, err := svc.repo.CreateAttendance(ctx, newRecord(marker, e.StudentID, nb.Date, *e.Present))
			if err != nil {
				return errors.WithMessagef(err, "student %s", e.StudentID)
			}
			records = append(records, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Attendance, error) {
	return svc.repo.GetAttendance(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Attendance, error) {
	return svc.repo.QueryAttendance(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAttendance) (Attendance, error) {
	if err := ua.Validate(svc.validate); err != nil {
		return Attendance{}, err
	}

	a, err := svc.repo.GetAttendance(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	a.Present = *ua.Present
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAttendance(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAttendance(ctx, id)
}
