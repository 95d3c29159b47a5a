package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type Attendance struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Date      core.Date `json:"date" db:"date"`
	Present   bool      `json:"present" db:"present"`
	MarkedBy  string    `json:"marked_by" db:"marked_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

var errDateRequired = core.FieldError{Field: "date", Error: "this field is required"}

// NewAttendance contains information needed to mark a student present or absent on a date.
type NewAttendance struct {
	StudentID string    `json:"student_id" validate:"required,notblank"`
	Date      core.Date `json:"date"`
	Present   *bool     `json:"present" validate:"required"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	if err := validate.Struct(na); err != nil {
		return err
	}
	if na.Date.IsZero() {
		return core.NewValidationError(nil, errDateRequired)
	}
	return nil
}

// UpdateAttendance only flips the flag; student & date are the record's identity.
type UpdateAttendance struct {
	Present *bool `json:"present" validate:"required"`
}

func (ua *UpdateAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(ua)
}

type BatchEntry struct {
	StudentID string `json:"student_id" validate:"required,notblank"`
	Present   *bool  `json:"present" validate:"required"`
}

// NewBatch marks several students on one date; it applies entirely or not at all.
type NewBatch struct {
	Date    core.Date    `json:"date"`
	Entries []BatchEntry `json:"entries" validate:"required,min=1,dive"`
}

func (nb *NewBatch) Validate(validate *validator.Validate) error {
	for i := range nb.Entries {
		nb.Entries[i].StudentID = core.CleanString(nb.Entries[i].StudentID)
	}
	if err := validate.Struct(nb); err != nil {
		return err
	}
	if nb.Date.IsZero() {
		return core.NewValidationError(nil, errDateRequired)
	}
	seen := make(map[string]bool, len(nb.Entries))
	for _, e := range nb.Entries {
		if seen[e.StudentID] {
			return core.NewValidationError(nil, core.FieldError{Field: "entries", Error: "student " + e.StudentID + " is listed twice"})
		}
		seen[e.StudentID] = true
	}
	return nil
}

// QueryFilter applies AND on set fields. From & To are inclusive.
type QueryFilter struct {
	StudentID string    `query:"student_id"`
	Date      core.Date `query:"date"`
	From      core.Date `query:"from"`
	To        core.Date `query:"to"`
}

// Match reports whether a satisfies the filter.
func (qf QueryFilter) Match(a Attendance) bool {
	if qf.StudentID != "" && a.StudentID != qf.StudentID {
		return false
	}
	if !qf.Date.IsZero() && !a.Date.Equal(qf.Date) {
		return false
	}
	if !qf.From.IsZero() && a.Date.Before(qf.From) {
		return false
	}
	if !qf.To.IsZero() && a.Date.After(qf.To) {
		return false
	}
	return true
}
