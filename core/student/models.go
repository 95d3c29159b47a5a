package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

type (
	Address struct {
		Street  string `json:"street" db:"street" validate:"max=200"`
		City    string `json:"city" db:"city" validate:"max=100"`
		State   string `json:"state" db:"state" validate:"max=100"`
		ZipCode string `json:"zip_code" db:"zip_code" validate:"max=20"`
	}

	Guardian struct {
		Name    string `json:"name" db:"name" validate:"max=100"`
		Contact string `json:"contact" db:"contact" validate:"max=100"`
	}

	EmergencyContact struct {
		Name         string `json:"name" db:"name" validate:"max=100"`
		Relationship string `json:"relationship" db:"relationship" validate:"max=50"`
		Phone        string `json:"phone" db:"phone" validate:"max=30"`
	}

	Student struct {
		ID                string           `json:"id" db:"id"`
		StudentIdentifier string           `json:"student_identifier" db:"student_identifier"`
		Name              string           `json:"name" db:"name"`
		Class             string           `json:"class" db:"class"`
		Section           string           `json:"section" db:"section"`
		DateOfBirth       core.Date        `json:"date_of_birth" db:"date_of_birth"`
		Guardian          Guardian         `json:"guardian" db:"guardian"`
		Address           Address          `json:"address" db:"address"`
		EmergencyContact  EmergencyContact `json:"emergency_contact" db:"emergency_contact"`
		AccountID         null.String      `json:"account_id" db:"account_id"` // set once the student registers
		CreatedAt         time.Time        `json:"created_at" db:"created_at"` // UTC
		UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"` // UTC
	}
)

func (a *Address) clean() {
	a.Street = core.CleanString(a.Street)
	a.City = core.CleanString(a.City)
	a.State = core.CleanString(a.State)
	a.ZipCode = core.CleanString(a.ZipCode)
}

func (g *Guardian) clean() {
	g.Name = core.CleanString(g.Name)
	g.Contact = core.CleanString(g.Contact)
}

func (ec *EmergencyContact) clean() {
	ec.Name = core.CleanString(ec.Name)
	ec.Relationship = core.CleanString(ec.Relationship)
	ec.Phone = core.CleanString(ec.Phone)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	StudentIdentifier string           `json:"student_identifier" validate:"required,notblank,max=50"`
	Name              string           `json:"name" validate:"required,notblank,max=100"`
	Class             string           `json:"class" validate:"required,notblank,max=50"`
	Section           string           `json:"section" validate:"max=20"`
	DateOfBirth       core.Date        `json:"date_of_birth"`
	Guardian          Guardian         `json:"guardian"`
	Address           Address          `json:"address"`
	EmergencyContact  EmergencyContact `json:"emergency_contact"`

	accountID string
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.StudentIdentifier = core.CleanString(ns.StudentIdentifier)
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	ns.Section = core.CleanString(ns.Section)
	ns.Guardian.clean()
	ns.Address.clean()
	ns.EmergencyContact.clean()
	return validate.Struct(ns)
}

// OwnedBy links the profile to the student Account registering it.
func (ns *NewStudent) OwnedBy(accountID string) {
	ns.accountID = accountID
}

// UpdateStudent lists the fields a teacher may change. The student identifier is immutable.
type UpdateStudent struct {
	Name             *string           `json:"name" validate:"omitempty,notblank,max=100"`
	Class            *string           `json:"class" validate:"omitempty,notblank,max=50"`
	Section          *string           `json:"section" validate:"omitempty,max=20"`
	DateOfBirth      *core.Date        `json:"date_of_birth"`
	Guardian         *Guardian         `json:"guardian"`
	Address          *Address          `json:"address"`
	EmergencyContact *EmergencyContact `json:"emergency_contact"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	cleanPtr(us.Name)
	cleanPtr(us.Class)
	cleanPtr(us.Section)
	if us.Guardian != nil {
		us.Guardian.clean()
	}
	if us.Address != nil {
		us.Address.clean()
	}
	if us.EmergencyContact != nil {
		us.EmergencyContact.clean()
	}
	return validate.Struct(us)
}

// Apply merges the set fields onto std.
func (us UpdateStudent) Apply(std *Student) {
	if us.Name != nil {
		std.Name = *us.Name
	}
	if us.Class != nil {
		std.Class = *us.Class
	}
	if us.Section != nil {
		std.Section = *us.Section
	}
	if us.DateOfBirth != nil {
		std.DateOfBirth = *us.DateOfBirth
	}
	if us.Guardian != nil {
		std.Guardian = *us.Guardian
	}
	if us.Address != nil {
		std.Address = *us.Address
	}
	if us.EmergencyContact != nil {
		std.EmergencyContact = *us.EmergencyContact
	}
}

// UpdateProfile lists the fields a student may change on their own profile.
type UpdateProfile struct {
	GuardianContact  *string           `json:"guardian_contact" validate:"omitempty,max=100"`
	Address          *Address          `json:"address"`
	EmergencyContact *EmergencyContact `json:"emergency_contact"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	cleanPtr(up.GuardianContact)
	if up.Address != nil {
		up.Address.clean()
	}
	if up.EmergencyContact != nil {
		up.EmergencyContact.clean()
	}
	return validate.Struct(up)
}

func (up UpdateProfile) Apply(std *Student) {
	if up.GuardianContact != nil {
		std.Guardian.Contact = *up.GuardianContact
	}
	if up.Address != nil {
		std.Address = *up.Address
	}
	if up.EmergencyContact != nil {
		std.EmergencyContact = *up.EmergencyContact
	}
}

type QueryFilter struct {
	Search  string `query:"search"` // case-insensitive match on name or student identifier
	Class   string `query:"class"`
	Section string `query:"section"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
	qf.Section = core.CleanString(qf.Section)
}

// Orderable fields for Query.
var OrderingFields = []string{"name", "student_identifier", "class", "created_at"}

// GetFilter selects one Student by ID, StudentIdentifier or AccountID.
type GetFilter struct {
	ID                string
	StudentIdentifier string
	AccountID         string
}

func cleanPtr(s *string) {
	if s != nil {
		*s = core.CleanString(*s)
	}
}
