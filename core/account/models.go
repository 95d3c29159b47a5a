package account

import (
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/academia/core"
)

var (
	HashCost = bcrypt.DefaultCost          // mockable
	HashFunc = bcrypt.GenerateFromPassword // mockable
)

// Role is the closed set of account roles.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var Roles = []Role{RoleTeacher, RoleStudent}

func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if !r.Valid() {
		return "", core.NewValidationError(nil, core.FieldError{Field: "role", Error: roleText})
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

func (r Role) String() string { return string(r) }

type Account struct {
	ID           string    `json:"id" db:"id"`
	Role         Role      `json:"role" db:"role"`
	Handle       string    `json:"handle" db:"handle"`
	Name         string    `json:"name" db:"name"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    null.Time `json:"last_login" db:"last_login"` // UTC
}

func (acc *Account) SetPassword(pwd string) error {
	hash, err := HashFunc([]byte(pwd), HashCost)
	if err != nil {
		return err
	}
	acc.PasswordHash = hash
	return nil
}

func (acc *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(pwd))
}

func (acc Account) IsTeacher() bool { return acc.Role == RoleTeacher }

func (acc Account) IsStudent() bool { return acc.Role == RoleStudent }

// Email returns the account's email address; only teachers sign in with one.
func (acc Account) Email() (mail.Address, bool) {
	if !acc.IsTeacher() {
		return mail.Address{}, false
	}
	return mail.Address{Name: acc.Name, Address: acc.Handle}, true
}

// NewAccount contains information needed to register a new Account.
type NewAccount struct {
	Role            Role   `json:"role" validate:"required,role"`
	Handle          string `json:"handle" validate:"required,notblank,max=100"`
	Name            string `json:"name" validate:"required,notblank,max=100"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Clean normalizes the handle: emails are case-insensitive, student ids are kept as typed.
func (na *NewAccount) Clean() {
	na.Role = Role(core.CleanString(string(na.Role), true /* lower */))
	na.Name = core.CleanString(na.Name)
	na.Handle = CleanHandle(na.Role, na.Handle)
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Clean()
	return validate.Struct(na)
}

// CleanHandle normalizes a login handle within its role's namespace.
func CleanHandle(role Role, handle string) string {
	return core.CleanString(handle, role == RoleTeacher /* lower */)
}

// ChangePassword rotates the credential of a signed-in Account.
type ChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	// attributes the new password must not resemble
	handle, name string
}

func (cp *ChangePassword) Validate(validate *validator.Validate, acc Account) error {
	cp.handle = acc.Handle
	cp.name = acc.Name
	return validate.Struct(cp)
}

// SetPassword is an operator-driven password reset (no current password).
type SetPassword struct {
	Password string `json:"password" validate:"required"`

	handle, name string
}

func (sp *SetPassword) Validate(validate *validator.Validate, acc Account) error {
	sp.handle = acc.Handle
	sp.name = acc.Name
	return validate.Struct(sp)
}

// GetFilter selects one Account: by ID, or by (Role, Handle).
type GetFilter struct {
	ID     string
	Role   Role
	Handle string
}
