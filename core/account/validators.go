package account

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/academia/core"
)

var (
	roleTag  = "role"
	roleText = "role must be one of: teacher, student"

	handleEmailTag  = "handle_email"
	handleEmailText = "teachers sign in with a valid email address"

	handleStudentIDTag   = "handle_student_id"
	handleStudentIDText  = "student ids may only contain letters, digits, dashes and slashes"
	handleStudentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/_-]*$`)

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to account attributes"
)

// InitValidators registers the account validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	validate.RegisterStructValidation(accountStructValidation, NewAccount{}, ChangePassword{}, SetPassword{})
	core.RegisterCustomTranslation(validate, translator, handleEmailTag, handleEmailText)
	core.RegisterCustomTranslation(validate, translator, handleStudentIDTag, handleStudentIDText)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

func roleValidation(fl validator.FieldLevel) bool {
	if role, ok := fl.Field().Interface().(Role); ok {
		return role.Valid()
	}
	return false
}

// accountStructValidation does struct level validation on NewAccount, ChangePassword and SetPassword.
func accountStructValidation(sl validator.StructLevel) {
	switch acc := sl.Current().Interface().(type) {
	case NewAccount:
		validateHandle(acc, sl)
		validatePassword(acc.Password, sl, acc.Name, acc.Handle)
	case ChangePassword:
		validatePassword(acc.Password, sl, acc.name, acc.handle)
	case SetPassword:
		validatePassword(acc.Password, sl, acc.name, acc.handle)
	}
}

// validateHandle checks the handle against its role namespace:
// teachers use their email, students their student id.
func validateHandle(na NewAccount, sl validator.StructLevel) {
	switch na.Role {
	case RoleTeacher:
		if err := sl.Validator().Var(na.Handle, "email"); err != nil {
			sl.ReportError(na.Handle, "handle", "Handle", handleEmailTag, "")
		}
	case RoleStudent:
		if !handleStudentIDRegex.MatchString(na.Handle) {
			sl.ReportError(na.Handle, "handle", "Handle", handleStudentIDTag, "")
		}
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - no account attrs similarity
func validatePassword(pwd string, sl validator.StructLevel, attrs ...string) {
	if pwd == "" {
		return // reported by `required`
	}
	if tag := passwordViolation(pwd, attrs...); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}

// passwordViolation returns the tag of the first broken password rule, if any.
func passwordViolation(pwd string, attrs ...string) string {
	var digitCount int

	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == pwdLen {
		return pwdNotAllNumTag
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return pwdAttrSimTag
		}
	}
	return ""
}
