package grade

import (
	"math"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

var (
	subjectTag  = "subject"
	subjectText = "unknown subject"

	termTag  = "term"
	termText = "term must be one of: First Term, Mid Term, Final Term"

	// scores are stored with two decimals
	scoreTag  = "score"
	scoreText = "score must have at most 2 decimal places"
)

// InitValidators registers the grade validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)

	_ = validate.RegisterValidation(termTag, termValidation)
	core.RegisterCustomTranslation(validate, translator, termTag, termText)

	_ = validate.RegisterValidation(scoreTag, scoreValidation)
	core.RegisterCustomTranslation(validate, translator, scoreTag, scoreText)
}

func subjectValidation(fl validator.FieldLevel) bool {
	return Subject(fl.Field().String()).Valid()
}

func termValidation(fl validator.FieldLevel) bool {
	return Term(fl.Field().String()).Valid()
}

func scoreValidation(fl validator.FieldLevel) bool {
	cents := fl.Field().Float() * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}
