package quiz

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kipawa/jaribio/core"
)

var (
	answerKeyTag  = "answerkey"
	answerKeyText = "answer must be one of: a, b, c, d"

	answerOptionsTag  = "answeroptions"
	answerOptionsText = "options must map each of a, b, c, d to a non-empty text"
)

// InitValidators registers this package's custom validators. Call after
// core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(answerKeyTag, answerKeyValidation)
	core.RegisterCustomTranslation(validate, translator, answerKeyTag, answerKeyText)

	_ = validate.RegisterValidation(answerOptionsTag, answerOptionsValidation)
	core.RegisterCustomTranslation(validate, translator, answerOptionsTag, answerOptionsText)
}

// answerKeyValidation checks that the field is one of AnswerKeys.
func answerKeyValidation(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	for _, k := range AnswerKeys {
		if key == k {
			return true
		}
	}
	return false
}

// answerOptionsValidation checks that the options map holds exactly the
// AnswerKeys, each with a non-empty text.
func answerOptionsValidation(fl validator.FieldLevel) bool {
	opts, ok := fl.Field().Interface().(map[string]string)
	if !ok || len(opts) != len(AnswerKeys) {
		return false
	}
	for _, k := range AnswerKeys {
		if opts[k] == "" {
			return false
		}
	}
	return true
}
