package models

import (
	"log"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	trans        ut.Translator
	setupErr     error
)

// customTag is a validation tag with its English message.
type customTag struct {
	name    string
	fn      validator.Func
	message string
}

var customTags = []customTag{
	{name: "phone", fn: phoneChars, message: "{0} must be a phone number"},
	{name: "reporttype", fn: func(fl validator.FieldLevel) bool {
		_, err := ParseReportType(fl.Field().String())
		return err == nil
	}, message: "{0} must be one of Lab, Radiology, General, Scan"},
}

func setupValidator() {
	validate, trans, setupErr = newValidator(customTags)
	if setupErr != nil {
		log.Printf("Error setting up validator: %v", setupErr)
	}
}

func newValidator(tags []customTag) (*validator.Validate, ut.Translator, error) {
	english := en.New()
	uni := ut.New(english, english)
	tr, found := uni.GetTranslator("en")
	if !found {
		return nil, nil, errors.New("english translator not found")
	}

	v := validator.New()
	if err := en_translations.RegisterDefaultTranslations(v, tr); err != nil {
		return nil, nil, errors.Wrap(err, "register default translations")
	}
	for _, tag := range tags {
		tag := tag
		if err := v.RegisterValidation(tag.name, tag.fn); err != nil {
			return nil, nil, errors.Wrapf(err, "register %q validation", tag.name)
		}
		err := v.RegisterTranslation(tag.name, tr, func(u ut.Translator) error {
			return u.Add(tag.name, tag.message, true)
		}, func(u ut.Translator, fe validator.FieldError) string {
			t, err := u.T(tag.name, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "register %q translation", tag.name)
		}
	}
	return v, tr, nil
}

// ValidateStruct validates req and returns the translated messages joined
// into a single error.
func ValidateStruct(req interface{}) error {
	validateOnce.Do(setupValidator)
	if setupErr != nil {
		return errors.Wrap(setupErr, "validator unavailable")
	}
	errs := translateError(validate.Struct(req), trans)
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}
