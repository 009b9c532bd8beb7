package models

import (
	"errors"
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
)

// User is the single profile the app is signed in as.
type User struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar"`
}

// LoginRequest is the phone number typed on the login view.
type LoginRequest struct {
	Phone string `json:"phone" form:"phone" conform:"trim" validate:"required,min=7,max=20,phone"`
}

// Normalize trims the request in place.
func (l *LoginRequest) Normalize() error {
	return conform.Strings(l)
}

// Digits returns the phone number without formatting characters.
func (l *LoginRequest) Digits() string {
	var b strings.Builder
	for i, r := range l.Phone {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// phoneChars accepts the characters a person types into a tel input.
func phoneChars(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune("+-() .", r):
		default:
			return false
		}
	}
	return digits >= 7
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
