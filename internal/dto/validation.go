package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{6,}$`)
	phoneRe    = regexp.MustCompile(`^\+?\d{5,16}$`)

	passwdUpperRe   = regexp.MustCompile(`[A-Z]`)
	passwdDigitRe   = regexp.MustCompile(`\d`)
	passwdSpecialRe = regexp.MustCompile(`[\W_]`)
)

// RegisterCustomValidators installs the username, passwd and phone
// validators on gin's binding engine. Call once at startup.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})

	// 8-16 characters with at least one uppercase letter, one digit and
	// one special character.
	v.RegisterValidation("passwd", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) < 8 || len(s) > 16 {
			return false
		}
		return passwdUpperRe.MatchString(s) &&
			passwdDigitRe.MatchString(s) &&
			passwdSpecialRe.MatchString(s)
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
}
