// Package validator turns go-playground struct tags into the field error list
// carried by 422 responses.
package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/taonaire/catalog-backend/internal/dto"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			name = strings.Split(f.Tag.Get("form"), ",")[0]
		}
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("password", strongPassword)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &Validator{validate: v}
}

// Validate returns nil when data passes every rule.
func (v *Validator) Validate(data any) []dto.FieldError {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []dto.FieldError{{Field: "_error", Message: "Invalid payload."}}
	}

	out := make([]dto.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, dto.FieldError{Field: e.Field(), Message: messageFor(e)})
	}
	return out
}

// strongPassword requires at least one uppercase letter and one digit.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && digit
}

// maxBytes bounds the encoded length; max counts runes, bcrypt counts bytes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func messageFor(e validator.FieldError) string {
	label := humanize(e.Field())
	isString := e.Kind() == reflect.String

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "Please provide a valid email address."
	case "password":
		return "Password must contain at least one uppercase letter and one number."
	case "len":
		if e.Field() == "otp" {
			return "OTP must be 6 digits."
		}
		return fmt.Sprintf("%s must be exactly %s characters.", label, e.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits.", label)
	case "min":
		if isString && e.Param() == "1" {
			return fmt.Sprintf("%s must not be empty.", label)
		}
		if isString {
			return fmt.Sprintf("%s must be at least %s characters.", label, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, e.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters.", label, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, e.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes.", label, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s.", label, e.Param())
	}
	return fmt.Sprintf("%s is invalid.", label)
}

// humanize turns "category_id" or "newPassword" into "Category id" / "New password".
func humanize(field string) string {
	if field == "otp" {
		return "OTP"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && i > 0:
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
