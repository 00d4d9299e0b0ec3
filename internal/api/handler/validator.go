package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: newValidate()}
}

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("password", validPassword)
	_ = v.RegisterValidation("money", validMoney)
	return v
}

// validPassword requires a letter and a digit within bcrypt's byte limit.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) > maxPasswordBytes {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return letter && digit
}

// validMoney accepts a positive DECIMAL(10,2) amount.
func validMoney(fl validator.FieldLevel) bool {
	m, err := domain.ParseMoney(fl.Field().String())
	return err == nil && m > 0
}

// Validate satisfies the echo.Validator interface. Field failures come back
// as *domain.ValidationError keyed by wire name.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := domain.NewValidationError()
			for _, fe := range ve {
				out.Add(fe.Field(), fieldError(fe))
			}
			return out
		}
		return err
	}
	return nil
}

// Var checks a single value against tag, reporting failures under field.
func (ev *echoValidator) Var(out *domain.ValidationError, field string, value any, tag string) {
	err := ev.v.Var(value, tag)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		out.Add(field, fieldError(ve[0]))
	}
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "password":
		return fmt.Sprintf("must contain at least one letter and one digit and be at most %d bytes", maxPasswordBytes)
	case "money":
		return "must be a positive amount with at most 8 integer digits and 2 decimal places"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
