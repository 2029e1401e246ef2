// Package validation holds the request validation rules shared by request binding and services
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

// Validation rule limits
var (
	PasswordMinLength   = 8
	FolderNameMaxLength = 50
	NameMaxLength       = 100
)

var digitPattern = regexp.MustCompile(`\d`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		if err := Register(instance); err != nil {
			panic(err)
		}
	})
	return instance
}

// Register adds the custom tags and json field naming to v.
// It is also applied to gin's binding validator.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return err
	}
	return v.RegisterValidation("password", strongPassword)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// notBlank rejects strings that are empty after trimming
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// strongPassword requires the minimum length and at least one digit
func strongPassword(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	return len(p) >= PasswordMinLength && digitPattern.MatchString(p)
}

// Struct validates s and converts failures to a ValidationFailed error keyed by json field
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	return Translate(err)
}

// Translate converts validator errors into the application validation error
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(map[string]string{"body": err.Error()})
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = FormatFieldError(fe)
	}
	return apperrors.NewValidationError(fields)
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "password":
		return e.Field() + " must be at least 8 characters and contain a digit"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// Required checks trimmed string fields by name and returns a ValidationFailed error for blanks
func Required(fields map[string]string) error {
	missing := make(map[string]string)
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing[name] = name + " is required"
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.NewValidationError(missing)
}
