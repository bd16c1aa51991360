package form

// validation.go checks a completed draft before it is saved. The checks run in a fixed order
// and the first failure is returned:
//  1. every field is filled in
//  2. the email looks like local@domain.tld
//  3. the phone number has the canonical shape (DDD)-DDD-DDDD
//  4. the zip code has exactly six characters

import (
	"errors"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gitlab.com/dirk.krummacker/records-service/internal/model"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrInvalidPhone  = errors.New("invalid phone number")
	ErrInvalidZip    = errors.New("invalid zip code")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var phonePattern = regexp.MustCompile(`^\(\d{3}\)-\d{3}-\d{4}$`)

// validate checks the validate tags of model.Fields. Field errors are named by JSON key.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	mustRegister(v, "record_email", emailPattern)
	mustRegister(v, "canonical_phone", phonePattern)
	return v
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// failures maps a failed rule to its error, in the order the failures are reported.
var failures = []struct {
	tag string
	err error
}{
	{"record_email", ErrInvalidEmail},
	{"canonical_phone", ErrInvalidPhone},
	{"len", ErrInvalidZip},
}

// MissingFieldsError lists the fields that were left empty.
type MissingFieldsError struct {
	Fields []model.Field
}

func (e *MissingFieldsError) Error() string {
	labels := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		labels = append(labels, f.Label())
	}
	return ErrMissingFields.Error() + ": " + strings.Join(labels, ", ")
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}

// Validate checks the fields and returns nil if they may be persisted. Otherwise it returns
// a *MissingFieldsError, ErrInvalidEmail, ErrInvalidPhone or ErrInvalidZip.
func Validate(fields model.Fields) error {
	err := validate.Struct(fields)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	var missing []model.Field
	for _, f := range model.AllFields {
		if slices.ContainsFunc(errs, func(fe validator.FieldError) bool {
			return fe.Tag() == "required" && fe.Field() == f.Key()
		}) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	for _, failure := range failures {
		if slices.ContainsFunc(errs, func(fe validator.FieldError) bool {
			return fe.Tag() == failure.tag
		}) {
			return failure.err
		}
	}
	return err
}

// IsValidationError reports whether err is one of the validation failures of Validate.
func IsValidationError(err error) bool {
	return Code(err) != ""
}
