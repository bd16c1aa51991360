package form

import "errors"

// Wire codes of the validation failures, shared by the service and its clients.
const (
	CodeMissingFields = "missing_fields"
	CodeInvalidEmail  = "invalid_email"
	CodeInvalidPhone  = "invalid_phone"
	CodeInvalidZip    = "invalid_zip"
)

var codes = []struct {
	err     error
	code    string
	message string
}{
	{ErrMissingFields, CodeMissingFields, "Please fill all required fields"},
	{ErrInvalidEmail, CodeInvalidEmail, "Please enter a valid email address"},
	{ErrInvalidPhone, CodeInvalidPhone, "Please enter a valid phone number"},
	{ErrInvalidZip, CodeInvalidZip, "ZIP code must be exactly 6 characters"},
}

// Code returns the wire code of a validation error, or "" if err is not one.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// FromCode returns the validation error for a wire code, or nil for an unknown code.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// UserMessage returns the text shown to the user for a validation error. Other errors are
// returned as their plain error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.message
		}
	}
	return err.Error()
}
