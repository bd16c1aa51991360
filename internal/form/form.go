// Package form normalizes raw user input into canonical record fields and checks a completed
// draft before it is submitted.
package form

import (
	"strings"
	"unicode/utf8"

	"gitlab.com/dirk.krummacker/records-service/internal/model"
)

// PhoneDigits is the number of digits in a complete phone number.
const PhoneDigits = 10

// ZipLength is the exact number of characters in a zip code.
const ZipLength = 6

// FormatPhoneInput strips everything but digits from the raw value, keeps at most ten of
// them and applies the punctuation of the canonical form "(DDD)-DDD-DDDD" as far as digits
// are available:
//
//	""            -> ""
//	"12"          -> "(12"
//	"12345"       -> "(123)-45"
//	"1234567890"  -> "(123)-456-7890"
func FormatPhoneInput(raw string) string {
	digits := make([]byte, 0, PhoneDigits)
	for i := 0; i < len(raw) && len(digits) < PhoneDigits; i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	d := string(digits)
	switch {
	case len(d) > 6:
		return "(" + d[:3] + ")-" + d[3:6] + "-" + d[6:]
	case len(d) > 3:
		return "(" + d[:3] + ")-" + d[3:]
	case len(d) > 0:
		return "(" + d
	}
	return ""
}

// FormatZipInput truncates the raw value to at most ZipLength characters.
func FormatZipInput(raw string) string {
	if utf8.RuneCountInString(raw) <= ZipLength {
		return raw
	}
	var b strings.Builder
	n := 0
	for _, r := range raw {
		if n == ZipLength {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// OnStateChanged returns a copy of the fields with the new state. The district depends on the
// state, so it is always cleared.
func OnStateChanged(fields model.Fields, state string) model.Fields {
	fields.State = state
	fields.District = ""
	return fields
}

// ApplyInput returns a copy of the fields with the raw value applied to a single field, using
// the formatting rule of that field.
func ApplyInput(fields model.Fields, field model.Field, raw string) model.Fields {
	switch field {
	case model.Phone:
		fields.Phone = FormatPhoneInput(raw)
	case model.Zip:
		fields.Zip = FormatZipInput(raw)
	case model.State:
		return OnStateChanged(fields, raw)
	default:
		fields.Set(field, raw)
	}
	return fields
}
