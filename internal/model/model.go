package model

import "time"

// Fields are the business attributes of a record as they are entered on the form. The zero
// value is an empty draft. The validate tags are the rules of form.Validate.
type Fields struct {
	FirstName string `json:"firstName" db:"firstname" validate:"required"`
	LastName  string `json:"lastName"  db:"lastname"  validate:"required"`
	Phone     string `json:"phone"     db:"phone"     validate:"required,canonical_phone"`
	Email     string `json:"email"     db:"email"     validate:"required,record_email"`
	Address   string `json:"address"   db:"address"   validate:"required"`
	State     string `json:"state"     db:"state"     validate:"required"`
	District  string `json:"district"  db:"district"  validate:"required"`
	City      string `json:"city"      db:"city"      validate:"required"`
	Zip       string `json:"zip"       db:"zip"       validate:"required,len=6"`
}

// Record is the data structure for a person's contact and address details. The Id and the
// timestamps are assigned by the database.
type Record struct {
	Id int64 `json:"id" db:"id"`
	Fields
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Field identifies one of the business attributes of a record.
type Field int

const (
	FirstName Field = iota
	LastName
	Phone
	Email
	Address
	State
	District
	City
	Zip
)

// AllFields lists every field in form order.
var AllFields = []Field{FirstName, LastName, Phone, Email, Address, State, District, City, Zip}

var fieldLabels = [...]string{"First Name", "Last Name", "Phone", "Email", "Address", "State",
	"District", "City", "Zip Code"}

var fieldKeys = [...]string{"firstName", "lastName", "phone", "email", "address", "state",
	"district", "city", "zip"}

// Label returns the human readable name of the field.
func (f Field) Label() string {
	if f < 0 || int(f) >= len(fieldLabels) {
		return "Unknown"
	}
	return fieldLabels[f]
}

// Key returns the JSON name of the field.
func (f Field) Key() string {
	if f < 0 || int(f) >= len(fieldKeys) {
		return ""
	}
	return fieldKeys[f]
}

func (f Field) String() string {
	return f.Key()
}

// Get returns the value of a single field.
func (f Fields) Get(field Field) string {
	switch field {
	case FirstName:
		return f.FirstName
	case LastName:
		return f.LastName
	case Phone:
		return f.Phone
	case Email:
		return f.Email
	case Address:
		return f.Address
	case State:
		return f.State
	case District:
		return f.District
	case City:
		return f.City
	case Zip:
		return f.Zip
	}
	return ""
}

// Set assigns the value of a single field. No formatting is applied.
func (f *Fields) Set(field Field, value string) {
	switch field {
	case FirstName:
		f.FirstName = value
	case LastName:
		f.LastName = value
	case Phone:
		f.Phone = value
	case Email:
		f.Email = value
	case Address:
		f.Address = value
	case State:
		f.State = value
	case District:
		f.District = value
	case City:
		f.City = value
	case Zip:
		f.Zip = value
	}
}
