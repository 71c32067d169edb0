package models

import "time"

// Gender values accepted on student records.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "OTHER"
)

// Valid reports whether the gender value is supported.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Student is a person who can be enrolled into groups. Deactivating a
// student hides them from default listings without touching their
// enrollment or payment history.
type Student struct {
	ID                    string     `db:"id" json:"id"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	DocumentID            string     `db:"document_id" json:"document_id"`
	Email                 string     `db:"email" json:"email"`
	Phone                 *string    `db:"phone" json:"phone,omitempty"`
	BirthDate             *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender                *Gender    `db:"gender" json:"gender,omitempty"`
	Address               *string    `db:"address" json:"address,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	Active                bool       `db:"active" json:"active"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
