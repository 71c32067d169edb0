package models

import "time"

// Teacher is an instructor on the academy roster.
type Teacher struct {
	ID         string     `db:"id" json:"id"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	DocumentID string     `db:"document_id" json:"document_id"`
	Email      string     `db:"email" json:"email"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Speciality string     `db:"speciality" json:"speciality"`
	Degree     *string    `db:"degree" json:"degree,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	HireDate   *time.Time `db:"hire_date" json:"hire_date,omitempty"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering criteria for listing teachers.
type TeacherFilter struct {
	Speciality string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
