package models

import "time"

// ClassroomType distinguishes physical rooms from virtual ones.
type ClassroomType string

const (
	ClassroomTypePhysical ClassroomType = "PHYSICAL"
	ClassroomTypeVirtual  ClassroomType = "VIRTUAL"
)

// Valid reports whether the classroom type is supported.
func (t ClassroomType) Valid() bool {
	return t == ClassroomTypePhysical || t == ClassroomTypeVirtual
}

// Classroom is a teaching space. Location applies to physical rooms,
// Platform and MeetingLink to virtual ones.
type Classroom struct {
	ID          string        `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Type        ClassroomType `db:"type" json:"type"`
	Capacity    int           `db:"capacity" json:"capacity"`
	Location    *string       `db:"location" json:"location,omitempty"`
	Platform    *string       `db:"platform" json:"platform,omitempty"`
	MeetingLink *string       `db:"meeting_link" json:"meeting_link,omitempty"`
	Active      bool          `db:"active" json:"active"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// ClassroomFilter captures filtering criteria for listing classrooms.
type ClassroomFilter struct {
	Type      ClassroomType
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
