package models

import "time"

// GroupStatus represents the lifecycle of a group.
type GroupStatus string

const (
	GroupStatusActive    GroupStatus = "ACTIVE"
	GroupStatusFinished  GroupStatus = "FINISHED"
	GroupStatusCancelled GroupStatus = "CANCELLED"
)

// Valid reports whether the group status is supported.
func (s GroupStatus) Valid() bool {
	switch s {
	case GroupStatusActive, GroupStatusFinished, GroupStatusCancelled:
		return true
	default:
		return false
	}
}

// Weekday names accepted in group schedules.
type Weekday string

const (
	WeekdayMonday    Weekday = "MONDAY"
	WeekdayTuesday   Weekday = "TUESDAY"
	WeekdayWednesday Weekday = "WEDNESDAY"
	WeekdayThursday  Weekday = "THURSDAY"
	WeekdayFriday    Weekday = "FRIDAY"
	WeekdaySaturday  Weekday = "SATURDAY"
	WeekdaySunday    Weekday = "SUNDAY"
)

// Valid reports whether the weekday is supported.
func (d Weekday) Valid() bool {
	switch d {
	case WeekdayMonday, WeekdayTuesday, WeekdayWednesday, WeekdayThursday,
		WeekdayFriday, WeekdaySaturday, WeekdaySunday:
		return true
	default:
		return false
	}
}

// ScheduleSlot is one recurring session of a group.
type ScheduleSlot struct {
	ID        string  `db:"id" json:"id"`
	GroupID   string  `db:"group_id" json:"-"`
	Day       Weekday `db:"day" json:"day"`
	StartTime string  `db:"start_time" json:"start_time"`
	EndTime   string  `db:"end_time" json:"end_time"`
}

// Group is a cohort running a program with a teacher in a classroom.
// Membership is carried by enrollments, never by the group itself.
type Group struct {
	ID          string      `db:"id" json:"id"`
	Code        string      `db:"code" json:"code"`
	ProgramID   string      `db:"program_id" json:"program_id"`
	TeacherID   string      `db:"teacher_id" json:"teacher_id"`
	ClassroomID string      `db:"classroom_id" json:"classroom_id"`
	StartDate   time.Time   `db:"start_date" json:"start_date"`
	EndDate     time.Time   `db:"end_date" json:"end_date"`
	Status      GroupStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`

	Schedule []ScheduleSlot `db:"-" json:"schedule,omitempty"`
}

// GroupDetail enriches a group with display names from its references.
type GroupDetail struct {
	Group
	ProgramName   string  `db:"program_name" json:"program_name"`
	ProgramCost   float64 `db:"program_cost" json:"program_cost"`
	TeacherName   string  `db:"teacher_name" json:"teacher_name"`
	ClassroomName string  `db:"classroom_name" json:"classroom_name"`
}

// GroupFilter captures filtering criteria for listing groups.
type GroupFilter struct {
	ProgramID string
	TeacherID string
	Status    GroupStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
