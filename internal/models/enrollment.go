package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Any status may be set from any other;
// withdrawal does not erase payment or grade history.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "ENROLLED"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusApproved  EnrollmentStatus = "APPROVED"
	EnrollmentStatusFailed    EnrollmentStatus = "FAILED"
)

// Valid reports whether the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusWithdrawn, EnrollmentStatusApproved, EnrollmentStatusFailed:
		return true
	default:
		return false
	}
}

// Enrollment joins one student to one group and carries the financial and
// academic state of that membership. TotalPaid is a running sum maintained
// in the same transaction as each payment insert; it always equals the sum
// of the enrollment's payment amounts.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	GroupID   string           `db:"group_id" json:"group_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	TotalPaid float64          `db:"total_paid" json:"total_paid"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// Grade is one scored note on an enrollment. Note labels are unique per
// enrollment.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"-"`
	Note         string    `db:"note" json:"note"`
	Value        float64   `db:"value" json:"value"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AttendanceStatus marks how a student attended one session day.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "P"
	AttendanceStatusAbsent    AttendanceStatus = "A"
	AttendanceStatusJustified AttendanceStatus = "J"
)

// Valid reports whether the attendance status is supported.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent || s == AttendanceStatusJustified
}

// AttendanceEntry is one calendar day of attendance on an enrollment.
// Day is the record's calendar date; RecordedAt keeps the timestamp the
// day was first captured with and survives same-day re-takes.
type AttendanceEntry struct {
	ID           string           `db:"id" json:"id"`
	EnrollmentID string           `db:"enrollment_id" json:"-"`
	Day          time.Time        `db:"day" json:"day"`
	RecordedAt   time.Time        `db:"recorded_at" json:"recorded_at"`
	Status       AttendanceStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches an enrollment with student identity and the
// program cost needed to derive debt.
type EnrollmentDetail struct {
	Enrollment
	StudentFirstName string  `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string  `db:"student_last_name" json:"student_last_name"`
	StudentEmail     string  `db:"student_email" json:"student_email"`
	GroupCode        string  `db:"group_code" json:"group_code"`
	ProgramName      string  `db:"program_name" json:"program_name"`
	ProgramCost      float64 `db:"program_cost" json:"program_cost"`

	Grades     []Grade           `db:"-" json:"grades,omitempty"`
	Attendance []AttendanceEntry `db:"-" json:"attendance,omitempty"`
}

// Debt derives the outstanding balance, floored at zero. Overpayment is
// never reported as negative debt.
func (d EnrollmentDetail) Debt() float64 {
	if debt := d.ProgramCost - d.TotalPaid; debt > 0 {
		return debt
	}
	return 0
}
