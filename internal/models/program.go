package models

import "time"

// ProgramType classifies the academic offering.
type ProgramType string

const (
	ProgramTypeCourse   ProgramType = "COURSE"
	ProgramTypeDiploma  ProgramType = "DIPLOMA"
	ProgramTypeWorkshop ProgramType = "WORKSHOP"
	ProgramTypeSeminar  ProgramType = "SEMINAR"
)

// Valid reports whether the program type is supported.
func (t ProgramType) Valid() bool {
	switch t {
	case ProgramTypeCourse, ProgramTypeDiploma, ProgramTypeWorkshop, ProgramTypeSeminar:
		return true
	default:
		return false
	}
}

// ProgramLevel grades the difficulty of a program.
type ProgramLevel string

const (
	ProgramLevelBasic        ProgramLevel = "BASIC"
	ProgramLevelIntermediate ProgramLevel = "INTERMEDIATE"
	ProgramLevelAdvanced     ProgramLevel = "ADVANCED"
)

// Valid reports whether the level is supported.
func (l ProgramLevel) Valid() bool {
	switch l {
	case ProgramLevelBasic, ProgramLevelIntermediate, ProgramLevelAdvanced:
		return true
	default:
		return false
	}
}

// PaymentPlan describes how a program is paid for.
type PaymentPlan string

const (
	PaymentPlanSingle       PaymentPlan = "SINGLE"
	PaymentPlanInstallments PaymentPlan = "INSTALLMENTS"
)

// Valid reports whether the payment plan is supported.
func (p PaymentPlan) Valid() bool {
	return p == PaymentPlanSingle || p == PaymentPlanInstallments
}

// Program is an academic offering (course, diploma, workshop or seminar).
// Active is a visibility flag: deactivated programs stay on record and keep
// their groups and enrollment history.
type Program struct {
	ID          string       `db:"id" json:"id"`
	Code        string       `db:"code" json:"code"`
	Name        string       `db:"name" json:"name"`
	Description *string      `db:"description" json:"description,omitempty"`
	Type        ProgramType  `db:"type" json:"type"`
	Level       ProgramLevel `db:"level" json:"level"`
	Cost        float64      `db:"cost" json:"cost"`
	PaymentType PaymentPlan  `db:"payment_type" json:"payment_type"`
	Active      bool         `db:"active" json:"active"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// ProgramFilter captures filtering criteria for listing programs.
type ProgramFilter struct {
	Type      ProgramType
	Level     ProgramLevel
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
