package models

// DashboardStats is the aggregate snapshot served on the dashboard.
// TotalRevenue is all-time; TotalDebt sums per-enrollment debt clamped at
// zero so overpayments never offset other students' balances.
type DashboardStats struct {
	TotalStudents  int             `json:"totalStudents"`
	ActiveGroups   int             `json:"activeGroups"`
	TotalRevenue   float64         `json:"totalRevenue"`
	TotalDebt      float64         `json:"totalDebt"`
	RecentPayments []PaymentDetail `json:"recentPayments"`
}

// DebtorRow is one flattened entry of the debtors report. Only rows with
// positive debt are produced.
type DebtorRow struct {
	EnrollmentID     string  `db:"enrollment_id" json:"enrollment_id"`
	StudentFirstName string  `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string  `db:"student_last_name" json:"student_last_name"`
	StudentEmail     string  `db:"student_email" json:"student_email"`
	StudentPhone     *string `db:"student_phone" json:"student_phone,omitempty"`
	GroupCode        string  `db:"group_code" json:"group_code"`
	ProgramName      string  `db:"program_name" json:"program_name"`
	ProgramCost      float64 `db:"program_cost" json:"program_cost"`
	TotalPaid        float64 `db:"total_paid" json:"total_paid"`
	Debt             float64 `db:"debt" json:"debt"`
}
