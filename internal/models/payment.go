package models

import "time"

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// Valid reports whether the payment method is supported.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard || m == PaymentMethodTransfer
}

// Payment is one append-only payment against an enrollment. Inserting a
// payment increments the enrollment's total_paid in the same transaction.
type Payment struct {
	ID           string        `db:"id" json:"id"`
	EnrollmentID string        `db:"enrollment_id" json:"enrollment_id"`
	Amount       float64       `db:"amount" json:"amount"`
	PaidAt       time.Time     `db:"paid_at" json:"paid_at"`
	Method       PaymentMethod `db:"method" json:"method"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// PaymentDetail enriches a payment with display context for transaction
// feeds and reports.
type PaymentDetail struct {
	Payment
	StudentFirstName  string `db:"student_first_name" json:"student_first_name"`
	StudentLastName   string `db:"student_last_name" json:"student_last_name"`
	StudentDocumentID string `db:"student_document_id" json:"student_document_id"`
	GroupCode         string `db:"group_code" json:"group_code"`
	ProgramName       string `db:"program_name" json:"program_name"`
}
