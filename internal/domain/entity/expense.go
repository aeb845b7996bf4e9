package entity

import "time"

// ExpenseStatus is the review status of an expenditure claim. Only
// pending expenses may transition; approved and rejected are terminal.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
)

// IsTerminal reports whether the expense record is frozen.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseApproved || s == ExpenseRejected
}

// Expense is a driver expenditure claim, optionally linked to a float.
// Approval decrements the linked float's remaining balance; rejection
// and deletion never touch it.
type Expense struct {
	ID          string        `json:"id"`
	AmountCents int64         `json:"amount_cents"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Status      ExpenseStatus `json:"status"`
	FloatID     string        `json:"float_id,omitempty"`
	TourID      string        `json:"tour_id,omitempty"`
	DriverName  string        `json:"driver_name,omitempty"`
	ReceiptURL  string        `json:"receipt_url,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	DecidedAt   *time.Time    `json:"decided_at,omitempty"`
}
