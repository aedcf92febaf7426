package entity

import "time"

// CreditRefusal enumerates the reasons a credit sale is inadmissible. The
// reasons are distinct on purpose: each maps to its own user-facing message
// and they must never be conflated.
type CreditRefusal string

const (
	// CreditRefusalNone means the credit sale is admissible.
	CreditRefusalNone CreditRefusal = ""
	// CreditRefusalNoCustomer: no registered customer is attached.
	CreditRefusalNoCustomer CreditRefusal = "no_customer"
	// CreditRefusalMissingDueDate: no due date has been set.
	CreditRefusalMissingDueDate CreditRefusal = "missing_due_date"
	// CreditRefusalLimitExceeded: balance plus sale total would exceed the limit.
	CreditRefusalLimitExceeded CreditRefusal = "limit_exceeded"
)

// CreditDecision is the outcome of evaluating a proposed credit sale.
type CreditDecision struct {
	OK     bool          `json:"ok"`
	Reason CreditRefusal `json:"reason,omitempty"`
}

// EvaluateCredit decides whether a credit sale of totalCents is admissible
// for the given customer and due date. It is a pure function of its inputs:
// no repository, clock or network access, so it can be exercised against
// synthetic customers in isolation.
//
// Landing exactly on the limit is admissible; only exceeding it refuses.
func EvaluateCredit(customer *Customer, totalCents int64, dueDate *time.Time) CreditDecision {
	if customer == nil {
		return CreditDecision{Reason: CreditRefusalNoCustomer}
	}
	if dueDate == nil || dueDate.IsZero() {
		return CreditDecision{Reason: CreditRefusalMissingDueDate}
	}
	if customer.CurrentCredit+totalCents > customer.CreditLimit {
		return CreditDecision{Reason: CreditRefusalLimitExceeded}
	}
	return CreditDecision{OK: true}
}
