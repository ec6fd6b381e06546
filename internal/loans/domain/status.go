package domain

// LoanStatus is the application-level status the router and agents key on.
type LoanStatus string

const (
	StatusInitial            LoanStatus = "initial"
	StatusNegotiating        LoanStatus = "negotiating"
	StatusUnderwriting       LoanStatus = "underwriting"
	StatusManualReviewFraud  LoanStatus = "manual_review_fraud"
	StatusApproved           LoanStatus = "approved"
	StatusRejected           LoanStatus = "rejected"
	StatusAwaitingSalarySlip LoanStatus = "awaiting_salary_slip"
)

var knownStatuses = map[LoanStatus]struct{}{
	StatusInitial:            {},
	StatusNegotiating:        {},
	StatusUnderwriting:       {},
	StatusManualReviewFraud:  {},
	StatusApproved:           {},
	StatusRejected:           {},
	StatusAwaitingSalarySlip: {},
}

func IsKnownStatus(status LoanStatus) bool {
	_, ok := knownStatuses[status]
	return ok
}

// IsTerminalStatus reports whether the status may never change again.
// Rejection is sticky once set by fraud or underwriting.
func IsTerminalStatus(status LoanStatus) bool {
	return status == StatusRejected
}
