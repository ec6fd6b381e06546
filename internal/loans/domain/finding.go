package domain

// Severity grades a fraud finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Action is the recommended handling for a fraud finding.
type Action string

const (
	ActionNone         Action = "none"
	ActionManualReview Action = "manual_review"
	ActionReject       Action = "reject"
)

// FindingType tags the rule that produced a finding.
type FindingType string

const (
	FindingLowSalary            FindingType = "low_salary"
	FindingMissingSalary        FindingType = "missing_salary"
	FindingSalaryJump           FindingType = "salary_jump"
	FindingDocumentMismatch     FindingType = "document_mismatch"
	FindingDuplicateApplication FindingType = "duplicate_application"
	FindingSuspiciousAddress    FindingType = "suspicious_address"
	FindingRiskyProfile         FindingType = "risky_profile"
)

// Finding is a fixed-shape fraud rule result. Rules never attach fields
// outside this record, which keeps the aggregator exhaustive.
type Finding struct {
	Type     FindingType `json:"type"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
	Action   Action      `json:"action"`
}
