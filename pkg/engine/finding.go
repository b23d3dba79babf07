package engine

import "fmt"

// Status is the closed set of assessment outcomes for a control.
type Status string

const (
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
	StatusPartial       Status = "partial"
	StatusNotApplicable Status = "not_applicable"
)

// Severity is the declared risk level of a control.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusPartial, StatusNotApplicable:
		return true
	}
	return false
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityModerate, SeverityLow:
		return true
	}
	return false
}

// DefaultOwner is assigned to findings that carry no explicit owner.
const DefaultOwner = "Business Security Services"

// Finding is the atomic evaluation result for one control in one run.
type Finding struct {
	ControlID     string   `json:"control_id"`
	Status        Status   `json:"status"`
	Severity      Severity `json:"severity"`
	Owner         string   `json:"owner"`
	DueDate       string   `json:"due_date"`
	ObservedValue string   `json:"observed_value"`
	Remediation   string   `json:"remediation"`
	EvidenceRef   string   `json:"evidence_ref"`
}

// notApplicable builds a not_applicable finding with an explanatory reason.
func notApplicable(controlID string, severity Severity, reason string) Finding {
	return Finding{
		ControlID:     controlID,
		Status:        StatusNotApplicable,
		Severity:      severity,
		ObservedValue: reason,
	}
}

// scopeMissing is the default reason when a scope was never collected.
const scopeMissing = "Scope not collected by sfdc-connect"

// evidenceRef derives the deterministic audit pointer for a finding.
// It is an audit trail key, not a fetch handle.
func evidenceRef(env, controlID, dateStr string) string {
	return fmt.Sprintf("collector://salesforce/%s/%s/snapshot-%s", env, controlID, dateStr)
}
