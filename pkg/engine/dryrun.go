package engine

// dryRunOverride is a fixed (status, observed value, remediation) substitute
// used in simulation mode when no live data source is available.
type dryRunOverride struct {
	Status        Status
	ObservedValue string
	Remediation   string
}

// dryRunOverrides models a realistic weak org: roughly 40% pass, 30% partial,
// 30% fail across the assessable controls, so demonstration output covers the
// whole status range reproducibly. Controls without an override fall back to
// their real rule on empty input, which resolves to not_applicable.
var dryRunOverrides = map[string]dryRunOverride{
	"SBS-AUTH-001": {StatusFail, "No SSO providers configured [dry-run]", "Configure org-wide SSO."},
	"SBS-AUTH-002": {StatusPartial, "SSO not configured — bypass governance N/A [dry-run]", ""},
	"SBS-AUTH-003": {StatusFail, "No Login IP Ranges found [dry-run]", "Add Login IP Ranges to privileged profiles."},
	"SBS-AUTH-004": {StatusPartial, "MFA org settings unconfirmed [dry-run]", "Verify MFA in Setup > Identity Verification."},
	"SBS-ACS-001":  {StatusFail, "8 admin profiles with ModifyAllData [dry-run]", "Reduce to ≤2 admin profiles."},
	"SBS-ACS-002":  {StatusPartial, "6 elevated permission sets [dry-run]", "Document justification for all elevated sets."},
	"SBS-ACS-003":  {StatusFail, "All 4 connected apps allow all users [dry-run]", "Apply admin-approved policy."},
	"SBS-ACS-004":  {StatusPartial, "2 super admin-equivalent profiles [dry-run]", "Document justification."},
	"SBS-ACS-005":  {StatusPartial, "Requires profile audit [dry-run]", "Run detailed profile review."},
	"SBS-ACS-006":  {StatusPartial, "Requires permission set audit [dry-run]", "Audit Use Any API Client grants."},
	"SBS-ACS-007":  {StatusPartial, "Non-human identity inventory required [dry-run]", "Build NHI inventory."},
	"SBS-ACS-008":  {StatusPartial, "NHI privilege scope requires audit [dry-run]", "Restrict NHI permissions."},
	"SBS-ACS-009":  {StatusPartial, "Compensating controls require manual review [dry-run]", ""},
	"SBS-ACS-010":  {StatusFail, "No access review process evidence found [dry-run]", "Implement quarterly access reviews."},
	"SBS-ACS-011":  {StatusPartial, "Change governance process requires verification [dry-run]", ""},
	"SBS-ACS-012":  {StatusPartial, "Login hour restrictions require profile audit [dry-run]", ""},
	"SBS-INT-002":  {StatusFail, "3 active remote sites have protocol security disabled [dry-run]", "Enable protocol security."},
	"SBS-INT-003":  {StatusPass, "12 Named Credentials found [dry-run]", ""},
	"SBS-INT-004":  {StatusPartial, "5 event types found but no API-specific types [dry-run]", "Enable ApiEvent type."},
	"SBS-OAUTH-001": {StatusFail, "3 connected apps allow all users [dry-run]", "Restrict to admin-approved."},
	"SBS-OAUTH-002": {StatusPartial, "2/5 apps lack admin-approved restriction [dry-run]", "Apply policy to all apps."},
	"SBS-OAUTH-003": {StatusPartial, "Criticality classification not documented [dry-run]", "Classify all connected apps."},
	"SBS-OAUTH-004": {StatusPartial, "Vendor due diligence documentation missing [dry-run]", "Complete vendor assessments."},
	"SBS-DATA-001":  {StatusPartial, "Field scan required [dry-run]", "Run data classification scan."},
	"SBS-DATA-002":  {StatusPartial, "Field inventory requires SOQL audit [dry-run]", ""},
	"SBS-DATA-003":  {StatusPartial, "Backup process not verifiable via API [dry-run]", "Verify backup schedule."},
	"SBS-DATA-004":  {StatusFail, "0 fields with history tracking enabled [dry-run]", "Enable field history tracking."},
	"SBS-SECCONF-001": {StatusPartial, "Health Check score: 64/100 [dry-run]", "Remediate to reach ≥80%."},
	"SBS-SECCONF-002": {StatusPartial, "Score 64/100 — deviations remain [dry-run]", "Address all failing items."},
	"SBS-DEP-003":     {StatusFail, "No Transaction Security Policies found [dry-run]", "Create TSPs for high-risk events."},
	"SBS-CODE-003":    {StatusPartial, "Apex logging requires code audit [dry-run]", ""},
	"SBS-CODE-004":    {StatusFail, "Sensitive data in logs cannot be ruled out [dry-run]", "Audit all Apex log statements."},
}
