package engine

import "fmt"

// RuleFunc evaluates one control against the collected scope data. Rules are
// pure: same input, same finding. They never error; absent data resolves to
// not_applicable.
type RuleFunc func(scope *ScopeData) Finding

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// SBS-AUTH-001: Enable Organization-Wide SSO Enforcement Setting.
func ruleAuth001(scope *ScopeData) Finding {
	auth, ok := scope.Scope("auth")
	if !ok {
		return notApplicable("SBS-AUTH-001", SeverityCritical, scopeMissing)
	}

	providers := auth.Records("sso_providers")
	enabled := 0
	for _, p := range providers {
		if p.Bool("IsEnabled") {
			enabled++
		}
	}

	if len(providers) == 0 {
		return Finding{
			ControlID:     "SBS-AUTH-001",
			Status:        StatusFail,
			Severity:      SeverityCritical,
			ObservedValue: "No SAML SSO providers configured — org-wide SSO not enforced.",
			Remediation:   "Configure and enable at least one SAML SSO provider in Setup > Single Sign-On Settings.",
		}
	}
	if enabled == 0 {
		return Finding{
			ControlID:     "SBS-AUTH-001",
			Status:        StatusPartial,
			Severity:      SeverityCritical,
			ObservedValue: fmt.Sprintf("%d SSO provider(s) configured but none enabled.", len(providers)),
			Remediation:   "Enable the configured SSO provider and enforce org-wide SSO.",
		}
	}
	return Finding{
		ControlID:     "SBS-AUTH-001",
		Status:        StatusPass,
		Severity:      SeverityCritical,
		ObservedValue: fmt.Sprintf("%d enabled SSO provider(s) found.", enabled),
	}
}

// SBS-AUTH-002: Govern users permitted to bypass SSO.
func ruleAuth002(scope *ScopeData) Finding {
	auth, ok := scope.Scope("auth")
	if !ok {
		return notApplicable("SBS-AUTH-002", SeverityModerate, scopeMissing)
	}

	providers := auth.Records("sso_providers")
	ipRanges := auth.Total("login_ip_ranges")

	if len(providers) == 0 {
		return Finding{
			ControlID:     "SBS-AUTH-002",
			Status:        StatusPartial,
			Severity:      SeverityModerate,
			ObservedValue: "SSO not configured — SSO bypass governance cannot be assessed.",
			Remediation:   "Configure SSO before evaluating bypass governance.",
		}
	}
	if ipRanges == 0 {
		return Finding{
			ControlID: "SBS-AUTH-002",
			Status:    StatusPartial,
			Severity:  SeverityModerate,
			ObservedValue: fmt.Sprintf(
				"SSO configured (%d provider(s)) but no Login IP Ranges restrict bypass.", len(providers)),
			Remediation: "Define Login IP Ranges on profiles that are exempt from SSO to limit bypass exposure.",
		}
	}
	return Finding{
		ControlID: "SBS-AUTH-002",
		Status:    StatusPass,
		Severity:  SeverityModerate,
		ObservedValue: fmt.Sprintf(
			"SSO configured with %d Login IP Range restriction(s) governing bypass.", ipRanges),
	}
}

// SBS-AUTH-003: Prohibit broad/unrestricted profile Login IP ranges.
func ruleAuth003(scope *ScopeData) Finding {
	auth, ok := scope.Scope("auth")
	if !ok {
		return notApplicable("SBS-AUTH-003", SeverityModerate, scopeMissing)
	}

	ipRanges := auth.Total("login_ip_ranges")
	switch {
	case ipRanges == 0:
		return Finding{
			ControlID:     "SBS-AUTH-003",
			Status:        StatusFail,
			Severity:      SeverityModerate,
			ObservedValue: "No Login IP Ranges configured — all IPs permitted for all profiles.",
			Remediation:   "Configure Login IP Ranges on privileged profiles to restrict access by network location.",
		}
	case ipRanges < 3:
		return Finding{
			ControlID:     "SBS-AUTH-003",
			Status:        StatusPartial,
			Severity:      SeverityModerate,
			ObservedValue: fmt.Sprintf("Only %d Login IP Range(s) — coverage may be incomplete.", ipRanges),
			Remediation:   "Review whether all privileged profiles have Login IP Ranges applied.",
		}
	}
	return Finding{
		ControlID:     "SBS-AUTH-003",
		Status:        StatusPass,
		Severity:      SeverityModerate,
		ObservedValue: fmt.Sprintf("%d Login IP Range(s) configured.", ipRanges),
	}
}

// SBS-AUTH-004: Enforce strong MFA for external users.
func ruleAuth004(scope *ScopeData) Finding {
	auth, ok := scope.Scope("auth")
	if !ok {
		return notApplicable("SBS-AUTH-004", SeverityModerate, scopeMissing)
	}

	if auth.HasKey("mfa_org_settings", "error") {
		return Finding{
			ControlID:     "SBS-AUTH-004",
			Status:        StatusPartial,
			Severity:      SeverityModerate,
			ObservedValue: "MFA org settings could not be retrieved via Tooling API — manual review required.",
			Remediation:   "Verify MFA enforcement for external users in Setup > Identity Verification.",
		}
	}

	records := auth.Records("mfa_org_settings")
	if len(records) > 0 && records[0].Bool("MultiFactorAuthenticationForUserUI") {
		return Finding{
			ControlID:     "SBS-AUTH-004",
			Status:        StatusPass,
			Severity:      SeverityModerate,
			ObservedValue: "MFA enforced for user UI (MultiFactorAuthenticationForUserUI=true).",
		}
	}
	return Finding{
		ControlID:     "SBS-AUTH-004",
		Status:        StatusPartial,
		Severity:      SeverityModerate,
		ObservedValue: "MFA org-level enforcement not confirmed — Tooling API returned no usable MFA fields.",
		Remediation:   "Confirm MFA enforcement in Setup > Identity Verification or via Transaction Security policies.",
	}
}

// ---------------------------------------------------------------------------
// Access Controls
// ---------------------------------------------------------------------------

// SBS-ACS-001: Enforce a documented permission set model.
func ruleAcs001(scope *ScopeData) Finding {
	access, ok := scope.Scope("access")
	if !ok {
		return notApplicable("SBS-ACS-001", SeverityHigh, scopeMissing)
	}

	adminProfiles := access.Total("admin_profiles")
	switch {
	case adminProfiles > 5:
		return Finding{
			ControlID: "SBS-ACS-001",
			Status:    StatusFail,
			Severity:  SeverityHigh,
			ObservedValue: fmt.Sprintf(
				"%d profiles with ModifyAllData or ManageUsers — excessive admin surface.", adminProfiles),
			Remediation: "Reduce admin profiles; document and justify each. Target ≤2 for ModifyAllData.",
		}
	case adminProfiles > 2:
		return Finding{
			ControlID:     "SBS-ACS-001",
			Status:        StatusPartial,
			Severity:      SeverityHigh,
			ObservedValue: fmt.Sprintf("%d elevated profiles — review and justify each.", adminProfiles),
			Remediation:   "Document justification for all profiles with elevated permissions.",
		}
	}
	return Finding{
		ControlID:     "SBS-ACS-001",
		Status:        StatusPass,
		Severity:      SeverityHigh,
		ObservedValue: fmt.Sprintf("%d admin profile(s) — within acceptable threshold.", adminProfiles),
	}
}

// SBS-ACS-002: Documented justification for API-Enabled authorizations.
func ruleAcs002(scope *ScopeData) Finding {
	access, ok := scope.Scope("access")
	if !ok {
		return notApplicable("SBS-ACS-002", SeverityHigh, scopeMissing)
	}

	permSets := access.Total("elevated_permission_sets")
	switch {
	case permSets > 10:
		return Finding{
			ControlID: "SBS-ACS-002",
			Status:    StatusFail,
			Severity:  SeverityHigh,
			ObservedValue: fmt.Sprintf(
				"%d permission sets with elevated privileges — undocumented API access likely.", permSets),
			Remediation: "Audit and document justification for all permission sets with ModifyAllData or ManageUsers.",
		}
	case permSets > 4:
		return Finding{
			ControlID: "SBS-ACS-002",
			Status:    StatusPartial,
			Severity:  SeverityHigh,
			ObservedValue: fmt.Sprintf(
				"%d elevated permission sets — verify all are documented and justified.", permSets),
			Remediation: "Ensure each elevated permission set has a documented business justification.",
		}
	}
	return Finding{
		ControlID:     "SBS-ACS-002",
		Status:        StatusPass,
		Severity:      SeverityHigh,
		ObservedValue: fmt.Sprintf("%d elevated permission set(s) — within acceptable threshold.", permSets),
	}
}

// SBS-ACS-003: Justification for Approve Uninstalled Connected Apps.
func ruleAcs003(scope *ScopeData) Finding {
	access, ok := scope.Scope("access")
	if !ok {
		return notApplicable("SBS-ACS-003", SeverityCritical, scopeMissing)
	}

	apps := access.Records("connected_apps")
	if len(apps) == 0 {
		return Finding{
			ControlID:     "SBS-ACS-003",
			Status:        StatusPass,
			Severity:      SeverityCritical,
			ObservedValue: "No connected apps found.",
		}
	}

	unrestricted := 0
	for _, a := range apps {
		if !a.Bool("OptionsAllowAdminApprovedUsersOnly") {
			unrestricted++
		}
	}
	switch {
	case unrestricted == len(apps):
		return Finding{
			ControlID:     "SBS-ACS-003",
			Status:        StatusFail,
			Severity:      SeverityCritical,
			ObservedValue: fmt.Sprintf("All %d connected app(s) allow non-admin-approved users.", len(apps)),
			Remediation:   "Restrict all connected apps to admin-approved users only via OAuth policy.",
		}
	case unrestricted > 0:
		return Finding{
			ControlID: "SBS-ACS-003",
			Status:    StatusPartial,
			Severity:  SeverityCritical,
			ObservedValue: fmt.Sprintf(
				"%d/%d connected app(s) not restricted to admin-approved users.", unrestricted, len(apps)),
			Remediation: "Apply admin-approved-users-only policy to all connected apps.",
		}
	}
	return Finding{
		ControlID:     "SBS-ACS-003",
		Status:        StatusPass,
		Severity:      SeverityCritical,
		ObservedValue: fmt.Sprintf("All %d connected app(s) restricted to admin-approved users.", len(apps)),
	}
}

// SBS-ACS-004: Justification for super admin-equivalent users.
func ruleAcs004(scope *ScopeData) Finding {
	access, ok := scope.Scope("access")
	if !ok {
		return notApplicable("SBS-ACS-004", SeverityHigh, scopeMissing)
	}

	superAdmin := 0
	for _, p := range access.Records("admin_profiles") {
		if p.Bool("PermissionsModifyAllData") && p.Bool("PermissionsManageUsers") {
			superAdmin++
		}
	}
	switch {
	case superAdmin > 2:
		return Finding{
			ControlID: "SBS-ACS-004",
			Status:    StatusFail,
			Severity:  SeverityHigh,
			ObservedValue: fmt.Sprintf(
				"%d profiles have both ModifyAllData and ManageUsers — super admin equivalent.", superAdmin),
			Remediation: "Reduce to ≤2 super-admin-equivalent profiles with documented justification.",
		}
	case superAdmin > 0:
		return Finding{
			ControlID: "SBS-ACS-004",
			Status:    StatusPartial,
			Severity:  SeverityHigh,
			ObservedValue: fmt.Sprintf(
				"%d super admin–equivalent profile(s) — verify documented justification exists.", superAdmin),
			Remediation: "Document the business justification for each super-admin-equivalent profile.",
		}
	}
	return Finding{
		ControlID:     "SBS-ACS-004",
		Status:        StatusPass,
		Severity:      SeverityHigh,
		ObservedValue: "No profiles found with both ModifyAllData and ManageUsers.",
	}
}

// ruleAcsStructural covers ACS controls that need a deeper audit than the
// collector surface supports: partial when the access scope was collected.
func ruleAcsStructural(controlID string, severity Severity) RuleFunc {
	return func(scope *ScopeData) Finding {
		if _, ok := scope.Scope("access"); !ok {
			return notApplicable(controlID, severity, scopeMissing)
		}
		return Finding{
			ControlID:     controlID,
			Status:        StatusPartial,
			Severity:      severity,
			ObservedValue: "Access scope collected — full assessment requires detailed profile/permission set audit.",
			Remediation:   fmt.Sprintf("Run a detailed permission audit for %s using Setup > Permission Set Analyzer.", controlID),
		}
	}
}

// ---------------------------------------------------------------------------
// Integrations
// ---------------------------------------------------------------------------

// SBS-INT-002: Inventory and justification of Remote Site Settings.
func ruleInt002(scope *ScopeData) Finding {
	integrations, ok := scope.Scope("integrations")
	if !ok {
		return notApplicable("SBS-INT-002", SeverityModerate, scopeMissing)
	}

	sites := integrations.Records("remote_site_settings")
	insecure, inactiveInsecure := 0, 0
	for _, s := range sites {
		if !s.Bool("DisableProtocolSecurity") {
			continue
		}
		if s.Bool("IsActive") {
			insecure++
		} else {
			inactiveInsecure++
		}
	}

	switch {
	case insecure > 0:
		return Finding{
			ControlID:     "SBS-INT-002",
			Status:        StatusFail,
			Severity:      SeverityModerate,
			ObservedValue: fmt.Sprintf("%d active remote site(s) have protocol security disabled.", insecure),
			Remediation:   "Enable protocol security on all active Remote Site Settings or remove unused entries.",
		}
	case inactiveInsecure > 0:
		return Finding{
			ControlID:     "SBS-INT-002",
			Status:        StatusPartial,
			Severity:      SeverityModerate,
			ObservedValue: fmt.Sprintf("%d inactive remote site(s) have protocol security disabled.", inactiveInsecure),
			Remediation:   "Remove or remediate inactive remote sites with insecure protocol settings.",
		}
	}
	return Finding{
		ControlID:     "SBS-INT-002",
		Status:        StatusPass,
		Severity:      SeverityModerate,
		ObservedValue: fmt.Sprintf("%d remote site setting(s) — none with protocol security disabled.", len(sites)),
	}
}

// SBS-INT-003: Inventory and justification of Named Credentials.
func ruleInt003(scope *ScopeData) Finding {
	integrations, ok := scope.Scope("integrations")
	if !ok {
		return notApplicable("SBS-INT-003", SeverityModerate, scopeMissing)
	}

	creds := integrations.Records("named_credentials")
	if len(creds) == 0 {
		return Finding{
			ControlID:     "SBS-INT-003",
			Status:        StatusPartial,
			Severity:      SeverityModerate,
			ObservedValue: "No Named Credentials found — integrations may be using hardcoded credentials.",
			Remediation:   "Migrate integration credentials to Named Credentials to centralize and govern access.",
		}
	}
	return Finding{
		ControlID:     "SBS-INT-003",
		Status:        StatusPass,
		Severity:      SeverityModerate,
		ObservedValue: fmt.Sprintf("%d Named Credential(s) found — managed integration credentials in use.", len(creds)),
	}
}

// SBS-INT-004: Retain API Total Usage Event Logs for 30 days.
func ruleInt004(scope *ScopeData) Finding {
	em, ok := scope.Scope("event-monitoring")
	if !ok {
		return notApplicable("SBS-INT-004", SeverityHigh, scopeMissing)
	}

	unique := make(map[string]bool)
	for _, r := range em.Records("event_log_types") {
		if t := r.Str("EventType"); t != "" {
			unique[t] = true
		}
	}

	if len(unique) == 0 {
		return Finding{
			ControlID:     "SBS-INT-004",
			Status:        StatusFail,
			Severity:      SeverityHigh,
			ObservedValue: "No Event Log File types found in last 7 days — API event monitoring not active.",
			Remediation:   "Enable Event Monitoring in Setup > Event Manager and ensure API event types are captured.",
		}
	}

	apiTypes := sortedAPIEventTypes(unique)
	if len(apiTypes) == 0 {
		return Finding{
			ControlID: "SBS-INT-004",
			Status:    StatusPartial,
			Severity:  SeverityHigh,
			ObservedValue: fmt.Sprintf(
				"%d event type(s) found but no API-specific event types detected.", len(unique)),
			Remediation: "Enable API event types (ApiEvent, RestApi) in Event Manager for full API telemetry.",
		}
	}
	return Finding{
		ControlID: "SBS-INT-004",
		Status:    StatusPass,
		Severity:  SeverityHigh,
		ObservedValue: fmt.Sprintf(
			"%d API event type(s) active: %s.", len(apiTypes), joinComma(apiTypes)),
	}
}

// ---------------------------------------------------------------------------
// OAuth Security
// ---------------------------------------------------------------------------

// SBS-OAUTH-001: Require formal installation approval for Connected Apps.
func ruleOauth001(scope *ScopeData) Finding {
	oauth, ok := scope.Scope("oauth")
	if !ok {
		return notApplicable("SBS-OAUTH-001", SeverityCritical, scopeMissing)
	}

	policies := oauth.Records("connected_app_oauth_policies")
	if len(policies) == 0 {
		return Finding{
			ControlID:     "SBS-OAUTH-001",
			Status:        StatusPass,
			Severity:      SeverityCritical,
			ObservedValue: "No OAuth-enabled connected apps found.",
		}
	}

	openAccess := 0
	for _, p := range policies {
		switch p.Str("PermittedUsersPolicyEnum") {
		case "AllUsers", "":
			openAccess++
		}
	}
	switch {
	case openAccess == len(policies):
		return Finding{
			ControlID: "SBS-OAUTH-001",
			Status:    StatusFail,
			Severity:  SeverityCritical,
			ObservedValue: fmt.Sprintf(
				"All %d connected app(s) allow all users — no formal installation control.", len(policies)),
			Remediation: "Restrict all connected apps to admin-approved users or specific profiles/permission sets.",
		}
	case openAccess > 0:
		return Finding{
			ControlID:     "SBS-OAUTH-001",
			Status:        StatusPartial,
			Severity:      SeverityCritical,
			ObservedValue: fmt.Sprintf("%d/%d connected app(s) permit all users.", openAccess, len(policies)),
			Remediation:   "Apply admin-approved-only policy to all connected apps.",
		}
	}
	return Finding{
		ControlID:     "SBS-OAUTH-001",
		Status:        StatusPass,
		Severity:      SeverityCritical,
		ObservedValue: fmt.Sprintf("All %d connected app(s) have controlled access policies.", len(policies)),
	}
}

// SBS-OAUTH-002: Require profile/permission set access for Connected Apps.
func ruleOauth002(scope *ScopeData) Finding {
	oauth, ok := scope.Scope("oauth")
	if !ok {
		return notApplicable("SBS-OAUTH-002", SeverityCritical, scopeMissing)
	}

	policies := oauth.Records("connected_app_oauth_policies")
	if len(policies) == 0 {
		return Finding{
			ControlID:     "SBS-OAUTH-002",
			Status:        StatusPass,
			Severity:      SeverityCritical,
			ObservedValue: "No OAuth-enabled connected apps found.",
		}
	}

	unrestricted := 0
	for _, p := range policies {
		if !p.Bool("OptionsAllowAdminApprovedUsersOnly") {
			unrestricted++
		}
	}
	switch {
	case unrestricted == len(policies):
		return Finding{
			ControlID: "SBS-OAUTH-002",
			Status:    StatusFail,
			Severity:  SeverityCritical,
			ObservedValue: fmt.Sprintf(
				"All %d connected app(s) not restricted to admin-approved users.", len(policies)),
			Remediation: "Enable 'Admin approved users are pre-authorized' on all connected apps.",
		}
	case unrestricted > 0:
		return Finding{
			ControlID: "SBS-OAUTH-002",
			Status:    StatusPartial,
			Severity:  SeverityCritical,
			ObservedValue: fmt.Sprintf(
				"%d/%d connected app(s) lack admin-approved restriction.", unrestricted, len(policies)),
			Remediation: "Apply admin-approved-users policy to all remaining connected apps.",
		}
	}
	return Finding{
		ControlID:     "SBS-OAUTH-002",
		Status:        StatusPass,
		Severity:      SeverityCritical,
		ObservedValue: fmt.Sprintf("All %d connected app(s) restricted to admin-approved users.", len(policies)),
	}
}

// ruleOauthStructural covers OAuth controls needing manual classification.
func ruleOauthStructural(controlID string, severity Severity) RuleFunc {
	return func(scope *ScopeData) Finding {
		if _, ok := scope.Scope("oauth"); !ok {
			return notApplicable(controlID, severity, scopeMissing)
		}
		return Finding{
			ControlID:     controlID,
			Status:        StatusPartial,
			Severity:      severity,
			ObservedValue: "OAuth scope collected — full assessment requires manual classification and documentation.",
			Remediation:   fmt.Sprintf("Complete manual assessment for %s per the SBS runbook.", controlID),
		}
	}
}

// ---------------------------------------------------------------------------
// Data Security
// ---------------------------------------------------------------------------

// SBS-DATA-004: Require field history tracking for sensitive fields.
func ruleData004(scope *ScopeData) Finding {
	em, ok := scope.Scope("event-monitoring")
	if !ok {
		return notApplicable("SBS-DATA-004", SeverityHigh, scopeMissing)
	}

	tracked := em.Total("field_history_retention")
	switch {
	case tracked == 0:
		return Finding{
			ControlID:     "SBS-DATA-004",
			Status:        StatusFail,
			Severity:      SeverityHigh,
			ObservedValue: "No fields with history tracking enabled found.",
			Remediation:   "Enable Field History Tracking on sensitive fields in object field settings.",
		}
	case tracked < 10:
		return Finding{
			ControlID: "SBS-DATA-004",
			Status:    StatusPartial,
			Severity:  SeverityHigh,
			ObservedValue: fmt.Sprintf(
				"Only %d tracked field(s) — coverage may be insufficient for sensitive data.", tracked),
			Remediation: "Review all objects containing PII/regulated data and enable Field History Tracking.",
		}
	}
	return Finding{
		ControlID:     "SBS-DATA-004",
		Status:        StatusPass,
		Severity:      SeverityHigh,
		ObservedValue: fmt.Sprintf("%d field(s) with history tracking enabled.", tracked),
	}
}

// ruleDataStructural covers data controls needing a field-level inventory the
// collector cannot produce; always partial, with or without scope data.
func ruleDataStructural(controlID string, severity Severity) RuleFunc {
	return func(_ *ScopeData) Finding {
		return Finding{
			ControlID:     controlID,
			Status:        StatusPartial,
			Severity:      severity,
			ObservedValue: "Data security controls require field-level inventory — not available via sfdc-connect.",
			Remediation:   fmt.Sprintf("Complete %s assessment via Setup > Data Classification or a custom SOQL audit.", controlID),
		}
	}
}

// ---------------------------------------------------------------------------
// Security Configuration
// ---------------------------------------------------------------------------

// SBS-SECCONF-001: Establish a Salesforce Health Check Baseline.
func ruleSecconf001(scope *ScopeData) Finding {
	secconf, ok := scope.Scope("secconf")
	if !ok {
		return notApplicable("SBS-SECCONF-001", SeverityHigh, scopeMissing)
	}

	if secconf.HasKey("health_check", "note") {
		return Finding{
			ControlID:     "SBS-SECCONF-001",
			Status:        StatusPartial,
			Severity:      SeverityHigh,
			ObservedValue: "Health Check not available via SOQL — check manually in Setup > Security Health Check.",
			Remediation:   "Review Security Health Check in the Salesforce UI and establish a documented baseline.",
		}
	}
	records := secconf.Records("health_check")
	if len(records) == 0 {
		return Finding{
			ControlID:     "SBS-SECCONF-001",
			Status:        StatusPartial,
			Severity:      SeverityHigh,
			ObservedValue: "Health Check score could not be retrieved via API.",
			Remediation:   "Verify Health Check is accessible and document the baseline score.",
		}
	}

	score := records[0].Int("Score")
	switch {
	case score < 50:
		return Finding{
			ControlID:     "SBS-SECCONF-001",
			Status:        StatusFail,
			Severity:      SeverityHigh,
			ObservedValue: fmt.Sprintf("Health Check score: %d/100 — critically below baseline.", score),
			Remediation:   "Address all Health Check findings in Setup > Security Health Check immediately.",
		}
	case score < 80:
		return Finding{
			ControlID:     "SBS-SECCONF-001",
			Status:        StatusPartial,
			Severity:      SeverityHigh,
			ObservedValue: fmt.Sprintf("Health Check score: %d/100 — below recommended 80%% threshold.", score),
			Remediation:   "Remediate Health Check findings to reach ≥80% score.",
		}
	}
	return Finding{
		ControlID:     "SBS-SECCONF-001",
		Status:        StatusPass,
		Severity:      SeverityHigh,
		ObservedValue: fmt.Sprintf("Health Check score: %d/100.", score),
	}
}

// SBS-SECCONF-002: Review and remediate Health Check deviations.
// Reuses the health check data; status driven by the same score thresholds.
func ruleSecconf002(scope *ScopeData) Finding {
	secconf, ok := scope.Scope("secconf")
	if !ok {
		return notApplicable("SBS-SECCONF-002", SeverityHigh, scopeMissing)
	}

	records := secconf.Records("health_check")
	if len(records) == 0 {
		return Finding{
			ControlID:     "SBS-SECCONF-002",
			Status:        StatusPartial,
			Severity:      SeverityHigh,
			ObservedValue: "Health Check deviations cannot be enumerated via API — manual review required.",
			Remediation:   "Review and remediate each Health Check deviation in Setup > Security Health Check.",
		}
	}

	score := records[0].Int("Score")
	switch {
	case score < 50:
		return Finding{
			ControlID:     "SBS-SECCONF-002",
			Status:        StatusFail,
			Severity:      SeverityHigh,
			ObservedValue: fmt.Sprintf("Health Check score %d/100 indicates unaddressed critical deviations.", score),
			Remediation:   "Resolve all failing Health Check items — prioritise Critical and High risk items.",
		}
	case score < 80:
		return Finding{
			ControlID:     "SBS-SECCONF-002",
			Status:        StatusPartial,
			Severity:      SeverityHigh,
			ObservedValue: fmt.Sprintf("Health Check score %d/100 — some deviations remain unaddressed.", score),
			Remediation:   "Continue remediating Health Check findings until score reaches ≥80%.",
		}
	}
	return Finding{
		ControlID:     "SBS-SECCONF-002",
		Status:        StatusPass,
		Severity:      SeverityHigh,
		ObservedValue: fmt.Sprintf("Health Check score %d/100 — deviations within acceptable range.", score),
	}
}

// ---------------------------------------------------------------------------
// Transaction Security / Deployments
// ---------------------------------------------------------------------------

// SBS-DEP-003: Monitor and alert on unauthorised high-risk metadata changes.
func ruleDep003(scope *ScopeData) Finding {
	ts, ok := scope.Scope("transaction-security")
	if !ok {
		return notApplicable("SBS-DEP-003", SeverityHigh, scopeMissing)
	}

	policies := ts.Records("policies")
	if len(policies) == 0 {
		return Finding{
			ControlID:     "SBS-DEP-003",
			Status:        StatusFail,
			Severity:      SeverityHigh,
			ObservedValue: "No Transaction Security Policies found — no automated threat response configured.",
			Remediation:   "Create Transaction Security Policies in Setup > Transaction Security to monitor high-risk events.",
		}
	}
	enabled := 0
	for _, p := range policies {
		if p.Bool("IsEnabled") {
			enabled++
		}
	}
	if enabled == 0 {
		return Finding{
			ControlID:     "SBS-DEP-003",
			Status:        StatusPartial,
			Severity:      SeverityHigh,
			ObservedValue: fmt.Sprintf("%d Transaction Security Polic(ies) found but none enabled.", len(policies)),
			Remediation:   "Enable relevant Transaction Security Policies to enforce automated threat response.",
		}
	}
	return Finding{
		ControlID:     "SBS-DEP-003",
		Status:        StatusPass,
		Severity:      SeverityHigh,
		ObservedValue: fmt.Sprintf("%d/%d Transaction Security Polic(ies) active.", enabled, len(policies)),
	}
}

// ruleNotCollectable marks controls that are categorically outside the
// collector's API surface. Always not_applicable with a declared reason —
// they must be flagged for manual assessment, never silently skipped.
func ruleNotCollectable(controlID string, severity Severity, reason string) RuleFunc {
	return func(_ *ScopeData) Finding {
		return notApplicable(controlID, severity, reason)
	}
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

const (
	reasonCode       = "Requires source code review — not assessable via Salesforce API"
	reasonPortal     = "Requires Apex/LWC code audit — not assessable via Salesforce API"
	reasonDeploy     = "Requires CI/CD and source repository audit — not assessable via Salesforce API"
	reasonFileReview = "Requires manual content link review — not assessable via Salesforce API"
	reasonFoundation = "Foundational governance control — requires manual programme review"
)

// Rules maps each assessable control id to its evaluation function. The
// control id set is closed and known at build time; catalog controls without
// an entry resolve to not_applicable ("no assessment rule defined").
var Rules = map[string]RuleFunc{
	// Authentication
	"SBS-AUTH-001": ruleAuth001,
	"SBS-AUTH-002": ruleAuth002,
	"SBS-AUTH-003": ruleAuth003,
	"SBS-AUTH-004": ruleAuth004,
	// Access Controls
	"SBS-ACS-001": ruleAcs001,
	"SBS-ACS-002": ruleAcs002,
	"SBS-ACS-003": ruleAcs003,
	"SBS-ACS-004": ruleAcs004,
	"SBS-ACS-005": ruleAcsStructural("SBS-ACS-005", SeverityHigh),
	"SBS-ACS-006": ruleAcsStructural("SBS-ACS-006", SeverityCritical),
	"SBS-ACS-007": ruleAcsStructural("SBS-ACS-007", SeverityHigh),
	"SBS-ACS-008": ruleAcsStructural("SBS-ACS-008", SeverityHigh),
	"SBS-ACS-009": ruleAcsStructural("SBS-ACS-009", SeverityModerate),
	"SBS-ACS-010": ruleAcsStructural("SBS-ACS-010", SeverityModerate),
	"SBS-ACS-011": ruleAcsStructural("SBS-ACS-011", SeverityHigh),
	"SBS-ACS-012": ruleAcsStructural("SBS-ACS-012", SeverityModerate),
	// Integrations
	"SBS-INT-001": ruleNotCollectable("SBS-INT-001", SeverityModerate,
		"Browser extension inventory requires manual review"),
	"SBS-INT-002": ruleInt002,
	"SBS-INT-003": ruleInt003,
	"SBS-INT-004": ruleInt004,
	// OAuth Security
	"SBS-OAUTH-001": ruleOauth001,
	"SBS-OAUTH-002": ruleOauth002,
	"SBS-OAUTH-003": ruleOauthStructural("SBS-OAUTH-003", SeverityHigh),
	"SBS-OAUTH-004": ruleOauthStructural("SBS-OAUTH-004", SeverityModerate),
	// Data Security
	"SBS-DATA-001": ruleDataStructural("SBS-DATA-001", SeverityHigh),
	"SBS-DATA-002": ruleDataStructural("SBS-DATA-002", SeverityModerate),
	"SBS-DATA-003": ruleDataStructural("SBS-DATA-003", SeverityHigh),
	"SBS-DATA-004": ruleData004,
	// Security Configuration
	"SBS-SECCONF-001": ruleSecconf001,
	"SBS-SECCONF-002": ruleSecconf002,
	// Deployments
	"SBS-DEP-001": ruleNotCollectable("SBS-DEP-001", SeverityHigh, reasonDeploy),
	"SBS-DEP-002": ruleNotCollectable("SBS-DEP-002", SeverityHigh, reasonDeploy),
	"SBS-DEP-003": ruleDep003,
	"SBS-DEP-005": ruleNotCollectable("SBS-DEP-005", SeverityCritical, reasonDeploy),
	"SBS-DEP-006": ruleNotCollectable("SBS-DEP-006", SeverityHigh, reasonDeploy),
	// Code Security
	"SBS-CODE-001": ruleNotCollectable("SBS-CODE-001", SeverityModerate, reasonCode),
	"SBS-CODE-002": ruleNotCollectable("SBS-CODE-002", SeverityModerate, reasonCode),
	"SBS-CODE-003": ruleNotCollectable("SBS-CODE-003", SeverityHigh, reasonCode),
	"SBS-CODE-004": ruleNotCollectable("SBS-CODE-004", SeverityCritical, reasonCode),
	// Customer Portals
	"SBS-CPORTAL-001": ruleNotCollectable("SBS-CPORTAL-001", SeverityCritical, reasonPortal),
	"SBS-CPORTAL-002": ruleNotCollectable("SBS-CPORTAL-002", SeverityCritical, reasonPortal),
	// File Security
	"SBS-FILE-001": ruleNotCollectable("SBS-FILE-001", SeverityModerate, reasonFileReview),
	"SBS-FILE-002": ruleNotCollectable("SBS-FILE-002", SeverityModerate, reasonFileReview),
	"SBS-FILE-003": ruleNotCollectable("SBS-FILE-003", SeverityModerate, reasonFileReview),
	// Foundations
	"SBS-FDNS-001": ruleNotCollectable("SBS-FDNS-001", SeverityModerate, reasonFoundation),
}
