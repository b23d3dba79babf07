package engine

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const catalogPath = "../../config/sbs_controls.json"

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// makeScope builds ScopeData from a nested literal the way the collector
// emits it: scope name -> query name -> SOQL result.
func makeScope(t *testing.T, payload map[string]interface{}) *ScopeData {
	t.Helper()
	raw := make(map[string]json.RawMessage, len(payload))
	for k, v := range payload {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		raw[k] = b
	}
	return NewScopeData(raw)
}

func soql(records ...Record) map[string]interface{} {
	return map[string]interface{}{
		"totalSize": len(records),
		"records":   records,
	}
}

func TestAssessOneFindingPerControl(t *testing.T) {
	catalog, err := LoadCatalog(catalogPath)
	require.NoError(t, err)
	require.NotEmpty(t, catalog.Controls)

	findings := Assess(EmptyScopeData(), catalog, AssessOptions{Env: "dev", Now: fixedNow()})
	require.Len(t, findings, len(catalog.Controls))

	seen := make(map[string]bool)
	for _, f := range findings {
		require.True(t, f.Status.Valid(), "invalid status %q for %s", f.Status, f.ControlID)
		require.True(t, f.Severity.Valid(), "invalid severity %q for %s", f.Severity, f.ControlID)
		require.Equal(t, DefaultOwner, f.Owner)
		require.Contains(t, f.EvidenceRef, "collector://salesforce/dev/"+f.ControlID)
		require.False(t, seen[f.ControlID], "duplicate finding for %s", f.ControlID)
		seen[f.ControlID] = true
	}
}

func TestAssessEmptyScopeNeverFails(t *testing.T) {
	catalog, err := LoadCatalog(catalogPath)
	require.NoError(t, err)

	for _, f := range Assess(nil, catalog, AssessOptions{Env: "dev", Now: fixedNow()}) {
		require.NotEqual(t, StatusFail, f.Status,
			"%s failed with nothing collected", f.ControlID)
	}
}

func TestAssessControlWithoutRule(t *testing.T) {
	catalog, err := LoadCatalog(catalogPath)
	require.NoError(t, err)

	findings := Assess(EmptyScopeData(), catalog, AssessOptions{Env: "dev", Now: fixedNow()})
	var dep004 *Finding
	for i := range findings {
		if findings[i].ControlID == "SBS-DEP-004" {
			dep004 = &findings[i]
		}
	}
	require.NotNil(t, dep004, "catalog control without a rule should still yield a finding")
	require.Equal(t, StatusNotApplicable, dep004.Status)
	require.Equal(t, "No assessment rule defined", dep004.ObservedValue)
}

func TestDryRunWeakOrgProfile(t *testing.T) {
	catalog, err := LoadCatalog(catalogPath)
	require.NoError(t, err)

	findings := Assess(EmptyScopeData(), catalog, AssessOptions{Env: "test", DryRun: true, Now: fixedNow()})
	counts := StatusCounts(findings)
	require.GreaterOrEqual(t, counts[StatusFail], 3, "weak-org dry run should fail several controls")
	require.GreaterOrEqual(t, counts[StatusPartial], 5)

	byID := make(map[string]Finding, len(findings))
	for _, f := range findings {
		byID[f.ControlID] = f
	}
	require.Equal(t, StatusFail, byID["SBS-AUTH-001"].Status)
	require.Contains(t, byID["SBS-AUTH-001"].ObservedValue, "[dry-run]")
	require.Equal(t, StatusPass, byID["SBS-INT-003"].Status)
}

func TestDryRunIsDeterministic(t *testing.T) {
	catalog, err := LoadCatalog(catalogPath)
	require.NoError(t, err)

	opts := AssessOptions{Env: "test", DryRun: true, Now: fixedNow()}
	a, err := json.Marshal(NewGapAnalysis(Assess(EmptyScopeData(), catalog, opts), opts))
	require.NoError(t, err)
	b, err := json.Marshal(NewGapAnalysis(Assess(EmptyScopeData(), catalog, opts), opts))
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestNewGapAnalysisIDs(t *testing.T) {
	opts := AssessOptions{Org: "acme.my.salesforce.com", Env: "prod", Now: fixedNow()}
	gap := NewGapAnalysis(nil, opts)
	require.Equal(t, "sfdc-assess-acme-prod-20260301", gap.AssessmentID)

	dry := NewGapAnalysis(nil, AssessOptions{Env: "test", DryRun: true, Now: fixedNow()})
	require.Equal(t, "sfdc-assess-dry-run-test-20260301", dry.AssessmentID)
	require.Equal(t, "unknown", dry.Org)
}

func TestScopeDataDualShape(t *testing.T) {
	authPayload := map[string]interface{}{
		"sso_providers": soql(Record{"IsEnabled": true}),
	}

	wrapped := makeScope(t, map[string]interface{}{"auth": authPayload})
	slice, ok := wrapped.Scope("auth")
	require.True(t, ok)
	require.Equal(t, 1, slice.Total("sso_providers"))
	_, ok = wrapped.Scope("oauth")
	require.False(t, ok, "wrapped shape must not answer uncollected scopes")

	direct := makeScope(t, authPayload)
	slice, ok = direct.Scope("auth")
	require.True(t, ok)
	require.Equal(t, 1, slice.Total("sso_providers"))
	_, ok = direct.Scope("oauth")
	require.True(t, ok, "single-scope shape answers any scope lookup")
}

func TestParseCollectorOutputEnvelope(t *testing.T) {
	data := []byte(`{
		"org": "acme.my.salesforce.com",
		"env": "prod",
		"collected_at_utc": "2026-03-01T12:00:00Z",
		"raw": {"auth": {"sso_providers": {"totalSize": 0, "records": []}}}
	}`)
	out, err := ParseCollectorOutput(data)
	require.NoError(t, err)
	require.Equal(t, "acme.my.salesforce.com", out.Org)
	require.Equal(t, "prod", out.Env)
	_, ok := out.Data.Scope("auth")
	require.True(t, ok)

	bare, err := ParseCollectorOutput([]byte(`{"auth": {}}`))
	require.NoError(t, err)
	require.Equal(t, "unknown", bare.Org)
	_, ok = bare.Data.Scope("auth")
	require.True(t, ok)
}

func TestEvidenceRefFormat(t *testing.T) {
	ref := evidenceRef("prod", "SBS-AUTH-001", "2026-03-01")
	require.Equal(t, "collector://salesforce/prod/SBS-AUTH-001/snapshot-2026-03-01", ref)
}

func TestRegistryIDsMatchCatalogPrefix(t *testing.T) {
	for id := range Rules {
		if !strings.HasPrefix(id, "SBS-") {
			t.Fatalf("rule id %q lacks SBS- prefix", id)
		}
	}
}
