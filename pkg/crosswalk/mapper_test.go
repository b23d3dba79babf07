package crosswalk

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/posture-adk/pkg/engine"
)

func testCatalog() map[string]engine.Control {
	return map[string]engine.Control{
		"SBS-AUTH-001": {
			ControlID: "SBS-AUTH-001",
			Category:  "Authentication",
			Title:     "Enable Organization-Wide SSO Enforcement Setting",
			RiskLevel: "critical",
		},
		"SBS-DATA-004": {
			ControlID: "SBS-DATA-004",
			Category:  "Data Security",
			Title:     "Require field history tracking for sensitive fields",
			RiskLevel: "high",
		},
	}
}

func testSSCF() *SSCFCrosswalk {
	return &SSCFCrosswalk{
		DefaultsByCategory: map[string][]SSCFAssociation{
			"Authentication": {{SSCFControlID: "SSCF-IAM-01"}},
		},
		ControlOverrides: map[string][]SSCFAssociation{
			"SBS-DATA-004": {{SSCFControlID: "SSCF-DSP-01"}, {SSCFControlID: "SSCF-LOG-01"}},
		},
	}
}

func testInput() MapInput {
	return MapInput{
		CatalogByID:    testCatalog(),
		CatalogVersion: "1.2.0",
		Legacy: map[string]LegacyMapping{
			"SFSEC-IAM-01": {
				LegacyControlID:   "SFSEC-IAM-01",
				SBSControlID:      "SBS-AUTH-001",
				MappingConfidence: "high",
				Notes:             "Legacy SSO enforcement check maps one-to-one.",
			},
			"SFSEC-RET-99": {
				LegacyControlID: "SFSEC-RET-99",
				SBSControlID:    "SBS-NET-001",
			},
		},
		SSCF: testSSCF(),
		Now:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func gapWith(findings ...engine.Finding) engine.GapAnalysis {
	return engine.GapAnalysis{
		AssessmentID: "sfdc-assess-acme-prod-20260301",
		Org:          "acme.my.salesforce.com",
		Env:          "prod",
		Findings:     findings,
	}
}

func TestMapPartitionsEveryFinding(t *testing.T) {
	gap := gapWith(
		engine.Finding{ControlID: "SBS-AUTH-001", Status: engine.StatusFail, Severity: engine.SeverityCritical},
		engine.Finding{ControlID: "SBS-GONE-001", Status: engine.StatusFail, Severity: engine.SeverityHigh},
		engine.Finding{ControlID: "SFSEC-IAM-01", Status: engine.StatusPartial, Severity: engine.SeverityModerate},
		engine.Finding{ControlID: "SFSEC-RET-99", Status: engine.StatusFail, Severity: engine.SeverityLow},
		engine.Finding{ControlID: "LEGACY-UNKNOWN", Status: engine.StatusPass, Severity: engine.SeverityLow},
	)

	b := Map(gap, testInput())

	total := len(b.MappedItems) + len(b.UnmappedItems) + len(b.InvalidMappingEntries)
	require.Equal(t, len(gap.Findings), total, "buckets must partition the input")
	require.Len(t, b.MappedItems, 2)
	require.Len(t, b.UnmappedItems, 1)
	require.Len(t, b.InvalidMappingEntries, 2)
	require.Equal(t, "sfdc-assess-acme-prod-20260301", b.AssessmentID)
	require.Equal(t, "CSA_SSCF", b.Framework)
}

func TestMapDirectSBSFinding(t *testing.T) {
	b := Map(gapWith(engine.Finding{
		ControlID: "SBS-AUTH-001",
		Status:    engine.StatusFail,
		Severity:  engine.SeverityCritical,
	}), testInput())

	require.Len(t, b.MappedItems, 1)
	item := b.MappedItems[0]
	require.Equal(t, "SBS-AUTH-001", item.LegacyControlID)
	require.Equal(t, "SBS-AUTH-001", item.SBSControlID)
	require.Equal(t, "high", item.MappingConfidence)
	require.Contains(t, item.MappingNotes, "Direct collector mapping")
	require.Equal(t, []string{"SSCF-IAM-01"}, item.SSCFControlIDs)
}

func TestMapLegacyCrosswalkRow(t *testing.T) {
	b := Map(gapWith(engine.Finding{
		ControlID: "SFSEC-IAM-01",
		Status:    engine.StatusPartial,
		Severity:  engine.SeverityModerate,
	}), testInput())

	require.Len(t, b.MappedItems, 1)
	item := b.MappedItems[0]
	require.Equal(t, "SFSEC-IAM-01", item.LegacyControlID)
	require.Equal(t, "SBS-AUTH-001", item.SBSControlID)
	require.Equal(t, "Enable Organization-Wide SSO Enforcement Setting", item.SBSTitle)
	require.Equal(t, "high", item.MappingConfidence)
}

func TestMapInvalidEntryFormats(t *testing.T) {
	b := Map(gapWith(
		engine.Finding{ControlID: "SBS-GONE-001", Status: engine.StatusFail},
		engine.Finding{ControlID: "SFSEC-RET-99", Status: engine.StatusFail},
	), testInput())

	require.Empty(t, b.MappedItems)
	require.Equal(t, []string{
		"SBS-GONE-001 -> SBS-GONE-001 (SBS control not found in imported catalog)",
		"SFSEC-RET-99 -> SBS-NET-001 (not found in imported catalog)",
	}, b.InvalidMappingEntries)
}

func TestMapOverrideBeatsCategoryDefault(t *testing.T) {
	b := Map(gapWith(engine.Finding{
		ControlID: "SBS-DATA-004",
		Status:    engine.StatusFail,
		Severity:  engine.SeverityHigh,
	}), testInput())

	require.Len(t, b.MappedItems, 1)
	require.Equal(t, []string{"SSCF-DSP-01", "SSCF-LOG-01"}, b.MappedItems[0].SSCFControlIDs)
}

func TestMapConfidenceDefaultsToUnrated(t *testing.T) {
	in := testInput()
	in.Legacy["SFSEC-X-01"] = LegacyMapping{
		LegacyControlID: "SFSEC-X-01",
		SBSControlID:    "SBS-AUTH-001",
	}
	b := Map(gapWith(engine.Finding{ControlID: "SFSEC-X-01", Status: engine.StatusPass}), in)

	require.Len(t, b.MappedItems, 1)
	require.Equal(t, "unrated", b.MappedItems[0].MappingConfidence)
	require.Equal(t, 1, b.Summary.MappingConfidenceCounts["unrated"])
}

func TestMapSummaryTallies(t *testing.T) {
	b := Map(gapWith(
		engine.Finding{ControlID: "SBS-AUTH-001", Status: engine.StatusFail},
		engine.Finding{ControlID: "SBS-DATA-004", Status: engine.StatusPartial},
		engine.Finding{ControlID: "LEGACY-UNKNOWN", Status: engine.StatusPass},
	), testInput())

	require.Equal(t, 3, b.Summary.FindingsTotal)
	require.Equal(t, 2, b.Summary.MappedFindings)
	require.Equal(t, 1, b.Summary.UnmappedFindings)
	require.Equal(t, 1, b.Summary.StatusCounts.Fail)
	require.Equal(t, 1, b.Summary.StatusCounts.Partial)
	require.Equal(t, 0, b.Summary.StatusCounts.Pass, "unmapped findings stay out of scoring tallies")
}

func TestMapIsIdempotent(t *testing.T) {
	gap := gapWith(
		engine.Finding{ControlID: "SBS-AUTH-001", Status: engine.StatusFail},
		engine.Finding{ControlID: "SFSEC-IAM-01", Status: engine.StatusPartial},
		engine.Finding{ControlID: "LEGACY-UNKNOWN", Status: engine.StatusPass},
	)
	in := testInput()

	a, err := json.Marshal(Map(gap, in))
	require.NoError(t, err)
	b, err := json.Marshal(Map(gap, in))
	require.NoError(t, err)
	require.Equal(t, string(a), string(b), "same input must produce byte-identical backlog")
}

func TestMatrixRendersBuckets(t *testing.T) {
	b := Map(gapWith(
		engine.Finding{ControlID: "SBS-AUTH-001", Status: engine.StatusFail, Severity: engine.SeverityCritical},
		engine.Finding{ControlID: "LEGACY-UNKNOWN", Status: engine.StatusPass},
		engine.Finding{ControlID: "SFSEC-RET-99", Status: engine.StatusFail},
	), testInput())

	md := b.Matrix()
	require.Contains(t, md, "SBS-AUTH-001")
	require.Contains(t, md, "LEGACY-UNKNOWN")
	require.Contains(t, md, "SBS-NET-001")
}
