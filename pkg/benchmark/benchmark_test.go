package benchmark

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/posture-adk/pkg/crosswalk"
	"github.com/user/posture-adk/pkg/engine"
)

func testIndex() *Index {
	return NewIndex([]IndexControl{
		{SSCFControlID: "SSCF-IAM-01", Domain: "Identity & Access Management", Title: "Federated authentication", OwnerTeam: "Identity Engineering"},
		{SSCFControlID: "SSCF-IAM-02", Domain: "Identity & Access Management", Title: "Least privilege", OwnerTeam: "Identity Engineering"},
		{SSCFControlID: "SSCF-LOG-01", Domain: "Logging & Monitoring", Title: "Event logging", OwnerTeam: "Detection Engineering"},
		{SSCFControlID: "SSCF-GOV-01", Domain: "Governance & Risk", Title: "SaaS ownership", OwnerTeam: "Business Security Services"},
	})
}

func item(sbsID string, status engine.Status, sscfIDs ...string) crosswalk.MappedItem {
	return crosswalk.MappedItem{
		LegacyControlID: sbsID,
		SBSControlID:    sbsID,
		Status:          status,
		SSCFControlIDs:  sscfIDs,
	}
}

func backlogWith(items ...crosswalk.MappedItem) *crosswalk.Backlog {
	return &crosswalk.Backlog{
		AssessmentID: "sfdc-assess-acme-prod-20260301",
		Framework:    crosswalk.Framework,
		MappedItems:  items,
	}
}

func TestRunEmptyDomainScoresPerfect(t *testing.T) {
	report := Run(backlogWith(), testIndex(), DefaultThreshold, time.Time{})

	require.Len(t, report.Domains, 3)
	for _, d := range report.Domains {
		require.Equal(t, 1.0, d.Score, "domain %s with no findings", d.Domain)
		require.Equal(t, "green", d.Status)
	}
	require.Equal(t, 1.0, report.OverallScore)
	require.Equal(t, "green", report.OverallStatus)
}

func TestRunScoreFormula(t *testing.T) {
	// 2 pass, 1 partial, 1 fail: (2 + 0.5) / 4 = 0.625 -> amber at 0.80.
	report := Run(backlogWith(
		item("SBS-AUTH-001", engine.StatusPass, "SSCF-IAM-01"),
		item("SBS-AUTH-002", engine.StatusPass, "SSCF-IAM-01"),
		item("SBS-ACS-001", engine.StatusPartial, "SSCF-IAM-02"),
		item("SBS-ACS-004", engine.StatusFail, "SSCF-IAM-02"),
	), testIndex(), DefaultThreshold, time.Time{})

	var iam DomainResult
	for _, d := range report.Domains {
		if d.Domain == "Identity & Access Management" {
			iam = d
		}
	}
	require.Equal(t, 0.625, iam.Score)
	require.Equal(t, "amber", iam.Status)
	require.Equal(t, 2, iam.Pass)
	require.Equal(t, 1, iam.Partial)
	require.Equal(t, 1, iam.Fail)
	require.Equal(t, 0.625, report.OverallScore)
}

func TestRunNotApplicableExcluded(t *testing.T) {
	report := Run(backlogWith(
		item("SBS-AUTH-001", engine.StatusPass, "SSCF-IAM-01"),
		item("SBS-CODE-001", engine.StatusNotApplicable, "SSCF-IAM-01"),
	), testIndex(), DefaultThreshold, time.Time{})

	for _, d := range report.Domains {
		if d.Domain == "Identity & Access Management" {
			require.Equal(t, 1.0, d.Score, "not_applicable must not dilute the score")
			require.Equal(t, 1, d.NotApplicable)
		}
	}
}

func TestRunFanOutAcrossDomains(t *testing.T) {
	// One failing finding mapped into two domains drags both down.
	report := Run(backlogWith(
		item("SBS-DEP-003", engine.StatusFail, "SSCF-IAM-01", "SSCF-LOG-01"),
	), testIndex(), DefaultThreshold, time.Time{})

	var affected int
	for _, d := range report.Domains {
		if d.FindingsCount > 0 {
			require.Equal(t, 0.0, d.Score)
			require.Equal(t, "red", d.Status)
			affected++
		}
	}
	require.Equal(t, 2, affected)
}

func TestRunUnmatchedCounted(t *testing.T) {
	report := Run(backlogWith(
		item("SBS-AUTH-001", engine.StatusFail, "SSCF-MISSING-99"),
		item("SBS-AUTH-002", engine.StatusFail),
	), testIndex(), DefaultThreshold, time.Time{})

	require.Equal(t, 2, report.Summary.UnmatchedFindings)
	require.Equal(t, 1.0, report.OverallScore, "unmatched findings stay out of scoring")
}

func TestRunWorstStatusPrecedence(t *testing.T) {
	report := Run(backlogWith(
		item("SBS-AUTH-001", engine.StatusPass, "SSCF-IAM-01"),
		item("SBS-AUTH-002", engine.StatusPartial, "SSCF-IAM-01"),
		item("SBS-AUTH-003", engine.StatusFail, "SSCF-IAM-01"),
	), testIndex(), DefaultThreshold, time.Time{})

	for _, d := range report.Domains {
		for _, c := range d.Controls {
			if c.SSCFControlID == "SSCF-IAM-01" {
				require.Equal(t, engine.StatusFail, c.WorstStatus)
			}
		}
	}
}

func TestRunRounding(t *testing.T) {
	// 1 pass, 2 fail: 1/3 = 0.3333333... -> 0.3333
	report := Run(backlogWith(
		item("SBS-AUTH-001", engine.StatusPass, "SSCF-IAM-01"),
		item("SBS-AUTH-002", engine.StatusFail, "SSCF-IAM-01"),
		item("SBS-AUTH-003", engine.StatusFail, "SSCF-IAM-01"),
	), testIndex(), DefaultThreshold, time.Time{})

	require.Equal(t, 0.3333, report.OverallScore)
}

func TestRunIsIdempotent(t *testing.T) {
	backlog := backlogWith(
		item("SBS-AUTH-001", engine.StatusPass, "SSCF-IAM-01"),
		item("SBS-DEP-003", engine.StatusFail, "SSCF-IAM-01", "SSCF-LOG-01"),
		item("SBS-FDNS-001", engine.StatusPartial, "SSCF-GOV-01"),
	)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a, err := json.Marshal(Run(backlog, testIndex(), DefaultThreshold, now))
	require.NoError(t, err)
	b, err := json.Marshal(Run(backlog, testIndex(), DefaultThreshold, now))
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestStatusBandEdges(t *testing.T) {
	require.Equal(t, "green", statusBand(0.80, 0.80))
	require.Equal(t, "amber", statusBand(0.7999, 0.80))
	require.Equal(t, "amber", statusBand(0.50, 0.80))
	require.Equal(t, "red", statusBand(0.4999, 0.80))
}

func TestBenchmarkIDFallback(t *testing.T) {
	report := Run(&crosswalk.Backlog{}, testIndex(), DefaultThreshold, time.Time{})
	require.Equal(t, "sscf-benchmark-unknown", report.BenchmarkID)
}

func TestMarkdownScorecard(t *testing.T) {
	report := Run(backlogWith(
		item("SBS-AUTH-001", engine.StatusFail, "SSCF-IAM-01"),
	), testIndex(), DefaultThreshold, time.Time{})

	md := report.Markdown()
	require.Contains(t, md, "Identity & Access Management")
	require.Contains(t, md, "SBS-AUTH-001")
}
