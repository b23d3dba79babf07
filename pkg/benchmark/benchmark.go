package benchmark

import (
	"fmt"
	"sort"
	"time"

	"github.com/user/posture-adk/pkg/crosswalk"
	"github.com/user/posture-adk/pkg/engine"
)

// ControlDetail is the per-SSCF-control drill-down inside a domain.
type ControlDetail struct {
	SSCFControlID string        `json:"sscf_control_id"`
	Title         string        `json:"title"`
	OwnerTeam     string        `json:"owner_team"`
	Findings      []string      `json:"findings"`
	WorstStatus   engine.Status `json:"worst_status"`
}

// DomainResult is one governance domain's aggregated posture.
type DomainResult struct {
	Domain        string          `json:"domain"`
	SSCFControls  []string        `json:"sscf_controls"`
	FindingsCount int             `json:"findings_count"`
	Pass          int             `json:"pass"`
	Partial       int             `json:"partial"`
	Fail          int             `json:"fail"`
	NotApplicable int             `json:"not_applicable"`
	Score         float64         `json:"score"`
	Status        string          `json:"status"`
	Controls      []ControlDetail `json:"controls"`
}

// ReportSummary carries the domain traffic-light counts.
type ReportSummary struct {
	TotalDomains      int `json:"total_domains"`
	DomainsGreen      int `json:"domains_green"`
	DomainsAmber      int `json:"domains_amber"`
	DomainsRed        int `json:"domains_red"`
	UnmatchedFindings int `json:"unmatched_findings"`
}

// Report is the domain-level compliance scorecard.
type Report struct {
	BenchmarkID        string         `json:"benchmark_id"`
	GeneratedAtUTC     string         `json:"generated_at_utc"`
	SourceAssessmentID string         `json:"source_assessment_id"`
	Framework          string         `json:"framework"`
	Threshold          float64        `json:"threshold"`
	OverallScore       float64        `json:"overall_score"`
	OverallStatus      string         `json:"overall_status"`
	Domains            []DomainResult `json:"domains"`
	Summary            ReportSummary  `json:"summary"`
}

// DefaultThreshold is the green banding threshold when none is configured.
const DefaultThreshold = 0.80

// Run rolls the backlog's mapped items up by SSCF domain and scores each
// domain plus the overall posture. A finding mapped to framework controls in
// several domains contributes to each of them; the fan-out is not deduplicated.
func Run(backlog *crosswalk.Backlog, index *Index, threshold float64, now time.Time) *Report {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// domain → SSCF control id → contributing items. Seeded from the index
	// so domains with no findings still appear, scored 1.0.
	domainControls := make(map[string]map[string][]crosswalk.MappedItem)
	for _, ctrl := range index.All() {
		if domainControls[ctrl.Domain] == nil {
			domainControls[ctrl.Domain] = make(map[string][]crosswalk.MappedItem)
		}
		domainControls[ctrl.Domain][ctrl.SSCFControlID] = nil
	}

	unmatched := 0
	for _, item := range backlog.MappedItems {
		placed := false
		for _, sscfID := range item.SSCFControlIDs {
			meta, ok := index.Lookup(sscfID)
			if !ok {
				continue
			}
			domainControls[meta.Domain][sscfID] = append(domainControls[meta.Domain][sscfID], item)
			placed = true
		}
		if !placed {
			unmatched++
		}
	}

	domains := make([]string, 0, len(domainControls))
	for d := range domainControls {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var results []DomainResult
	var allItems []crosswalk.MappedItem
	summary := ReportSummary{UnmatchedFindings: unmatched}

	for _, domain := range domains {
		controls := domainControls[domain]

		controlIDs := make([]string, 0, len(controls))
		for id := range controls {
			controlIDs = append(controlIDs, id)
		}
		sort.Strings(controlIDs)

		var domainItems []crosswalk.MappedItem
		details := make([]ControlDetail, 0, len(controlIDs))
		for _, id := range controlIDs {
			items := controls[id]
			domainItems = append(domainItems, items...)

			meta, _ := index.Lookup(id)
			findingIDs := make([]string, 0, len(items))
			for _, item := range items {
				fid := item.SBSControlID
				if fid == "" {
					fid = item.LegacyControlID
				}
				findingIDs = append(findingIDs, fid)
			}
			details = append(details, ControlDetail{
				SSCFControlID: id,
				Title:         meta.Title,
				OwnerTeam:     meta.OwnerTeam,
				Findings:      findingIDs,
				WorstStatus:   worstStatus(items),
			})
		}

		t := tallyItems(domainItems)
		score := t.score()
		status := statusBand(score, threshold)

		results = append(results, DomainResult{
			Domain:        domain,
			SSCFControls:  controlIDs,
			FindingsCount: len(domainItems),
			Pass:          t.Pass,
			Partial:       t.Partial,
			Fail:          t.Fail,
			NotApplicable: t.NotApplicable,
			Score:         score,
			Status:        status,
			Controls:      details,
		})

		allItems = append(allItems, domainItems...)
		switch status {
		case "green":
			summary.DomainsGreen++
		case "amber":
			summary.DomainsAmber++
		case "red":
			summary.DomainsRed++
		}
	}
	summary.TotalDomains = len(results)

	overall := tallyItems(allItems).score()
	return &Report{
		BenchmarkID:        fmt.Sprintf("sscf-benchmark-%s", orDefault(backlog.AssessmentID, "unknown")),
		GeneratedAtUTC:     now.UTC().Format(time.RFC3339),
		SourceAssessmentID: backlog.AssessmentID,
		Framework:          crosswalk.Framework,
		Threshold:          threshold,
		OverallScore:       overall,
		OverallStatus:      statusBand(overall, threshold),
		Domains:            results,
		Summary:            summary,
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
