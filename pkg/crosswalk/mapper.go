package crosswalk

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/user/posture-adk/pkg/engine"
)

// DirectPrefix recognizes findings already expressed in the SBS catalog
// namespace; those bypass the legacy crosswalk.
const DirectPrefix = "SBS-"

// Framework identifies the secondary compliance framework of the SSCF mapping.
const Framework = "CSA_SSCF"

// MappedItem is a finding joined with catalog metadata and its SSCF
// associations. Created once during mapping, immutable afterward.
type MappedItem struct {
	LegacyControlID   string                 `json:"legacy_control_id"`
	SBSControlID      string                 `json:"sbs_control_id"`
	SBSTitle          string                 `json:"sbs_title"`
	Status            engine.Status          `json:"status"`
	Severity          engine.Severity        `json:"severity"`
	Owner             string                 `json:"owner"`
	DueDate           string                 `json:"due_date"`
	Remediation       string                 `json:"remediation"`
	EvidenceRef       string                 `json:"evidence_ref"`
	MappingNotes      string                 `json:"mapping_notes"`
	MappingConfidence string                 `json:"mapping_confidence"`
	SSCFMappings      []SSCFAssociation      `json:"sscf_mappings"`
	SSCFControlIDs    []string               `json:"sscf_control_ids"`
}

// UnmappedItem is a finding whose legacy control id has no crosswalk row:
// tracked for completeness, excluded from scoring until a human supplies one.
type UnmappedItem struct {
	LegacyControlID string          `json:"legacy_control_id"`
	Status          engine.Status   `json:"status"`
	Severity        engine.Severity `json:"severity"`
}

// BacklogSummary carries the mapping tallies surfaced to reports.
type BacklogSummary struct {
	CatalogControls         int            `json:"catalog_controls"`
	FindingsTotal           int            `json:"findings_total"`
	MappedFindings          int            `json:"mapped_findings"`
	UnmappedFindings        int            `json:"unmapped_findings"`
	InvalidMappingEntries   int            `json:"invalid_mapping_entries"`
	StatusCounts            StatusTally    `json:"status_counts"`
	MappingConfidenceCounts map[string]int `json:"mapping_confidence_counts"`
}

// StatusTally is an explicit struct rather than a map so backlog JSON field
// order is stable across runs.
type StatusTally struct {
	Pass          int `json:"pass"`
	Fail          int `json:"fail"`
	Partial       int `json:"partial"`
	NotApplicable int `json:"not_applicable"`
}

func (t *StatusTally) add(s engine.Status) {
	switch s {
	case engine.StatusPass:
		t.Pass++
	case engine.StatusFail:
		t.Fail++
	case engine.StatusPartial:
		t.Partial++
	case engine.StatusNotApplicable:
		t.NotApplicable++
	}
}

// Backlog is the mapper output: three disjoint buckets that partition the
// input findings, plus tallies.
type Backlog struct {
	AssessmentID          string         `json:"assessment_id"`
	GeneratedAtUTC        string         `json:"generated_at_utc"`
	CatalogVersion        string         `json:"catalog_version"`
	Framework             string         `json:"framework"`
	Summary               BacklogSummary `json:"summary"`
	MappedItems           []MappedItem   `json:"mapped_items"`
	UnmappedItems         []UnmappedItem `json:"unmapped_items"`
	InvalidMappingEntries []string       `json:"invalid_mapping_entries"`
}

// MapInput bundles the mapper's static inputs.
type MapInput struct {
	CatalogByID    map[string]engine.Control
	CatalogVersion string
	Legacy         map[string]LegacyMapping
	SSCF           *SSCFCrosswalk
	// Now pins generated_at_utc; zero means time.Now().UTC().
	Now time.Time
}

// Map routes every finding into exactly one of the mapped, unmapped, or
// invalid buckets. Crosswalk misses are data outcomes, never errors:
// a missing legacy row means unmapped, a crosswalk row pointing at a control
// absent from the catalog means an invalid mapping entry (a crosswalk
// data-quality bug, distinct from missing governance).
func Map(gap engine.GapAnalysis, in MapInput) *Backlog {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	backlog := &Backlog{
		AssessmentID:          gap.AssessmentID,
		GeneratedAtUTC:        now.UTC().Format(time.RFC3339),
		CatalogVersion:        in.CatalogVersion,
		Framework:             Framework,
		MappedItems:           []MappedItem{},
		UnmappedItems:         []UnmappedItem{},
		InvalidMappingEntries: []string{},
	}

	for _, finding := range gap.Findings {
		legacyID := strings.TrimSpace(finding.ControlID)

		if strings.HasPrefix(legacyID, DirectPrefix) {
			control, ok := in.CatalogByID[legacyID]
			if !ok {
				backlog.InvalidMappingEntries = append(backlog.InvalidMappingEntries,
					fmt.Sprintf("%s -> %s (SBS control not found in imported catalog)", legacyID, legacyID))
				continue
			}
			backlog.MappedItems = append(backlog.MappedItems, newMappedItem(
				finding, legacyID, control,
				"Direct collector mapping (SBS control ID emitted by collector).", "high", in.SSCF))
			continue
		}

		row, ok := in.Legacy[legacyID]
		if !ok {
			backlog.UnmappedItems = append(backlog.UnmappedItems, UnmappedItem{
				LegacyControlID: legacyID,
				Status:          finding.Status,
				Severity:        finding.Severity,
			})
			continue
		}

		sbsID := strings.TrimSpace(row.SBSControlID)
		control, ok := in.CatalogByID[sbsID]
		if !ok {
			backlog.InvalidMappingEntries = append(backlog.InvalidMappingEntries,
				fmt.Sprintf("%s -> %s (not found in imported catalog)", legacyID, sbsID))
			continue
		}

		confidence := row.MappingConfidence
		if confidence == "" {
			confidence = "unrated"
		}
		backlog.MappedItems = append(backlog.MappedItems,
			newMappedItem(finding, legacyID, control, row.Notes, confidence, in.SSCF))
	}

	backlog.Summary = summarize(backlog, len(in.CatalogByID), len(gap.Findings))
	return backlog
}

func newMappedItem(
	finding engine.Finding,
	legacyID string,
	control engine.Control,
	notes, confidence string,
	sscf *SSCFCrosswalk,
) MappedItem {
	assocs := sscf.Associations(control.ControlID, control.Category)
	ids := make([]string, 0, len(assocs))
	for _, a := range assocs {
		if a.SSCFControlID != "" {
			ids = append(ids, a.SSCFControlID)
		}
	}
	if assocs == nil {
		assocs = []SSCFAssociation{}
	}
	return MappedItem{
		LegacyControlID:   legacyID,
		SBSControlID:      control.ControlID,
		SBSTitle:          control.Title,
		Status:            finding.Status,
		Severity:          finding.Severity,
		Owner:             finding.Owner,
		DueDate:           finding.DueDate,
		Remediation:       finding.Remediation,
		EvidenceRef:       finding.EvidenceRef,
		MappingNotes:      notes,
		MappingConfidence: confidence,
		SSCFMappings:      assocs,
		SSCFControlIDs:    ids,
	}
}

func summarize(b *Backlog, catalogControls, findingsTotal int) BacklogSummary {
	summary := BacklogSummary{
		CatalogControls:         catalogControls,
		FindingsTotal:           findingsTotal,
		MappedFindings:          len(b.MappedItems),
		UnmappedFindings:        len(b.UnmappedItems),
		InvalidMappingEntries:   len(b.InvalidMappingEntries),
		MappingConfidenceCounts: make(map[string]int),
	}
	for _, item := range b.MappedItems {
		summary.StatusCounts.add(item.Status)
		summary.MappingConfidenceCounts[item.MappingConfidence]++
	}
	return summary
}

// LoadGapAnalysis reads a gap-analysis artifact from disk.
func LoadGapAnalysis(path string) (engine.GapAnalysis, error) {
	var gap engine.GapAnalysis
	data, err := os.ReadFile(path)
	if err != nil {
		return gap, fmt.Errorf("read gap analysis: %w", err)
	}
	if err := json.Unmarshal(data, &gap); err != nil {
		return gap, fmt.Errorf("parse gap analysis %s: %w", path, err)
	}
	return gap, nil
}

// LoadBacklog reads a backlog artifact from disk.
func LoadBacklog(path string) (*Backlog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backlog: %w", err)
	}
	var b Backlog
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse backlog %s: %w", path, err)
	}
	return &b, nil
}
