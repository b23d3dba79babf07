package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AssessOptions parameterize one assessment run.
type AssessOptions struct {
	Org    string
	Env    string
	DryRun bool
	// Now pins the run timestamp; zero means time.Now().UTC(). Explicit so
	// repeat runs over the same input can be compared byte for byte.
	Now time.Time
}

func (o AssessOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now.UTC()
}

// Assess evaluates every catalog control against the collected scope data and
// returns exactly one finding per control. It never fails on missing data:
// controls whose scope was not collected, or that have no registered rule,
// resolve to not_applicable with an explanatory observed value.
func Assess(scope *ScopeData, catalog *Catalog, opts AssessOptions) []Finding {
	if scope == nil {
		scope = EmptyScopeData()
	}
	dateStr := opts.now().Format("2006-01-02")

	findings := make([]Finding, 0, len(catalog.Controls))
	for _, control := range catalog.Controls {
		cid := control.ControlID
		severity := control.Severity()

		var finding Finding
		rule, ok := Rules[cid]
		switch {
		case !ok:
			finding = notApplicable(cid, severity, "No assessment rule defined")
		case opts.DryRun:
			if override, found := dryRunOverrides[cid]; found {
				finding = Finding{
					ControlID:     cid,
					Status:        override.Status,
					Severity:      severity,
					ObservedValue: override.ObservedValue,
					Remediation:   override.Remediation,
				}
			} else {
				// No override: the real rule on empty input, which
				// resolves to not_applicable.
				finding = rule(EmptyScopeData())
			}
		default:
			finding = rule(scope)
		}

		if finding.Owner == "" {
			finding.Owner = DefaultOwner
		}
		finding.EvidenceRef = evidenceRef(opts.Env, cid, dateStr)
		findings = append(findings, finding)
	}
	return findings
}

// GapAnalysis is the assessment artifact consumed by the control mapper.
type GapAnalysis struct {
	AssessmentID  string    `json:"assessment_id"`
	AssessedAtUTC string    `json:"assessed_at_utc"`
	Org           string    `json:"org"`
	Env           string    `json:"env"`
	Findings      []Finding `json:"findings"`
}

// NewGapAnalysis wraps findings in the gap-analysis envelope.
func NewGapAnalysis(findings []Finding, opts AssessOptions) GapAnalysis {
	now := opts.now()
	org := opts.Org
	if org == "" {
		org = "unknown"
	}

	var assessmentID string
	if opts.DryRun {
		assessmentID = fmt.Sprintf("sfdc-assess-dry-run-%s-%s", opts.Env, now.Format("20060102"))
	} else {
		orgKey, _, _ := strings.Cut(org, ".")
		assessmentID = fmt.Sprintf("sfdc-assess-%s-%s-%s", orgKey, opts.Env, now.Format("20060102"))
	}

	return GapAnalysis{
		AssessmentID:  assessmentID,
		AssessedAtUTC: now.Format(time.RFC3339),
		Org:           org,
		Env:           opts.Env,
		Findings:      findings,
	}
}

// StatusCounts tallies findings per status.
func StatusCounts(findings []Finding) map[Status]int {
	counts := make(map[Status]int)
	for _, f := range findings {
		counts[f.Status]++
	}
	return counts
}

func sortedAPIEventTypes(types map[string]bool) []string {
	var api []string
	for t := range types {
		upper := strings.ToUpper(t)
		if strings.Contains(upper, "API") || strings.Contains(upper, "REST") {
			api = append(api, t)
		}
	}
	sort.Strings(api)
	return api
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
