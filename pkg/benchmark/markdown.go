package benchmark

import (
	"fmt"
	"strings"
)

// Markdown renders the scorecard for human review: an overall banner, a
// domain table, and a per-domain drill-down.
func (r *Report) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# SSCF Compliance Benchmark\n\n")
	sb.WriteString(fmt.Sprintf("- Benchmark ID: `%s`\n", r.BenchmarkID))
	sb.WriteString(fmt.Sprintf("- Generated UTC: `%s`\n", r.GeneratedAtUTC))
	sb.WriteString(fmt.Sprintf("- Framework: `%s`\n", r.Framework))
	sb.WriteString(fmt.Sprintf("- Threshold: `%d%%`\n", int(r.Threshold*100)))
	sb.WriteString(fmt.Sprintf("- Overall Score: `%d%%` — **%s**\n\n",
		int(r.OverallScore*100), strings.ToUpper(r.OverallStatus)))

	sb.WriteString("## Domain Scorecard\n\n")
	sb.WriteString("| Domain | Score | Status | Pass | Partial | Fail | N/A |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, d := range r.Domains {
		sb.WriteString(fmt.Sprintf("| %s | %d%% | %s | %d | %d | %d | %d |\n",
			d.Domain, int(d.Score*100), strings.ToUpper(d.Status),
			d.Pass, d.Partial, d.Fail, d.NotApplicable))
	}

	sb.WriteString("\n## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Domains GREEN: `%d`\n", r.Summary.DomainsGreen))
	sb.WriteString(fmt.Sprintf("- Domains AMBER: `%d`\n", r.Summary.DomainsAmber))
	sb.WriteString(fmt.Sprintf("- Domains RED: `%d`\n", r.Summary.DomainsRed))
	sb.WriteString(fmt.Sprintf("- Unmatched findings: `%d`\n", r.Summary.UnmatchedFindings))

	sb.WriteString("\n## Domain Details\n")
	for _, d := range r.Domains {
		sb.WriteString(fmt.Sprintf("\n### %s — %d%% [%s]\n\n",
			d.Domain, int(d.Score*100), strings.ToUpper(d.Status)))
		sb.WriteString("| SSCF Control | Title | Findings | Worst Status |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, ctrl := range d.Controls {
			findings := "—"
			if len(ctrl.Findings) > 0 {
				quoted := make([]string, len(ctrl.Findings))
				for i, f := range ctrl.Findings {
					quoted[i] = "`" + f + "`"
				}
				findings = strings.Join(quoted, ", ")
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n",
				ctrl.SSCFControlID, ctrl.Title, findings, ctrl.WorstStatus))
		}
	}

	return sb.String()
}
