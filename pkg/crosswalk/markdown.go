package crosswalk

import (
	"fmt"
	"strings"
)

// Matrix renders the backlog as a markdown gap matrix for human review.
func (b *Backlog) Matrix() string {
	var sb strings.Builder
	sb.WriteString("# Salesforce OSCAL Gap Matrix\n\n")
	sb.WriteString(fmt.Sprintf("- Assessment ID: `%s`\n", b.AssessmentID))
	sb.WriteString(fmt.Sprintf("- Generated UTC: `%s`\n", b.GeneratedAtUTC))
	sb.WriteString(fmt.Sprintf("- SBS controls in catalog: `%d`\n", b.Summary.CatalogControls))
	sb.WriteString(fmt.Sprintf("- Mapped findings: `%d`\n", b.Summary.MappedFindings))
	sb.WriteString(fmt.Sprintf("- Unmapped findings: `%d`\n\n", b.Summary.UnmappedFindings))

	sb.WriteString("## Status Summary (Mapped Findings)\n")
	sb.WriteString(fmt.Sprintf("- pass: `%d`\n", b.Summary.StatusCounts.Pass))
	sb.WriteString(fmt.Sprintf("- fail: `%d`\n", b.Summary.StatusCounts.Fail))
	sb.WriteString(fmt.Sprintf("- partial: `%d`\n", b.Summary.StatusCounts.Partial))
	sb.WriteString(fmt.Sprintf("- not_applicable: `%d`\n\n", b.Summary.StatusCounts.NotApplicable))

	sb.WriteString("## Control Mapping Table\n")
	sb.WriteString("| Legacy Control ID | SBS Control ID | SBS Title | Mapping Confidence" +
		" | SSCF Controls | Status | Severity | Owner | Due Date |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, item := range b.MappedItems {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			item.LegacyControlID,
			item.SBSControlID,
			strings.ReplaceAll(item.SBSTitle, "|", "/"),
			item.MappingConfidence,
			strings.Join(item.SSCFControlIDs, ", "),
			item.Status,
			item.Severity,
			item.Owner,
			item.DueDate,
		))
	}

	sb.WriteString("\n## Unmapped Findings\n")
	if len(b.UnmappedItems) == 0 {
		sb.WriteString("- None\n")
	} else {
		for _, item := range b.UnmappedItems {
			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s)\n", item.LegacyControlID, item.Status, item.Severity))
		}
	}

	sb.WriteString("\n## Invalid Mapping Entries\n")
	if len(b.InvalidMappingEntries) == 0 {
		sb.WriteString("- None\n")
	} else {
		for _, entry := range b.InvalidMappingEntries {
			sb.WriteString(fmt.Sprintf("- %s\n", entry))
		}
	}

	return sb.String()
}
