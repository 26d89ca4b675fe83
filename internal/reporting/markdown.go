package reporting

import (
	"fmt"
	"strings"
	"time"

	"seismo-index-lab/internal/idhash"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Seismogenic Index Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Datasets: %d | Estimates: %d\n\n", r.DatasetCount, r.EstimateCount))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Datasets | %d |\n", r.DataSummary.TotalDatasets))
	sb.WriteString(fmt.Sprintf("| Regions | %d |\n", r.DataSummary.Regions))
	sb.WriteString(fmt.Sprintf("| Estimates | %d |\n", r.DataSummary.TotalEstimates))
	sb.WriteString(fmt.Sprintf("| Degenerate Estimates | %d |\n", r.DataSummary.DegenerateEstimates))
	sb.WriteString(fmt.Sprintf("| Events Retained | %d |\n", r.DataSummary.EventsRetained))
	sb.WriteString(fmt.Sprintf("| First Estimate (ms) | %d |\n", r.DataSummary.CreatedRangeStart))
	sb.WriteString(fmt.Sprintf("| Last Estimate (ms) | %d |\n", r.DataSummary.CreatedRangeEnd))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("### Sufficiency Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		// Overall status
		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Estimates from sparse data are advisory.\n\n")
		}
	} else if len(r.DataQuality.IntegrityErrors) == 0 {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	// Integrity errors (always shown if present, even without sufficiency checks)
	if len(r.DataQuality.IntegrityErrors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, err := range r.DataQuality.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	}

	// Estimates
	sb.WriteString("## Estimates\n\n")
	if len(r.Estimates) > 0 {
		sb.WriteString("| Dataset | Region | b | Mc | Vstart | Vend | Events | Vs | Sigma | Error | R2 | Status |\n")
		sb.WriteString("|---------|--------|---|----|--------|------|--------|----|-------|-------|----|--------|\n")
		for _, m := range r.Estimates {
			status := "OK"
			if m.Reason != "" {
				status = m.Reason
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %d | %s | %s | %s | %s | %s |\n",
				m.DatasetName, m.Region,
				formatFloat(m.BValue, 4), formatFloat(m.MagnitudeCutoff, 4),
				formatFloat(m.VolumeStart, 4), formatFloat(m.VolumeEnd, 4),
				m.EventCount,
				formatFloat(m.Vs, 4), formatFloat(m.Sigma, 4),
				formatFloat(m.SigmaError, 4), formatFloat(m.RSquared, 4),
				status))
		}
	} else {
		sb.WriteString("No estimates available.\n")
	}
	sb.WriteString("\n")

	// Sigma Trajectories
	sb.WriteString("## Sigma Trajectories\n\n")
	if len(r.Trajectories) == 0 {
		sb.WriteString("No trajectories available.\n\n")
	}
	for _, section := range r.Trajectories {
		sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", section.DatasetName, idhash.ShortID(section.EstimateID)))
		sb.WriteString("| Event | Volume | Sigma |\n")
		sb.WriteString("|-------|--------|-------|\n")
		for _, row := range section.Rows {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n",
				row.EventSeq, formatFloat(row.Volume, 4), formatFloat(row.Trajectory, 4)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
