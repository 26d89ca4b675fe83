package reporting

import (
	"fmt"
	"strings"
)

// RenderEstimatesCSV renders estimate summary rows as CSV string.
func RenderEstimatesCSV(rows []EstimateRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("estimate_id,dataset_id,dataset_name,region,b_value,magnitude_cutoff,")
	sb.WriteString("volume_start,volume_end,event_count,vs,sigma,sigma_error,r_squared,reason\n")

	// Rows
	for _, m := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%d,%s,%s,%s,%s,%s\n",
			m.EstimateID,
			m.DatasetID,
			m.DatasetName,
			m.Region,
			formatFloat(m.BValue, 6),
			formatFloat(m.MagnitudeCutoff, 6),
			formatFloat(m.VolumeStart, 6),
			formatFloat(m.VolumeEnd, 6),
			m.EventCount,
			formatFloat(m.Vs, 6),
			formatFloat(m.Sigma, 6),
			formatFloat(m.SigmaError, 6),
			formatFloat(m.RSquared, 6),
			m.Reason,
		))
	}

	return sb.String()
}

// RenderTrajectoryCSV renders one estimate's per-event samples as CSV string.
func RenderTrajectoryCSV(estimateID string, rows []TrajectoryRow) string {
	var sb strings.Builder

	sb.WriteString("estimate_id,event_seq,volume,sigma\n")

	for _, p := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s\n",
			estimateID,
			p.EventSeq,
			formatFloat(p.Volume, 6),
			formatFloat(p.Trajectory, 6),
		))
	}

	return sb.String()
}

// RenderFitCurveCSV renders one estimate's synthetic curve samples as CSV string.
func RenderFitCurveCSV(estimateID string, rows []FitCurveRow) string {
	var sb strings.Builder

	sb.WriteString("estimate_id,point_index,volume,predicted_count\n")

	for _, p := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s\n",
			estimateID,
			p.PointIndex,
			formatFloat(p.Volume, 6),
			formatFloat(p.PredictedCount, 6),
		))
	}

	return sb.String()
}
