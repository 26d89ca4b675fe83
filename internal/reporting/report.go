package reporting

import (
	"math"
	"strconv"
	"time"
)

// Report represents the estimation run report structure.
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	DatasetCount  int
	EstimateCount int

	// Data Summary
	DataSummary DataSummary

	// Data Quality (sufficiency checks)
	DataQuality DataQualitySection

	// Estimate summaries (sorted by dataset_name, estimate_id)
	Estimates []EstimateRow

	// Per-event trajectory tables, one per successful estimate
	Trajectories []TrajectorySection
}

// DataQualitySection contains data sufficiency checks and integrity errors.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	IntegrityErrors   []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// DataSummary contains data description.
type DataSummary struct {
	TotalDatasets       int
	TotalEstimates      int
	DegenerateEstimates int
	EventsRetained      int   // across successful estimates
	Regions             int   // distinct dataset regions
	CreatedRangeStart   int64 // Unix ms, earliest estimate
	CreatedRangeEnd     int64 // Unix ms, latest estimate
}

// EstimateRow represents one row in the estimate summary table.
type EstimateRow struct {
	EstimateID      string
	DatasetID       string
	DatasetName     string
	Region          string
	BValue          float64
	MagnitudeCutoff float64
	VolumeStart     float64
	VolumeEnd       float64
	EventCount      int
	Vs              float64
	Sigma           float64
	SigmaError      float64
	RSquared        float64
	Reason          string // empty for successful estimates
}

// TrajectorySection holds the per-event table for one successful estimate.
type TrajectorySection struct {
	EstimateID  string
	DatasetName string
	Rows        []TrajectoryRow
}

// TrajectoryRow is one retained event of a sigma trajectory.
type TrajectoryRow struct {
	EventSeq   int
	Volume     float64
	Trajectory float64
}

// FitCurveRow is one sampled point of a fitted event-count curve.
type FitCurveRow struct {
	PointIndex     int
	Volume         float64
	PredictedCount float64
}

// formatFloat renders a float with fixed precision. Non-finite values come
// out as "n/a": R-squared is NaN for single-event fits and a boundary event
// at rebased volume zero drives the trajectory infinite.
func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
