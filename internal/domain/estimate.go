package domain

// DegenerateReason distinguishes the "no usable data" outcomes of an
// estimation. The reason is part of the result, not an error: degenerate
// inputs are an expected condition, and callers branch on it.
type DegenerateReason string

const (
	// ReasonNone marks a successful estimate.
	ReasonNone DegenerateReason = ""
	// ReasonInputShapeMismatch: injection or catalog paired sequences
	// differ in length.
	ReasonInputShapeMismatch DegenerateReason = "input_shape_mismatch"
	// ReasonNoEventsAboveCutoff: the magnitude filter emptied the catalog.
	ReasonNoEventsAboveCutoff DegenerateReason = "no_events_above_cutoff"
	// ReasonNoEventsInWindow: the volume window emptied the catalog.
	ReasonNoEventsInWindow DegenerateReason = "no_events_in_window"
)

// String returns the string representation of the reason.
func (r DegenerateReason) String() string {
	return string(r)
}

// IsValid checks if the reason is a known value.
func (r DegenerateReason) IsValid() bool {
	switch r {
	case ReasonNone, ReasonInputShapeMismatch, ReasonNoEventsAboveCutoff, ReasonNoEventsInWindow:
		return true
	}
	return false
}

// FitCurve holds synthetic model-curve samples for plotting: Counts[i] is
// the modeled cumulative event count at rebased volume Volumes[i]. Samples
// are evenly spaced over the retained volume range, both ends inclusive.
type FitCurve struct {
	Volumes []float64
	Counts  []float64
}

// IndexEstimate is the complete outcome of one seismogenic index
// estimation. Scalars correspond to the estimates table in PostgreSQL;
// Trajectory and Curve samples are stored per point in ClickHouse.
//
// Degenerate estimates (Reason != ReasonNone) carry zero-length slices,
// zero scalars, and a one-line Diagnostic.
//
// Numeric conventions: RSquared is NaN when the total sum of squares
// about the mean count is zero (a single retained event); renderers
// show it as n/a. A retained event with rebased volume exactly 0 (possible
// only under an explicit VolumeStart) contributes +Inf to the trajectory
// and drives the scalar fields non-finite; the boundary behavior is kept
// as-is rather than clamped.
type IndexEstimate struct {
	EstimateID   string           // deterministic hash of dataset + parameters
	DatasetID    string           // dataset the estimate was computed from
	Params       FitParameters    // parameters the estimate was computed with
	Vs           float64          // volume at the earliest survivor, before rebasing
	EventVolumes []float64        // rebased cumulative volume per retained event (Veq)
	Trajectory   []float64        // per-event index value, same length as EventVolumes
	Sigma        float64          // weighted scalar index estimate
	SigmaError   float64          // weighted uncertainty, non-negative
	RSquared     float64          // linear-space goodness of fit; <= 1, may be negative
	Curve        FitCurve         // synthetic fit curve over the retained volume range
	Reason       DegenerateReason // why the estimate is degenerate, if it is
	Diagnostic   string           // human-readable line for degenerate outcomes
	CreatedAt    int64            // record creation timestamp (ms)
}

// Degenerate reports whether the estimate is the "no usable data" outcome.
func (e IndexEstimate) Degenerate() bool {
	return e.Reason != ReasonNone
}

// EventCount returns the number of retained earthquakes.
func (e IndexEstimate) EventCount() int {
	return len(e.EventVolumes)
}
