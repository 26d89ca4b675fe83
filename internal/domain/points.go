package domain

// TrajectoryPoint is one per-event sample of the sigma trajectory.
// Corresponds to sigma_trajectory_points table in ClickHouse.
type TrajectoryPoint struct {
	EstimateID string  // owning estimate identifier
	EventSeq   int     // 1-based running event count at this point
	Volume     float64 // rebased cumulative volume at the event
	Trajectory float64 // per-event seismogenic index value
}

// FitCurvePoint is one sampled point of the fitted event-count curve.
// Corresponds to fit_curve_points table in ClickHouse.
type FitCurvePoint struct {
	EstimateID     string  // owning estimate identifier
	PointIndex     int     // 0-based sample position along the curve
	Volume         float64 // rebased cumulative volume sample
	PredictedCount float64 // modeled cumulative event count at Volume
}

// TrajectoryPointsFromEstimate flattens a successful estimate's per-event
// trajectory into storable rows.
func TrajectoryPointsFromEstimate(e IndexEstimate) []*TrajectoryPoint {
	points := make([]*TrajectoryPoint, 0, len(e.EventVolumes))
	for i := range e.EventVolumes {
		points = append(points, &TrajectoryPoint{
			EstimateID: e.EstimateID,
			EventSeq:   i + 1,
			Volume:     e.EventVolumes[i],
			Trajectory: e.Trajectory[i],
		})
	}
	return points
}

// FitCurvePointsFromEstimate flattens a successful estimate's fit curve
// into storable rows.
func FitCurvePointsFromEstimate(e IndexEstimate) []*FitCurvePoint {
	points := make([]*FitCurvePoint, 0, len(e.Curve.Volumes))
	for i := range e.Curve.Volumes {
		points = append(points, &FitCurvePoint{
			EstimateID:     e.EstimateID,
			PointIndex:     i,
			Volume:         e.Curve.Volumes[i],
			PredictedCount: e.Curve.Counts[i],
		})
	}
	return points
}

// TrajectoryFromPoints rebuilds the paired volume and trajectory slices from
// stored rows. Inverse of TrajectoryPointsFromEstimate; points must already
// be ordered by EventSeq, which every store read guarantees.
func TrajectoryFromPoints(points []*TrajectoryPoint) (volumes, trajectory []float64) {
	volumes = make([]float64, len(points))
	trajectory = make([]float64, len(points))
	for i, p := range points {
		volumes[i] = p.Volume
		trajectory[i] = p.Trajectory
	}
	return volumes, trajectory
}

// FitCurveFromPoints rebuilds a FitCurve from stored rows. Inverse of
// FitCurvePointsFromEstimate; points must already be ordered by PointIndex.
func FitCurveFromPoints(points []*FitCurvePoint) FitCurve {
	curve := FitCurve{
		Volumes: make([]float64, len(points)),
		Counts:  make([]float64, len(points)),
	}
	for i, p := range points {
		curve.Volumes[i] = p.Volume
		curve.Counts[i] = p.PredictedCount
	}
	return curve
}
