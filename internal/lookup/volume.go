package lookup

import (
	"errors"

	"seismo-index-lab/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrEmptySeries  = errors.New("no injection samples available")
	ErrBeforeSeries = errors.New("target time precedes the injection series")
	ErrAfterSeries  = errors.New("target time follows the injection series")
)

// VolumeAt returns the cumulative injected volume at the target time,
// linearly interpolated between the two bracketing injection samples.
// A target coinciding with a sample time returns that sample's volume
// exactly. Targets outside the series' time domain return ErrBeforeSeries
// or ErrAfterSeries; volume is never extrapolated.
//
// The series is assumed shape-checked and time-ascending; alignment owns
// those validations.
func VolumeAt(target float64, series domain.InjectionSeries) (float64, error) {
	n := series.Len()
	if n == 0 {
		return 0, ErrEmptySeries
	}
	if target < series.Times[0] {
		return 0, ErrBeforeSeries
	}
	if target > series.Times[n-1] {
		return 0, ErrAfterSeries
	}

	for i := 1; i < n; i++ {
		if target > series.Times[i] {
			continue
		}
		if target == series.Times[i] {
			return series.Volumes[i], nil
		}
		// Strictly inside (Times[i-1], Times[i]); the interval is non-empty.
		t0, t1 := series.Times[i-1], series.Times[i]
		v0, v1 := series.Volumes[i-1], series.Volumes[i]
		frac := (target - t0) / (t1 - t0)
		return v0 + frac*(v1-v0), nil
	}

	// Single-sample series: the target can only equal the sample time.
	return series.Volumes[n-1], nil
}
