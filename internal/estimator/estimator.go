package estimator

import (
	"errors"
	"io"
	"log"

	"seismo-index-lab/internal/alignment"
	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/filtering"
)

// DiagnosticSink receives one human-readable line per degenerate
// estimation. *log.Logger satisfies it.
type DiagnosticSink interface {
	Printf(format string, v ...interface{})
}

// Estimator computes seismogenic index estimates from in-memory series.
// It holds no state across calls and is safe for concurrent use.
type Estimator struct {
	diag DiagnosticSink
}

// New creates an estimator. A nil sink discards diagnostics.
func New(diag DiagnosticSink) *Estimator {
	if diag == nil {
		diag = log.New(io.Discard, "", 0)
	}
	return &Estimator{diag: diag}
}

// Estimate runs the three stages (align, filter, fit) over one injection
// series and earthquake catalog. It never fails: inputs yielding no usable
// events produce a degenerate estimate whose Reason distinguishes the
// cause, with one diagnostic line emitted to the sink. Inputs are not
// modified. Identity fields (EstimateID, DatasetID, CreatedAt) are left for
// the caller to fill.
func (e *Estimator) Estimate(series domain.InjectionSeries, catalog domain.EarthquakeCatalog, params domain.FitParameters) domain.IndexEstimate {
	aligned, err := alignment.Align(series, catalog)
	if err != nil {
		return e.degenerate(params, domain.ReasonInputShapeMismatch, err.Error())
	}

	filtered, err := filtering.Apply(aligned, params)
	if err != nil {
		reason := domain.ReasonNoEventsInWindow
		if errors.Is(err, filtering.ErrNoEventsAboveCutoff) {
			reason = domain.ReasonNoEventsAboveCutoff
		}
		return e.degenerate(params, reason, err.Error())
	}

	return fitFiltered(filtered, params)
}

// fitFiltered computes the stage-3 outputs over a non-empty filtered set.
func fitFiltered(filtered domain.FilteredCatalog, params domain.FitParameters) domain.IndexEstimate {
	n := filtered.Len()
	counts := runningCounts(n)
	traj := computeTrajectory(filtered.Volumes, params.BValue, params.MagnitudeCutoff)
	weights := computeWeights(n)

	sigma := weightedMean(weights, traj)
	sigmaErr := computeSigmaError(weights, traj, sigma)

	predicted := make([]float64, n)
	for i, v := range filtered.Volumes {
		predicted[i] = predictedCount(v, params.BValue, params.MagnitudeCutoff, sigma)
	}
	r2 := computeRSquared(counts, predicted, weights)

	return domain.IndexEstimate{
		Params:       params,
		Vs:           filtered.Vs,
		EventVolumes: filtered.Volumes,
		Trajectory:   traj,
		Sigma:        sigma,
		SigmaError:   sigmaErr,
		RSquared:     r2,
		Curve: computeFitCurve(
			filtered.Volumes[0], filtered.Volumes[n-1], n,
			params.BValue, params.MagnitudeCutoff, sigma,
		),
	}
}

func (e *Estimator) degenerate(params domain.FitParameters, reason domain.DegenerateReason, msg string) domain.IndexEstimate {
	e.diag.Printf("seismogenic index: %s", msg)
	return domain.IndexEstimate{
		Params:     params,
		Reason:     reason,
		Diagnostic: msg,
	}
}
