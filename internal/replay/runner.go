// Package replay recomputes stored estimates from their source rows.
// A stored estimate carries everything needed to reproduce itself: the
// dataset's raw series live in the sample and event stores, and the
// parameters ride on the estimate row.
package replay

import (
	"context"
	"errors"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/estimator"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/storage"
)

// Runner loads a stored estimate and re-runs the estimation from the raw
// rows it was computed from.
type Runner struct {
	estimateStore   storage.EstimateStore
	trajectoryStore storage.TrajectoryStore
	curveStore      storage.FitCurveStore
	sampleStore     storage.InjectionSampleStore
	eventStore      storage.CatalogEventStore

	est *estimator.Estimator
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	EstimateStore   storage.EstimateStore
	TrajectoryStore storage.TrajectoryStore
	CurveStore      storage.FitCurveStore
	SampleStore     storage.InjectionSampleStore
	EventStore      storage.CatalogEventStore

	// Estimator defaults to a silent one.
	Estimator *estimator.Estimator
}

// NewRunner creates a new replay runner.
func NewRunner(opts RunnerOptions) *Runner {
	est := opts.Estimator
	if est == nil {
		est = estimator.New(nil)
	}
	return &Runner{
		estimateStore:   opts.EstimateStore,
		trajectoryStore: opts.TrajectoryStore,
		curveStore:      opts.CurveStore,
		sampleStore:     opts.SampleStore,
		eventStore:      opts.EventStore,
		est:             est,
	}
}

// Recompute loads the stored estimate (scalars plus its trajectory and curve
// points) and re-runs the estimation over the dataset's stored rows under
// the stored parameters. The recomputed estimate re-derives its ID from
// dataset and parameters, so identity drift shows up as a divergence too.
// CreatedAt is not reproduced; comparers skip it.
func (r *Runner) Recompute(ctx context.Context, estimateID string) (stored, recomputed *domain.IndexEstimate, err error) {
	stored, err = r.estimateStore.GetByID(ctx, estimateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrEstimateNotFound
		}
		return nil, nil, err
	}

	// Scalar rows come back without slice fields; hydrate from the point stores.
	trajectoryPoints, err := r.trajectoryStore.GetByEstimateID(ctx, estimateID)
	if err != nil {
		return nil, nil, err
	}
	stored.EventVolumes, stored.Trajectory = domain.TrajectoryFromPoints(trajectoryPoints)

	curvePoints, err := r.curveStore.GetByEstimateID(ctx, estimateID)
	if err != nil {
		return nil, nil, err
	}
	stored.Curve = domain.FitCurveFromPoints(curvePoints)

	samples, err := r.sampleStore.GetByDatasetID(ctx, stored.DatasetID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, ErrSourceDataMissing
	}
	events, err := r.eventStore.GetByDatasetID(ctx, stored.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	result := r.est.Estimate(domain.SeriesFromSamples(samples), domain.CatalogFromEvents(events), stored.Params)
	result.EstimateID = idhash.ComputeEstimateID(stored.DatasetID, stored.Params)
	result.DatasetID = stored.DatasetID

	return stored, &result, nil
}
