// Package orchestrator provides scenario sweep orchestration.
// It coordinates: dataset loading → estimation sweep → persistence
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/estimator"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/observability"
	"seismo-index-lab/internal/storage"
)

// Orchestrator sweeps every stored dataset through a set of estimation
// scenarios. Each (dataset, scenario) combination yields one persisted
// estimate; the deterministic estimate ID makes the sweep re-runnable.
type Orchestrator struct {
	// Stores
	datasetStore    storage.DatasetStore
	sampleStore     storage.InjectionSampleStore
	eventStore      storage.CatalogEventStore
	estimateStore   storage.EstimateStore
	trajectoryStore storage.TrajectoryStore
	curveStore      storage.FitCurveStore

	// Configs
	scenarioConfigs []domain.ScenarioConfig

	// Options
	est     *estimator.Estimator
	nowMs   func() int64
	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	DatasetStore    storage.DatasetStore
	SampleStore     storage.InjectionSampleStore
	EventStore      storage.CatalogEventStore
	EstimateStore   storage.EstimateStore
	TrajectoryStore storage.TrajectoryStore
	CurveStore      storage.FitCurveStore

	// Scenario configs; nil means all predefined scenarios
	ScenarioConfigs []domain.ScenarioConfig

	// Options
	Estimator *estimator.Estimator // nil means a silent estimator
	NowMs     func() int64         // nil means wall clock
	Verbose   bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	scenarios := opts.ScenarioConfigs
	if scenarios == nil {
		scenarios = []domain.ScenarioConfig{
			domain.ScenarioConfigUniformRamp,
			domain.ScenarioConfigUniformRampWindowed,
			domain.ScenarioConfigStagedRampup,
		}
	}
	est := opts.Estimator
	if est == nil {
		est = estimator.New(nil)
	}
	nowMs := opts.NowMs
	if nowMs == nil {
		nowMs = func() int64 { return time.Now().UnixMilli() }
	}
	return &Orchestrator{
		datasetStore:    opts.DatasetStore,
		sampleStore:     opts.SampleStore,
		eventStore:      opts.EventStore,
		estimateStore:   opts.EstimateStore,
		trajectoryStore: opts.TrajectoryStore,
		curveStore:      opts.CurveStore,
		scenarioConfigs: scenarios,
		est:             est,
		nowMs:           nowMs,
		verbose:         opts.Verbose,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	DatasetsProcessed int
	EstimatesCreated  int
	Degenerate        int
	Duplicates        int
	Errors            []string
}

// Run executes the full sweep.
// Phases:
//  1. Load datasets
//  2. Estimate each (dataset, scenario) combination and persist
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	// Phase 1: Load all datasets
	o.log("Phase 1: Loading datasets...")
	datasets, err := o.datasetStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load datasets) failed: %w", err)
	}
	result.DatasetsProcessed = len(datasets)
	o.log("  Found %d datasets", len(datasets))

	if len(datasets) == 0 {
		return result, nil
	}

	// Phase 2: Estimation sweep
	o.log("Phase 2: Running estimation sweep...")
	o.runSweep(ctx, datasets, result)
	o.log("  Created %d estimates (%d duplicates, %d errors)",
		result.EstimatesCreated, result.Duplicates, len(result.Errors))

	o.log("Sweep completed: %d datasets, %d estimates, %d degenerate",
		result.DatasetsProcessed, result.EstimatesCreated, result.Degenerate)

	return result, nil
}

// runSweep estimates all scenario combinations for all datasets.
func (o *Orchestrator) runSweep(ctx context.Context, datasets []*domain.Dataset, result *RunResult) {
	for _, dataset := range datasets {
		samples, err := o.sampleStore.GetByDatasetID(ctx, dataset.DatasetID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("load samples %s: %v", dataset.DatasetID, err))
			continue
		}
		events, err := o.eventStore.GetByDatasetID(ctx, dataset.DatasetID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("load events %s: %v", dataset.DatasetID, err))
			continue
		}

		series := domain.SeriesFromSamples(samples)
		catalog := domain.CatalogFromEvents(events)

		for _, scenarioCfg := range o.scenarioConfigs {
			params := scenarioCfg.Params()

			fitStart := time.Now()
			estimate := o.est.Estimate(series, catalog, params)
			estimate.EstimateID = idhash.ComputeEstimateID(dataset.DatasetID, params)
			estimate.DatasetID = dataset.DatasetID
			estimate.CreatedAt = o.nowMs()

			if err := o.estimateStore.Insert(ctx, &estimate); err != nil {
				// Skip duplicate key errors (already estimated)
				if errors.Is(err, storage.ErrDuplicateKey) {
					result.Duplicates++
					continue
				}
				result.Errors = append(result.Errors, fmt.Sprintf("estimate %s/%s: %v",
					dataset.DatasetID, scenarioCfg.ScenarioID, err))
				continue
			}

			if err := o.storePoints(ctx, estimate); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("estimate %s/%s: %v",
					dataset.DatasetID, scenarioCfg.ScenarioID, err))
				continue
			}

			result.EstimatesCreated++
			outcome := "success"
			if estimate.Degenerate() {
				outcome = "degenerate"
				result.Degenerate++
				observability.RecordDegenerateEstimate(estimate.Reason.String())
			} else {
				observability.UpdateEstimateGauges(dataset.DatasetID, estimate.Sigma, estimate.RSquared)
			}
			observability.RecordEstimate(outcome, estimate.EventCount(), time.Since(fitStart).Seconds())
		}
	}
}

// storePoints persists the estimate's trajectory and fit curve points.
func (o *Orchestrator) storePoints(ctx context.Context, estimate domain.IndexEstimate) error {
	if points := domain.TrajectoryPointsFromEstimate(estimate); len(points) > 0 {
		if err := o.trajectoryStore.InsertBulk(ctx, points); err != nil {
			return err
		}
	}
	if points := domain.FitCurvePointsFromEstimate(estimate); len(points) > 0 {
		if err := o.curveStore.InsertBulk(ctx, points); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
