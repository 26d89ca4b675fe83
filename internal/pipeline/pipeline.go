package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/estimator"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/observability"
	"seismo-index-lab/internal/reporting"
	"seismo-index-lab/internal/storage"
)

// EstimationPipeline runs the store-backed estimation flow: load every
// dataset, fit the seismogenic index under one parameter set, persist the
// results and render the report bundle into the output directory.
type EstimationPipeline struct {
	datasetStore    storage.DatasetStore
	sampleStore     storage.InjectionSampleStore
	eventStore      storage.CatalogEventStore
	estimateStore   storage.EstimateStore
	trajectoryStore storage.TrajectoryStore
	curveStore      storage.FitCurveStore

	params    domain.FitParameters
	outputDir string

	est             *estimator.Estimator
	reportGen       *reporting.Generator
	checker         *SufficiencyChecker
	clock           func() time.Time // Injectable clock for deterministic output
	integrityErrors []string
}

// NewEstimationPipeline creates a pipeline over the given stores. Every
// dataset is estimated under the same parameter set; re-runs with identical
// parameters are skipped through the deterministic estimate ID.
func NewEstimationPipeline(
	datasetStore storage.DatasetStore,
	sampleStore storage.InjectionSampleStore,
	eventStore storage.CatalogEventStore,
	estimateStore storage.EstimateStore,
	trajectoryStore storage.TrajectoryStore,
	curveStore storage.FitCurveStore,
	params domain.FitParameters,
	outputDir string,
) *EstimationPipeline {
	return &EstimationPipeline{
		datasetStore:    datasetStore,
		sampleStore:     sampleStore,
		eventStore:      eventStore,
		estimateStore:   estimateStore,
		trajectoryStore: trajectoryStore,
		curveStore:      curveStore,
		params:          params,
		outputDir:       outputDir,
		est:             estimator.New(nil),
		reportGen:       reporting.NewGenerator(datasetStore, estimateStore, trajectoryStore, curveStore),
		clock:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
// The clock propagates to the report generator, so call WithReporter first.
func (p *EstimationPipeline) WithClock(clock func() time.Time) *EstimationPipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithEstimator replaces the default estimator, typically to attach a
// diagnostic sink.
func (p *EstimationPipeline) WithEstimator(est *estimator.Estimator) *EstimationPipeline {
	p.est = est
	return p
}

// WithReporter replaces the default report generator.
func (p *EstimationPipeline) WithReporter(gen *reporting.Generator) *EstimationPipeline {
	p.reportGen = gen
	return p
}

// WithSufficiencyChecker enables data sufficiency checks over the
// pipeline's own stores. Without it the report carries no quality section.
func (p *EstimationPipeline) WithSufficiencyChecker() *EstimationPipeline {
	p.checker = NewSufficiencyChecker(p.datasetStore, p.sampleStore, p.eventStore)
	return p
}

// WithIntegrityErrors adds upstream integrity errors (e.g. from ingestion)
// to the report's data quality section.
func (p *EstimationPipeline) WithIntegrityErrors(errs []string) *EstimationPipeline {
	p.integrityErrors = append(p.integrityErrors, errs...)
	return p
}

// RunResult summarizes one completed pipeline run.
type RunResult struct {
	RunID      string // random identifier for log correlation
	Estimates  int    // estimates computed and stored this run
	Degenerate int    // degenerate outcomes among them
	Duplicates int    // datasets skipped because the estimate already existed
	ReportPath string // rendered markdown report
}

// Run executes the pipeline: sufficiency checks first, then one estimate
// per stored dataset, then the report bundle. Failed sufficiency checks
// mark the report and never stop the run.
func (p *EstimationPipeline) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &RunResult{RunID: uuid.NewString()}

	dataQuality := reporting.DataQualitySection{AllChecksPassed: true}
	if p.checker != nil {
		sufficiency, err := p.checker.Check(ctx)
		if err != nil {
			observability.RecordPipelineRun("error", time.Since(start).Seconds())
			return nil, fmt.Errorf("sufficiency checks: %w", err)
		}
		dataQuality = convertToDataQuality(sufficiency)
	}
	dataQuality.IntegrityErrors = append(dataQuality.IntegrityErrors, p.integrityErrors...)
	if len(dataQuality.IntegrityErrors) > 0 {
		dataQuality.AllChecksPassed = false
	}

	datasets, err := p.datasetStore.GetAll(ctx)
	if err != nil {
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("loading datasets: %w", err)
	}

	for _, dataset := range datasets {
		if err := p.estimateDataset(ctx, dataset, result); err != nil {
			observability.RecordPipelineRun("error", time.Since(start).Seconds())
			return nil, err
		}
	}

	if err := p.writeReports(ctx, dataQuality, result); err != nil {
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return nil, err
	}

	observability.RecordPipelineRun("success", time.Since(start).Seconds())
	return result, nil
}

// estimateDataset fits one dataset and persists the outcome. A duplicate
// estimate ID means the same dataset was already estimated under the same
// parameters; the dataset counts as skipped and nothing is written.
func (p *EstimationPipeline) estimateDataset(ctx context.Context, dataset *domain.Dataset, result *RunResult) error {
	samples, err := p.sampleStore.GetByDatasetID(ctx, dataset.DatasetID)
	if err != nil {
		return fmt.Errorf("loading samples for %s: %w", dataset.DatasetID, err)
	}
	events, err := p.eventStore.GetByDatasetID(ctx, dataset.DatasetID)
	if err != nil {
		return fmt.Errorf("loading events for %s: %w", dataset.DatasetID, err)
	}

	fitStart := time.Now()
	estimate := p.est.Estimate(domain.SeriesFromSamples(samples), domain.CatalogFromEvents(events), p.params)
	estimate.EstimateID = idhash.ComputeEstimateID(dataset.DatasetID, p.params)
	estimate.DatasetID = dataset.DatasetID
	estimate.CreatedAt = p.clock().UnixMilli()

	if err := p.estimateStore.Insert(ctx, &estimate); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			result.Duplicates++
			return nil
		}
		return fmt.Errorf("storing estimate %s: %w", estimate.EstimateID, err)
	}

	if points := domain.TrajectoryPointsFromEstimate(estimate); len(points) > 0 {
		if err := p.trajectoryStore.InsertBulk(ctx, points); err != nil {
			return fmt.Errorf("storing trajectory for %s: %w", estimate.EstimateID, err)
		}
	}
	if points := domain.FitCurvePointsFromEstimate(estimate); len(points) > 0 {
		if err := p.curveStore.InsertBulk(ctx, points); err != nil {
			return fmt.Errorf("storing fit curve for %s: %w", estimate.EstimateID, err)
		}
	}

	result.Estimates++
	outcome := "success"
	if estimate.Degenerate() {
		outcome = "degenerate"
		result.Degenerate++
		observability.RecordDegenerateEstimate(estimate.Reason.String())
	} else {
		observability.UpdateEstimateGauges(dataset.DatasetID, estimate.Sigma, estimate.RSquared)
	}
	observability.RecordEstimate(outcome, estimate.EventCount(), time.Since(fitStart).Seconds())
	return nil
}

// writeReports renders the report bundle: the markdown report, the estimate
// CSV, and one trajectory and fit curve CSV per non-degenerate estimate.
func (p *EstimationPipeline) writeReports(ctx context.Context, dataQuality reporting.DataQualitySection, result *RunResult) error {
	report, err := p.reportGen.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	report.DataQuality = dataQuality

	reportPath := filepath.Join(p.outputDir, "INDEX_REPORT.md")
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		return fmt.Errorf("writing INDEX_REPORT.md: %w", err)
	}
	result.ReportPath = reportPath

	csvPath := filepath.Join(p.outputDir, "INDEX_ESTIMATES.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderEstimatesCSV(report.Estimates)), 0644); err != nil {
		return fmt.Errorf("writing INDEX_ESTIMATES.csv: %w", err)
	}

	for _, section := range report.Trajectories {
		short := idhash.ShortID(section.EstimateID)

		name := fmt.Sprintf("trajectory_%s.csv", short)
		data := reporting.RenderTrajectoryCSV(section.EstimateID, section.Rows)
		if err := os.WriteFile(filepath.Join(p.outputDir, name), []byte(data), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}

		curveRows, err := p.reportGen.CurveRows(ctx, section.EstimateID)
		if err != nil {
			return fmt.Errorf("loading fit curve for %s: %w", section.EstimateID, err)
		}
		if len(curveRows) == 0 {
			continue
		}
		name = fmt.Sprintf("fit_curve_%s.csv", short)
		data = reporting.RenderFitCurveCSV(section.EstimateID, curveRows)
		if err := os.WriteFile(filepath.Join(p.outputDir, name), []byte(data), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	observability.RecordReportGenerated()
	return nil
}

// convertToDataQuality maps a sufficiency result into the report section.
func convertToDataQuality(result *SufficiencyResult) reporting.DataQualitySection {
	section := reporting.DataQualitySection{
		AllChecksPassed: result.AllPass,
		IntegrityErrors: append([]string(nil), result.Errors...),
	}
	for _, check := range result.Checks {
		section.SufficiencyChecks = append(section.SufficiencyChecks, reporting.SufficiencyCheckRow{
			Name:      check.Name,
			Threshold: check.Threshold,
			Actual:    check.Actual,
			Pass:      check.Pass,
		})
	}
	return section
}
