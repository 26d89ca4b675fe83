package reporting

import (
	"context"
	"sort"
	"time"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	datasetStore    storage.DatasetStore
	estimateStore   storage.EstimateStore
	trajectoryStore storage.TrajectoryStore
	curveStore      storage.FitCurveStore
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	datasetStore storage.DatasetStore,
	estimateStore storage.EstimateStore,
	trajectoryStore storage.TrajectoryStore,
	curveStore storage.FitCurveStore,
) *Generator {
	return &Generator{
		datasetStore:    datasetStore,
		estimateStore:   estimateStore,
		trajectoryStore: trajectoryStore,
		curveStore:      curveStore,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report over every stored estimate.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	datasets, err := g.datasetStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	estimates, err := g.estimateStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Dataset, len(datasets))
	for _, d := range datasets {
		byID[d.DatasetID] = d
	}

	// Scalar rows come back with empty slice fields; rehydrate the
	// trajectories so event counts and sections reflect stored points.
	for _, e := range estimates {
		points, err := g.trajectoryStore.GetByEstimateID(ctx, e.EstimateID)
		if err != nil {
			return nil, err
		}
		e.EventVolumes, e.Trajectory = domain.TrajectoryFromPoints(points)
	}

	rows := g.generateEstimateRows(estimates, byID)
	sections := g.generateTrajectorySections(estimates, byID)
	summary := g.generateDataSummary(datasets, estimates)

	return &Report{
		GeneratedAt:   g.now(),
		DatasetCount:  len(datasets),
		EstimateCount: len(estimates),
		DataSummary:   *summary,
		Estimates:     rows,
		Trajectories:  sections,
	}, nil
}

// CurveRows loads the stored fit-curve samples for one estimate.
func (g *Generator) CurveRows(ctx context.Context, estimateID string) ([]FitCurveRow, error) {
	points, err := g.curveStore.GetByEstimateID(ctx, estimateID)
	if err != nil {
		return nil, err
	}

	rows := make([]FitCurveRow, len(points))
	for i, p := range points {
		rows[i] = FitCurveRow{
			PointIndex:     p.PointIndex,
			Volume:         p.Volume,
			PredictedCount: p.PredictedCount,
		}
	}
	return rows, nil
}

// generateDataSummary computes corpus-wide counts from datasets and estimates.
func (g *Generator) generateDataSummary(datasets []*domain.Dataset, estimates []*domain.IndexEstimate) *DataSummary {
	regionSet := make(map[string]struct{})
	for _, d := range datasets {
		regionSet[d.Region] = struct{}{}
	}

	degenerate := 0
	eventsRetained := 0
	for _, e := range estimates {
		if e.Degenerate() {
			degenerate++
		}
		eventsRetained += e.EventCount()
	}

	// Find creation range from estimates
	var createdStart, createdEnd int64
	if len(estimates) > 0 {
		createdStart = estimates[0].CreatedAt
		createdEnd = estimates[0].CreatedAt
		for _, e := range estimates {
			if e.CreatedAt < createdStart {
				createdStart = e.CreatedAt
			}
			if e.CreatedAt > createdEnd {
				createdEnd = e.CreatedAt
			}
		}
	}

	return &DataSummary{
		TotalDatasets:       len(datasets),
		TotalEstimates:      len(estimates),
		DegenerateEstimates: degenerate,
		EventsRetained:      eventsRetained,
		Regions:             len(regionSet),
		CreatedRangeStart:   createdStart,
		CreatedRangeEnd:     createdEnd,
	}
}

// generateEstimateRows builds sorted summary rows, one per estimate.
func (g *Generator) generateEstimateRows(estimates []*domain.IndexEstimate, datasets map[string]*domain.Dataset) []EstimateRow {
	rows := make([]EstimateRow, len(estimates))
	for i, e := range estimates {
		row := EstimateRow{
			EstimateID:      e.EstimateID,
			DatasetID:       e.DatasetID,
			BValue:          e.Params.BValue,
			MagnitudeCutoff: e.Params.MagnitudeCutoff,
			VolumeStart:     e.Params.VolumeStart,
			VolumeEnd:       e.Params.VolumeEnd,
			EventCount:      e.EventCount(),
			Vs:              e.Vs,
			Sigma:           e.Sigma,
			SigmaError:      e.SigmaError,
			RSquared:        e.RSquared,
			Reason:          string(e.Reason),
		}
		if d := datasets[e.DatasetID]; d != nil {
			row.DatasetName = d.Name
			row.Region = d.Region
		}
		rows[i] = row
	}

	// Sort by (dataset_name, estimate_id)
	sortEstimateRows(rows)
	return rows
}

// generateTrajectorySections builds one per-event table per successful estimate.
func (g *Generator) generateTrajectorySections(estimates []*domain.IndexEstimate, datasets map[string]*domain.Dataset) []TrajectorySection {
	var sections []TrajectorySection
	for _, e := range estimates {
		if e.Degenerate() || e.EventCount() == 0 {
			continue
		}

		rows := make([]TrajectoryRow, len(e.EventVolumes))
		for i := range e.EventVolumes {
			rows[i] = TrajectoryRow{
				EventSeq:   i + 1,
				Volume:     e.EventVolumes[i],
				Trajectory: e.Trajectory[i],
			}
		}

		section := TrajectorySection{
			EstimateID: e.EstimateID,
			Rows:       rows,
		}
		if d := datasets[e.DatasetID]; d != nil {
			section.DatasetName = d.Name
		}
		sections = append(sections, section)
	}

	// Sort by (dataset_name, estimate_id), matching the summary table
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].DatasetName != sections[j].DatasetName {
			return sections[i].DatasetName < sections[j].DatasetName
		}
		return sections[i].EstimateID < sections[j].EstimateID
	})

	return sections
}

// sortEstimateRows sorts rows by (dataset_name, estimate_id).
func sortEstimateRows(rows []EstimateRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DatasetName != rows[j].DatasetName {
			return rows[i].DatasetName < rows[j].DatasetName
		}
		return rows[i].EstimateID < rows[j].EstimateID
	})
}
