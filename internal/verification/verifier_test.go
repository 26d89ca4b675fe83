package verification

import (
	"context"
	"errors"
	"math"
	"testing"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/estimator"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/ingestion"
	"seismo-index-lab/internal/ingestion/stub"
	"seismo-index-lab/internal/replay"
	"seismo-index-lab/internal/storage/memory"
)

type verifierStores struct {
	datasets     *memory.DatasetStore
	samples      *memory.InjectionSampleStore
	events       *memory.CatalogEventStore
	estimates    *memory.EstimateStore
	trajectories *memory.TrajectoryStore
	curves       *memory.FitCurveStore
}

func newVerifierStores() verifierStores {
	return verifierStores{
		datasets:     memory.NewDatasetStore(),
		samples:      memory.NewInjectionSampleStore(),
		events:       memory.NewCatalogEventStore(),
		estimates:    memory.NewEstimateStore(),
		trajectories: memory.NewTrajectoryStore(),
		curves:       memory.NewFitCurveStore(),
	}
}

func newTestVerifier(s verifierStores) *ReplayVerifier {
	runner := replay.NewRunner(replay.RunnerOptions{
		EstimateStore:   s.estimates,
		TrajectoryStore: s.trajectories,
		CurveStore:      s.curves,
		SampleStore:     s.samples,
		EventStore:      s.events,
	})
	return NewReplayVerifier(ReplayVerifierOptions{
		EstimateStore: s.estimates,
		Runner:        runner,
	})
}

// seedDataset ingests the reference dataset once and returns the raw rows
// for computing estimates against it.
func seedDataset(t *testing.T, ctx context.Context, s verifierStores) *domain.RawDataset {
	t.Helper()

	raw := &domain.RawDataset{
		Meta: domain.DatasetMeta{
			Name: "uniform ramp", Region: "synthetic", WellName: "SYN-1",
			TimeUnit: "days", VolumeUnit: "m3",
		},
		Series: domain.InjectionSeries{
			Times:   []float64{0, 1, 2, 3},
			Volumes: []float64{0, 100, 300, 600},
		},
		Catalog: domain.EarthquakeCatalog{
			Times:      []float64{0.5, 1.5, 2.5},
			Magnitudes: []float64{2.0, 2.5, 3.0},
		},
	}
	mgr := ingestion.NewManager(ingestion.ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: s.datasets,
		SampleStore:  s.samples,
		EventStore:   s.events,
	})
	if _, err := mgr.IngestDataset(ctx); err != nil {
		t.Fatalf("ingesting dataset: %v", err)
	}
	return raw
}

// seedEstimate computes an estimate from the raw rows under the given
// parameters and persists it. Returns the estimate ID.
func seedEstimate(t *testing.T, ctx context.Context, s verifierStores, raw *domain.RawDataset, params domain.FitParameters, corruptSigma float64) string {
	t.Helper()

	datasetID := idhash.ComputeDatasetID(raw.Meta.Name, raw.Meta.Region, raw.Meta.WellName)
	estimate := estimator.New(nil).Estimate(raw.Series, raw.Catalog, params)
	estimate.EstimateID = idhash.ComputeEstimateID(datasetID, params)
	estimate.DatasetID = datasetID
	estimate.CreatedAt = 1000
	estimate.Sigma += corruptSigma

	if err := s.estimates.Insert(ctx, &estimate); err != nil {
		t.Fatalf("inserting estimate: %v", err)
	}
	if points := domain.TrajectoryPointsFromEstimate(estimate); len(points) > 0 {
		if err := s.trajectories.InsertBulk(ctx, points); err != nil {
			t.Fatalf("inserting trajectory: %v", err)
		}
	}
	if points := domain.FitCurvePointsFromEstimate(estimate); len(points) > 0 {
		if err := s.curves.InsertBulk(ctx, points); err != nil {
			t.Fatalf("inserting curve: %v", err)
		}
	}
	return estimate.EstimateID
}

func TestCompareEstimates_ExactMatch(t *testing.T) {
	stored := &domain.IndexEstimate{
		EstimateID:   "e1",
		DatasetID:    "d1",
		Params:       domain.FitParameters{BValue: 1, MagnitudeCutoff: 1},
		Vs:           50,
		EventVolumes: []float64{0, 400},
		Trajectory:   []float64{math.Inf(1), -1.3010299956639813},
		Sigma:        math.Inf(1),
		SigmaError:   math.NaN(),
		RSquared:     math.NaN(),
		Curve: domain.FitCurve{
			Volumes: []float64{0, 400},
			Counts:  []float64{1, 2},
		},
		CreatedAt: 1000,
	}

	// Copy for recomputed; CreatedAt differs on purpose, it is not compared
	recomputed := &domain.IndexEstimate{
		EstimateID:   "e1",
		DatasetID:    "d1",
		Params:       domain.FitParameters{BValue: 1, MagnitudeCutoff: 1},
		Vs:           50,
		EventVolumes: []float64{0, 400},
		Trajectory:   []float64{math.Inf(1), -1.3010299956639813},
		Sigma:        math.Inf(1),
		SigmaError:   math.NaN(),
		RSquared:     math.NaN(),
		Curve: domain.FitCurve{
			Volumes: []float64{0, 400},
			Counts:  []float64{1, 2},
		},
		CreatedAt: 2000,
	}

	divergences := CompareEstimates(stored, recomputed)

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences, got %d: %v", len(divergences), divergences)
	}
}

func TestCompareEstimates_SigmaDivergence(t *testing.T) {
	stored := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Sigma:      -1.276042,
	}

	recomputed := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Sigma:      -1.276043, // Differs beyond tolerance
	}

	divergences := CompareEstimates(stored, recomputed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}

	if divergences[0].Field != "Sigma" {
		t.Errorf("Expected Sigma divergence, got %s", divergences[0].Field)
	}
}

func TestCompareEstimates_WithinTolerance(t *testing.T) {
	stored := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Sigma:      -1.2760422483423211,
	}

	recomputed := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Sigma:      -1.2760422483423211 + FloatTolerance/2, // Within tolerance
	}

	divergences := CompareEstimates(stored, recomputed)

	for _, d := range divergences {
		if d.Field == "Sigma" {
			t.Errorf("Sigma should not diverge within tolerance: stored=%v, recomputed=%v",
				d.Expected, d.Actual)
		}
	}
}

func TestCompareEstimates_ReasonDivergence(t *testing.T) {
	stored := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Reason:     domain.ReasonNoEventsAboveCutoff,
	}

	recomputed := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Reason:     domain.ReasonNone,
	}

	divergences := CompareEstimates(stored, recomputed)

	foundReason := false
	for _, d := range divergences {
		if d.Field == "Reason" {
			foundReason = true
			break
		}
	}

	if !foundReason {
		t.Error("Expected Reason divergence")
	}
}

func TestCompareEstimates_TrajectoryLengthMismatch(t *testing.T) {
	stored := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Trajectory: []float64{-1.1, -1.3},
	}

	recomputed := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Trajectory: []float64{-1.1, -1.3, -1.4},
	}

	divergences := CompareEstimates(stored, recomputed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}

	if divergences[0].Field != "Trajectory.length" {
		t.Errorf("Expected Trajectory.length divergence, got %s", divergences[0].Field)
	}
}

func TestCompareEstimates_TrajectoryIndexDivergence(t *testing.T) {
	stored := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Trajectory: []float64{-1.1760912590556813, -1.3010299956639813},
	}

	recomputed := &domain.IndexEstimate{
		EstimateID: "e1",
		DatasetID:  "d1",
		Trajectory: []float64{-1.1760912590556813, -1.2},
	}

	divergences := CompareEstimates(stored, recomputed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}

	if divergences[0].Field != "Trajectory[1]" {
		t.Errorf("Expected Trajectory[1] divergence, got %s", divergences[0].Field)
	}
}

func TestReplayVerifier_VerifyEstimate_Match(t *testing.T) {
	ctx := context.Background()
	stores := newVerifierStores()
	raw := seedDataset(t, ctx, stores)
	params := domain.FitParameters{BValue: 1, MagnitudeCutoff: 1}
	estimateID := seedEstimate(t, ctx, stores, raw, params, 0)

	result, err := newTestVerifier(stores).VerifyEstimate(ctx, estimateID)
	if err != nil {
		t.Fatalf("VerifyEstimate failed: %v", err)
	}

	if !result.Match {
		t.Errorf("Expected match, got divergences: %v", result.Divergences)
	}
	if result.EstimateID != estimateID {
		t.Errorf("Expected estimate ID %s, got %s", estimateID, result.EstimateID)
	}
	if result.StoredSigma != result.RecomputedSigma {
		t.Errorf("Sigma mismatch on a matching estimate: stored %v, recomputed %v",
			result.StoredSigma, result.RecomputedSigma)
	}
}

func TestReplayVerifier_VerifyEstimate_CorruptedSigma(t *testing.T) {
	ctx := context.Background()
	stores := newVerifierStores()
	raw := seedDataset(t, ctx, stores)
	params := domain.FitParameters{BValue: 1, MagnitudeCutoff: 1}
	estimateID := seedEstimate(t, ctx, stores, raw, params, 0.5)

	result, err := newTestVerifier(stores).VerifyEstimate(ctx, estimateID)
	if err != nil {
		t.Fatalf("VerifyEstimate failed: %v", err)
	}

	if result.Match {
		t.Fatal("Expected divergence on corrupted sigma")
	}

	foundSigma := false
	for _, d := range result.Divergences {
		if d.Field == "Sigma" {
			foundSigma = true
			break
		}
	}
	if !foundSigma {
		t.Errorf("Expected Sigma divergence, got %v", result.Divergences)
	}

	if math.Abs(result.StoredSigma-result.RecomputedSigma-0.5) > FloatTolerance {
		t.Errorf("Expected stored sigma 0.5 above recomputed, got stored %v, recomputed %v",
			result.StoredSigma, result.RecomputedSigma)
	}
}

func TestReplayVerifier_VerifyAll(t *testing.T) {
	ctx := context.Background()
	stores := newVerifierStores()
	raw := seedDataset(t, ctx, stores)
	seedEstimate(t, ctx, stores, raw, domain.FitParameters{BValue: 1, MagnitudeCutoff: 1}, 0)
	corruptedID := seedEstimate(t, ctx, stores, raw, domain.FitParameters{BValue: 1.2, MagnitudeCutoff: 1}, 0.5)

	report, err := newTestVerifier(stores).VerifyAll(ctx)
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}

	if report.TotalEstimates != 2 {
		t.Errorf("Expected 2 total estimates, got %d", report.TotalEstimates)
	}
	if report.MatchedEstimates != 1 {
		t.Errorf("Expected 1 matched estimate, got %d", report.MatchedEstimates)
	}
	if report.DivergentEstimates != 1 {
		t.Errorf("Expected 1 divergent estimate, got %d", report.DivergentEstimates)
	}

	for _, result := range report.Results {
		if result.EstimateID == corruptedID && result.Match {
			t.Error("Corrupted estimate reported as matching")
		}
	}
}

func TestReplayVerifier_VerifyEstimate_NotFound(t *testing.T) {
	ctx := context.Background()
	stores := newVerifierStores()

	_, err := newTestVerifier(stores).VerifyEstimate(ctx, "missing")
	if !errors.Is(err, replay.ErrEstimateNotFound) {
		t.Errorf("Expected ErrEstimateNotFound, got %v", err)
	}
}

func TestFloatEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"exact match", 1.0, 1.0, true},
		{"within tolerance", 1.0, 1.0 + FloatTolerance/2, true},
		{"at tolerance boundary", 0.0, FloatTolerance, true},
		{"beyond tolerance", 1.0, 1.0 + FloatTolerance*2, false},
		{"zeros", 0.0, 0.0, true},
		{"both NaN", math.NaN(), math.NaN(), true},
		{"NaN vs value", math.NaN(), 1.0, false},
		{"both positive Inf", math.Inf(1), math.Inf(1), true},
		{"opposite Inf", math.Inf(1), math.Inf(-1), false},
		{"Inf vs value", math.Inf(1), 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := floatEquals(tt.a, tt.b); got != tt.want {
				t.Errorf("floatEquals(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
