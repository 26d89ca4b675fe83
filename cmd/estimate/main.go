package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/estimator"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/orchestrator"
	"seismo-index-lab/internal/pipeline"
	"seismo-index-lab/internal/storage"
	chstore "seismo-index-lab/internal/storage/clickhouse"
	"seismo-index-lab/internal/storage/memory"
	"seismo-index-lab/internal/storage/migrations"
	pgstore "seismo-index-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	datasetID := flag.String("dataset-id", "", "Dataset ID to estimate (database mode)")
	scenarioID := flag.String("scenario", "", "Scenario: uniform-ramp, uniform-ramp-windowed, staged-rampup")
	runAll := flag.Bool("all", false, "Sweep all datasets through all scenarios and write the report bundle")

	// Estimation parameters (a --scenario overrides all four)
	bValue := flag.Float64("b-value", 1.0, "Gutenberg-Richter b-value")
	magnitudeCutoff := flag.Float64("magnitude-cutoff", 1.0, "Completeness magnitude Mc")
	volumeStart := flag.Float64("volume-start", 0, "Low volume bound (0 rebases at the first survivor)")
	volumeEnd := flag.Float64("volume-end", 0, "High volume bound (0 = unbounded)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixture datasets")

	// Output
	outputDir := flag.String("output-dir", "docs", "Output directory for the report bundle (--all)")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	persistResult := flag.Bool("persist", false, "Persist the estimate to storage")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[estimate] ", log.LstdFlags)

	// Resolve parameters
	params := domain.FitParameters{
		BValue:          *bValue,
		MagnitudeCutoff: *magnitudeCutoff,
		VolumeStart:     *volumeStart,
		VolumeEnd:       *volumeEnd,
	}
	if *scenarioID != "" {
		scenario, ok := domain.ScenarioByID(*scenarioID)
		if !ok {
			logger.Fatalf("Invalid scenario: %s. Must be uniform-ramp, uniform-ramp-windowed, or staged-rampup", *scenarioID)
		}
		params = scenario.Params()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if *runAll {
		if err := runSweep(ctx, logger, *postgresDSN, *clickhouseDSN, *useFixtures, params, *outputDir, *verbose); err != nil {
			logger.Fatalf("sweep failed: %v", err)
		}
		return
	}

	if err := runSingle(ctx, logger, singleOptions{
		datasetID:     *datasetID,
		scenarioID:    *scenarioID,
		params:        params,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useFixtures:   *useFixtures,
		outputJSON:    *outputJSON,
		persistResult: *persistResult,
		verbose:       *verbose,
	}); err != nil {
		logger.Fatalf("estimate failed: %v", err)
	}
}

// allStores holds all storage implementations.
type allStores struct {
	datasetStore    storage.DatasetStore
	sampleStore     storage.InjectionSampleStore
	eventStore      storage.CatalogEventStore
	estimateStore   storage.EstimateStore
	trajectoryStore storage.TrajectoryStore
	curveStore      storage.FitCurveStore
}

// createStores creates all required stores. Datasets, events and estimate
// scalars live in PostgreSQL; samples, trajectory and curve points in
// ClickHouse.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			datasetStore:    memory.NewDatasetStore(),
			sampleStore:     memory.NewInjectionSampleStore(),
			eventStore:      memory.NewCatalogEventStore(),
			estimateStore:   memory.NewEstimateStore(),
			trajectoryStore: memory.NewTrajectoryStore(),
			curveStore:      memory.NewFitCurveStore(),
		}
		return stores, func() {}, nil
	}

	if postgresDSN == "" || clickhouseDSN == "" {
		return nil, nil, fmt.Errorf("--postgres-dsn and --clickhouse-dsn are required (use --use-fixtures for demo data)")
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		datasetStore:    pgstore.NewDatasetStore(pool),
		eventStore:      pgstore.NewCatalogEventStore(pool),
		estimateStore:   pgstore.NewEstimateStore(pool),
		sampleStore:     chstore.NewInjectionSampleStore(conn),
		trajectoryStore: chstore.NewTrajectoryStore(conn),
		curveStore:      chstore.NewFitCurveStore(conn),
	}

	cleanup := func() {
		conn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// runSweep estimates every (dataset, scenario) combination and writes the
// report bundle.
func runSweep(ctx context.Context, logger *log.Logger, postgresDSN, clickhouseDSN string, useFixtures bool, params domain.FitParameters, outputDir string, verbose bool) error {
	stores, cleanup, err := createStores(ctx, postgresDSN, clickhouseDSN, useFixtures)
	if err != nil {
		return err
	}
	defer cleanup()

	if useFixtures {
		if err := pipeline.LoadFixtures(ctx, stores.datasetStore, stores.sampleStore, stores.eventStore); err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
	}

	fmt.Println("=== Scenario Sweep ===")
	orch := orchestrator.New(orchestrator.Options{
		DatasetStore:    stores.datasetStore,
		SampleStore:     stores.sampleStore,
		EventStore:      stores.eventStore,
		EstimateStore:   stores.estimateStore,
		TrajectoryStore: stores.trajectoryStore,
		CurveStore:      stores.curveStore,
		Verbose:         verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Sweep completed:\n")
	fmt.Printf("  Datasets:   %d\n", result.DatasetsProcessed)
	fmt.Printf("  Estimates:  %d\n", result.EstimatesCreated)
	fmt.Printf("  Degenerate: %d\n", result.Degenerate)
	fmt.Printf("  Duplicates: %d\n", result.Duplicates)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	// Report bundle with fixed clock for deterministic output
	fmt.Println("\n=== Report Bundle ===")
	fixedTime := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	p := pipeline.NewEstimationPipeline(
		stores.datasetStore,
		stores.sampleStore,
		stores.eventStore,
		stores.estimateStore,
		stores.trajectoryStore,
		stores.curveStore,
		params,
		outputDir,
	).WithSufficiencyChecker().WithClock(func() time.Time { return fixedTime })

	runResult, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\nSweep completed successfully:")
	fmt.Printf("  - %s\n", runResult.ReportPath)
	fmt.Printf("  - %s/INDEX_ESTIMATES.csv\n", outputDir)
	fmt.Printf("  - per-estimate trajectory and fit curve CSVs\n")
	return nil
}

// singleOptions bundles the single-estimate flags.
type singleOptions struct {
	datasetID     string
	scenarioID    string
	params        domain.FitParameters
	postgresDSN   string
	clickhouseDSN string
	useFixtures   bool
	outputJSON    bool
	persistResult bool
	verbose       bool
}

// runSingle estimates one dataset under one parameter set and prints the
// result.
func runSingle(ctx context.Context, logger *log.Logger, opts singleOptions) error {
	var (
		series    domain.InjectionSeries
		catalog   domain.EarthquakeCatalog
		datasetID string
		stores    *allStores
	)

	if opts.useFixtures {
		if opts.persistResult {
			return fmt.Errorf("--persist requires database storage, not fixtures")
		}

		// Scenario picks the paired fixture dataset; default is the ramp
		scenarioID := opts.scenarioID
		if scenarioID == "" {
			scenarioID = domain.ScenarioUniformRamp
		}
		raw, ok := pipeline.FixtureByScenario(scenarioID)
		if !ok {
			return fmt.Errorf("no fixture dataset for scenario %s", scenarioID)
		}
		series = raw.Series
		catalog = raw.Catalog
		datasetID = idhash.ComputeDatasetID(raw.Meta.Name, raw.Meta.Region, raw.Meta.WellName)
	} else {
		if opts.datasetID == "" {
			return fmt.Errorf("--dataset-id is required (use --use-fixtures for demo data)")
		}

		var cleanup func()
		var err error
		stores, cleanup, err = createStores(ctx, opts.postgresDSN, opts.clickhouseDSN, false)
		if err != nil {
			return err
		}
		defer cleanup()

		samples, err := stores.sampleStore.GetByDatasetID(ctx, opts.datasetID)
		if err != nil {
			return fmt.Errorf("load samples: %w", err)
		}
		if len(samples) == 0 {
			return fmt.Errorf("no stored rows for dataset %s", opts.datasetID)
		}
		events, err := stores.eventStore.GetByDatasetID(ctx, opts.datasetID)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}

		series = domain.SeriesFromSamples(samples)
		catalog = domain.CatalogFromEvents(events)
		datasetID = opts.datasetID
	}

	var diag estimator.DiagnosticSink
	if opts.verbose {
		diag = logger
	}

	logger.Printf("Running estimation: dataset=%s b=%g Mc=%g", datasetID, opts.params.BValue, opts.params.MagnitudeCutoff)

	estimate := estimator.New(diag).Estimate(series, catalog, opts.params)
	estimate.EstimateID = idhash.ComputeEstimateID(datasetID, opts.params)
	estimate.DatasetID = datasetID
	estimate.CreatedAt = time.Now().UnixMilli()

	if opts.persistResult {
		if err := persistEstimate(ctx, stores, estimate); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				logger.Printf("Estimate %s already stored", estimate.EstimateID)
			} else {
				return fmt.Errorf("persist estimate: %w", err)
			}
		}
	}

	// Output result
	if opts.outputJSON {
		output, err := json.MarshalIndent(toEstimateJSON(estimate), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
	} else {
		printEstimate(estimate)
	}

	return nil
}

// persistEstimate stores the scalar row and its points.
func persistEstimate(ctx context.Context, stores *allStores, estimate domain.IndexEstimate) error {
	if err := stores.estimateStore.Insert(ctx, &estimate); err != nil {
		return err
	}
	if points := domain.TrajectoryPointsFromEstimate(estimate); len(points) > 0 {
		if err := stores.trajectoryStore.InsertBulk(ctx, points); err != nil {
			return err
		}
	}
	if points := domain.FitCurvePointsFromEstimate(estimate); len(points) > 0 {
		if err := stores.curveStore.InsertBulk(ctx, points); err != nil {
			return err
		}
	}
	return nil
}

// estimateJSON mirrors domain.IndexEstimate with JSON-safe floats.
// NaN and Inf have no JSON encoding; non-finite values become null.
type estimateJSON struct {
	EstimateID      string     `json:"estimate_id"`
	DatasetID       string     `json:"dataset_id"`
	BValue          float64    `json:"b_value"`
	MagnitudeCutoff float64    `json:"magnitude_cutoff"`
	VolumeStart     float64    `json:"volume_start"`
	VolumeEnd       float64    `json:"volume_end"`
	Vs              *float64   `json:"vs"`
	Sigma           *float64   `json:"sigma"`
	SigmaError      *float64   `json:"sigma_error"`
	RSquared        *float64   `json:"r_squared"`
	EventCount      int        `json:"event_count"`
	EventVolumes    []*float64 `json:"event_volumes,omitempty"`
	Trajectory      []*float64 `json:"trajectory,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Diagnostic      string     `json:"diagnostic,omitempty"`
	CreatedAt       int64      `json:"created_at"`
}

func toEstimateJSON(e domain.IndexEstimate) estimateJSON {
	return estimateJSON{
		EstimateID:      e.EstimateID,
		DatasetID:       e.DatasetID,
		BValue:          e.Params.BValue,
		MagnitudeCutoff: e.Params.MagnitudeCutoff,
		VolumeStart:     e.Params.VolumeStart,
		VolumeEnd:       e.Params.VolumeEnd,
		Vs:              jsonFloat(e.Vs),
		Sigma:           jsonFloat(e.Sigma),
		SigmaError:      jsonFloat(e.SigmaError),
		RSquared:        jsonFloat(e.RSquared),
		EventCount:      e.EventCount(),
		EventVolumes:    jsonFloats(e.EventVolumes),
		Trajectory:      jsonFloats(e.Trajectory),
		Reason:          e.Reason.String(),
		Diagnostic:      e.Diagnostic,
		CreatedAt:       e.CreatedAt,
	}
}

func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func jsonFloats(fs []float64) []*float64 {
	if len(fs) == 0 {
		return nil
	}
	out := make([]*float64, len(fs))
	for i := range fs {
		out[i] = jsonFloat(fs[i])
	}
	return out
}

// printEstimate outputs a human-readable estimate.
func printEstimate(e domain.IndexEstimate) {
	fmt.Println()
	fmt.Println("=== Seismogenic Index Estimate ===")
	fmt.Printf("Estimate ID:        %s\n", e.EstimateID)
	fmt.Printf("Dataset ID:         %s\n", e.DatasetID)
	fmt.Println()

	fmt.Println("Parameters:")
	fmt.Printf("  b-value:          %g\n", e.Params.BValue)
	fmt.Printf("  Magnitude cutoff: %g\n", e.Params.MagnitudeCutoff)
	fmt.Printf("  Volume start:     %g\n", e.Params.VolumeStart)
	fmt.Printf("  Volume end:       %g\n", e.Params.VolumeEnd)
	fmt.Println()

	if e.Degenerate() {
		fmt.Println("Result: DEGENERATE")
		fmt.Printf("  Reason:           %s\n", e.Reason)
		fmt.Printf("  Diagnostic:       %s\n", e.Diagnostic)
		return
	}

	fmt.Println("Result:")
	fmt.Printf("  Sigma:            %s\n", formatFloat(e.Sigma))
	fmt.Printf("  Sigma error:      %s\n", formatFloat(e.SigmaError))
	fmt.Printf("  R-squared:        %s\n", formatFloat(e.RSquared))
	fmt.Printf("  Vs:               %s\n", formatFloat(e.Vs))
	fmt.Printf("  Events retained:  %d\n", e.EventCount())
	fmt.Println()

	fmt.Println("Trajectory:")
	for i := range e.EventVolumes {
		fmt.Printf("  V=%-12s sigma=%s\n", formatFloat(e.EventVolumes[i]), formatFloat(e.Trajectory[i]))
	}
}

// formatFloat renders non-finite values as n/a.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", f)
}
