package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"seismo-index-lab/internal/orchestrator"
	"seismo-index-lab/internal/pipeline"
	"seismo-index-lab/internal/replay"
	"seismo-index-lab/internal/storage"
	chstore "seismo-index-lab/internal/storage/clickhouse"
	"seismo-index-lab/internal/storage/memory"
	"seismo-index-lab/internal/storage/migrations"
	pgstore "seismo-index-lab/internal/storage/postgres"
	"seismo-index-lab/internal/verification"
)

func main() {
	// Parse flags
	estimateID := flag.String("estimate-id", "", "Estimate ID to verify")
	verifyAll := flag.Bool("all", false, "Verify every stored estimate")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage seeded with demo estimates")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup structured logger
	logger := log.New(os.Stderr, "[verify] ", log.LstdFlags)

	// Validate required flags
	if *estimateID == "" && !*verifyAll {
		logger.Fatal("--estimate-id or --all is required")
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

	// Create stores
	stores := &verifyStores{
		datasetStore:    memory.NewDatasetStore(),
		sampleStore:     memory.NewInjectionSampleStore(),
		eventStore:      memory.NewCatalogEventStore(),
		estimateStore:   memory.NewEstimateStore(),
		trajectoryStore: memory.NewTrajectoryStore(),
		curveStore:      memory.NewFitCurveStore(),
	}
	usingMemory := true

	if !*useMemory && *postgresDSN != "" && *clickhouseDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("postgres migrations: %v", err)
		}

		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		defer conn.Close()

		stores.datasetStore = pgstore.NewDatasetStore(pool)
		stores.eventStore = pgstore.NewCatalogEventStore(pool)
		stores.estimateStore = pgstore.NewEstimateStore(pool)
		stores.sampleStore = chstore.NewInjectionSampleStore(conn)
		stores.trajectoryStore = chstore.NewTrajectoryStore(conn)
		stores.curveStore = chstore.NewFitCurveStore(conn)
		usingMemory = false
	}

	// With in-memory storage there is nothing to verify until a sweep has
	// run, so seed fixtures and sweep first
	if usingMemory {
		seedDemo(ctx, logger, stores)
	}

	// Create verifier over the recompute runner
	runner := replay.NewRunner(replay.RunnerOptions{
		EstimateStore:   stores.estimateStore,
		TrajectoryStore: stores.trajectoryStore,
		CurveStore:      stores.curveStore,
		SampleStore:     stores.sampleStore,
		EventStore:      stores.eventStore,
	})
	verifier := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
		EstimateStore: stores.estimateStore,
		Runner:        runner,
	})

	if *verifyAll {
		logger.Printf("Verifying all stored estimates")
		report, err := verifier.VerifyAll(ctx)
		if err != nil {
			logger.Fatalf("verification failed: %v", err)
		}
		printReport(report, *outputJSON)
		if report.DivergentEstimates > 0 {
			os.Exit(1)
		}
		return
	}

	logger.Printf("Verifying estimate %s", *estimateID)
	result, err := verifier.VerifyEstimate(ctx, *estimateID)
	if err != nil {
		logger.Fatalf("verification failed: %v", err)
	}
	printResult(result, *outputJSON)
	if !result.Match {
		os.Exit(1)
	}
}

// verifyStores holds the stores verification reads from.
type verifyStores struct {
	datasetStore    storage.DatasetStore
	sampleStore     storage.InjectionSampleStore
	eventStore      storage.CatalogEventStore
	estimateStore   storage.EstimateStore
	trajectoryStore storage.TrajectoryStore
	curveStore      storage.FitCurveStore
}

// seedDemo loads fixture datasets and runs the scenario sweep so the
// in-memory path has estimates to verify.
func seedDemo(ctx context.Context, logger *log.Logger, stores *verifyStores) {
	if err := pipeline.LoadFixtures(ctx, stores.datasetStore, stores.sampleStore, stores.eventStore); err != nil {
		logger.Fatalf("load fixtures: %v", err)
	}

	orch := orchestrator.New(orchestrator.Options{
		DatasetStore:    stores.datasetStore,
		SampleStore:     stores.sampleStore,
		EventStore:      stores.eventStore,
		EstimateStore:   stores.estimateStore,
		TrajectoryStore: stores.trajectoryStore,
		CurveStore:      stores.curveStore,
	})
	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatalf("demo sweep: %v", err)
	}
	logger.Printf("Seeded %d demo estimates", result.EstimatesCreated)
}

// resultJSON mirrors verification.VerificationResult with JSON-safe values.
// Divergence values and sigmas may be NaN, which has no JSON encoding.
type resultJSON struct {
	EstimateID      string           `json:"estimate_id"`
	Match           bool             `json:"match"`
	StoredSigma     *float64         `json:"stored_sigma"`
	RecomputedSigma *float64         `json:"recomputed_sigma"`
	Divergences     []divergenceJSON `json:"divergences,omitempty"`
}

type divergenceJSON struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

type reportJSON struct {
	TotalEstimates     int          `json:"total_estimates"`
	MatchedEstimates   int          `json:"matched_estimates"`
	DivergentEstimates int          `json:"divergent_estimates"`
	Results            []resultJSON `json:"results"`
}

func toResultJSON(r *verification.VerificationResult) resultJSON {
	out := resultJSON{
		EstimateID:      r.EstimateID,
		Match:           r.Match,
		StoredSigma:     jsonFloat(r.StoredSigma),
		RecomputedSigma: jsonFloat(r.RecomputedSigma),
	}
	for _, d := range r.Divergences {
		out.Divergences = append(out.Divergences, divergenceJSON{
			Field:    d.Field,
			Expected: fmt.Sprintf("%v", d.Expected),
			Actual:   fmt.Sprintf("%v", d.Actual),
		})
	}
	return out
}

func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// printResult outputs one verification result.
func printResult(result *verification.VerificationResult, outputJSON bool) {
	if outputJSON {
		output, _ := json.MarshalIndent(toResultJSON(result), "", "  ")
		fmt.Println(string(output))
		return
	}

	fmt.Printf("\n=== Verification Result ===\n")
	fmt.Printf("Estimate ID:       %s\n", result.EstimateID)
	if result.Match {
		fmt.Printf("Status:            MATCH\n")
		fmt.Printf("Sigma:             %v\n", result.StoredSigma)
		return
	}
	fmt.Printf("Status:            DIVERGED\n")
	fmt.Printf("Stored sigma:      %v\n", result.StoredSigma)
	fmt.Printf("Recomputed sigma:  %v\n", result.RecomputedSigma)
	for _, d := range result.Divergences {
		fmt.Printf("  - %s: stored=%v recomputed=%v\n", d.Field, d.Expected, d.Actual)
	}
}

// printReport outputs the aggregate verification report.
func printReport(report *verification.VerificationReport, outputJSON bool) {
	if outputJSON {
		out := reportJSON{
			TotalEstimates:     report.TotalEstimates,
			MatchedEstimates:   report.MatchedEstimates,
			DivergentEstimates: report.DivergentEstimates,
		}
		for i := range report.Results {
			out.Results = append(out.Results, toResultJSON(&report.Results[i]))
		}
		output, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(output))
		return
	}

	fmt.Printf("\n=== Verification Summary ===\n")
	fmt.Printf("Estimates checked: %d\n", report.TotalEstimates)
	fmt.Printf("Matched:           %d\n", report.MatchedEstimates)
	fmt.Printf("Divergent:         %d\n", report.DivergentEstimates)
	for i := range report.Results {
		r := &report.Results[i]
		if r.Match {
			continue
		}
		fmt.Printf("\nEstimate %s DIVERGED:\n", r.EstimateID)
		for _, d := range r.Divergences {
			fmt.Printf("  - %s: stored=%v recomputed=%v\n", d.Field, d.Expected, d.Actual)
		}
	}
}
