package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/ingestion"
	"seismo-index-lab/internal/observability"
	"seismo-index-lab/internal/pipeline"
	"seismo-index-lab/internal/storage"
	chstore "seismo-index-lab/internal/storage/clickhouse"
	"seismo-index-lab/internal/storage/memory"
	"seismo-index-lab/internal/storage/migrations"
	pgstore "seismo-index-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	mode := flag.String("mode", "dir", "Ingestion mode: dir, files, or fixtures")
	dataDir := flag.String("data-dir", "", "Directory of dataset subdirectories (dir mode)")
	seriesPath := flag.String("series", "", "Injection series CSV path (files mode)")
	catalogPath := flag.String("catalog", "", "Earthquake catalog CSV path (files mode)")
	name := flag.String("name", "", "Dataset name (files mode)")
	region := flag.String("region", "", "Dataset region (files mode)")
	wellName := flag.String("well", "", "Well name (files mode)")
	timeUnit := flag.String("time-unit", "days", "Time unit of the input rows")
	volumeUnit := flag.String("volume-unit", "m3", "Volume unit of the input rows")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal main goroutine completion
	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Run based on mode
	switch *mode {
	case "dir":
		err = runDir(ctx, logger, stores, *dataDir)
	case "files":
		meta := domain.DatasetMeta{
			Name: *name, Region: *region, WellName: *wellName,
			TimeUnit: *timeUnit, VolumeUnit: *volumeUnit,
		}
		err = runFiles(ctx, logger, stores, meta, *seriesPath, *catalogPath)
	case "fixtures":
		err = runFixtures(ctx, logger, stores)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	// Signal completion to shutdown handler
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// ingestStores holds the stores ingestion writes to.
type ingestStores struct {
	datasetStore storage.DatasetStore
	eventStore   storage.CatalogEventStore
	sampleStore  storage.InjectionSampleStore
}

// createStores creates the required stores. Datasets and catalog events
// live in PostgreSQL, injection samples in ClickHouse.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*ingestStores, func(), error) {
	if useMemory {
		stores := &ingestStores{
			datasetStore: memory.NewDatasetStore(),
			eventStore:   memory.NewCatalogEventStore(),
			sampleStore:  memory.NewInjectionSampleStore(),
		}
		return stores, func() {}, nil
	}

	if postgresDSN == "" || clickhouseDSN == "" {
		return nil, nil, fmt.Errorf("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
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

	stores := &ingestStores{
		datasetStore: pgstore.NewDatasetStore(pool),
		eventStore:   pgstore.NewCatalogEventStore(pool),
		sampleStore:  chstore.NewInjectionSampleStore(conn),
	}

	cleanup := func() {
		conn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// runDir ingests every dataset directory under the root.
func runDir(ctx context.Context, logger *log.Logger, stores *ingestStores, dataDir string) error {
	if dataDir == "" {
		return fmt.Errorf("--data-dir is required for dir mode")
	}

	loader := ingestion.NewLoader(ingestion.LoaderOptions{
		DatasetStore: stores.datasetStore,
		EventStore:   stores.eventStore,
		SampleStore:  stores.sampleStore,
		Logger:       logger,
	})

	logger.Printf("Loading datasets from %s", dataDir)
	result, err := loader.LoadDir(ctx, dataDir)
	if err != nil {
		return err
	}

	logger.Printf("Load complete: %d datasets, %d samples, %d events, %d duplicates, %d errors in %v",
		result.DatasetsIngested, result.SamplesIngested, result.EventsIngested,
		result.DuplicatesSkipped, result.Errors, result.Duration)

	return nil
}

// runFiles ingests a single dataset from an explicit CSV file pair.
func runFiles(ctx context.Context, logger *log.Logger, stores *ingestStores, meta domain.DatasetMeta, seriesPath, catalogPath string) error {
	if seriesPath == "" || catalogPath == "" {
		return fmt.Errorf("--series and --catalog are required for files mode")
	}
	if meta.Name == "" {
		return fmt.Errorf("--name is required for files mode")
	}

	mgr := ingestion.NewManager(ingestion.ManagerOptions{
		Source:       ingestion.NewCSVSource(meta, seriesPath, catalogPath),
		DatasetStore: stores.datasetStore,
		EventStore:   stores.eventStore,
		SampleStore:  stores.sampleStore,
	})

	result, err := mgr.IngestDataset(ctx)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("source produced no dataset")
	}
	observability.RecordDatasetIngested(result.SampleCount, result.EventCount)

	logger.Printf("Ingested dataset %s: %d samples, %d events (run %s)",
		result.DatasetID, result.SampleCount, result.EventCount, result.RunID)

	return nil
}

// runFixtures seeds the built-in scenario datasets.
func runFixtures(ctx context.Context, logger *log.Logger, stores *ingestStores) error {
	if err := pipeline.LoadFixtures(ctx, stores.datasetStore, stores.sampleStore, stores.eventStore); err != nil {
		return err
	}

	datasets, err := stores.datasetStore.GetAll(ctx)
	if err != nil {
		return err
	}

	logger.Printf("Fixtures loaded: %d datasets in storage", len(datasets))
	return nil
}
