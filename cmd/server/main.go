// Package main provides unified server that runs all components together:
// - Scenario sweep (scheduled): every stored dataset under every scenario
// - Reporting (scheduled): INDEX_REPORT.md, CSVs
// - HTTP API: dataset and estimate queries, on-demand estimation, live stream
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/estimator"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/observability"
	"seismo-index-lab/internal/orchestrator"
	"seismo-index-lab/internal/pipeline"
	"seismo-index-lab/internal/storage"
	chstore "seismo-index-lab/internal/storage/clickhouse"
	"seismo-index-lab/internal/storage/memory"
	"seismo-index-lab/internal/storage/migrations"
	pgstore "seismo-index-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	outputDir      string
	sweepInterval  time.Duration
	reportInterval time.Duration

	// Stores
	stores *allStores

	// Components
	logger *log.Logger

	// State
	mu            sync.Mutex
	startedAt     time.Time
	lastSweepRun  time.Time
	lastReportRun time.Time
	sweepRunning  bool
	reportRunning bool

	// Stats
	sweepRuns  int
	reportRuns int

	// WebSocket stream
	wsUpgrader    websocket.Upgrader
	wsMu          sync.Mutex
	wsSubscribers map[*websocket.Conn]bool
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

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	sweepInterval := flag.Duration("sweep-interval", 1*time.Hour, "Scenario sweep run interval")
	reportInterval := flag.Duration("report-interval", 6*time.Hour, "Report generation interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage seeded with fixture datasets")
	httpAddr := flag.String("http-addr", ":9090", "HTTP address for health, metrics, API and stream")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Memory mode has no ingested data, so seed the fixture datasets
	if *useMemory {
		if err := pipeline.LoadFixtures(ctx, stores.datasetStore, stores.sampleStore, stores.eventStore); err != nil {
			logger.Fatalf("Failed to load fixtures: %v", err)
		}
		logger.Println("Loaded fixture datasets into memory stores")
	}

	// Create server
	server := &Server{
		outputDir:      *outputDir,
		sweepInterval:  *sweepInterval,
		reportInterval: *reportInterval,
		stores:         stores,
		logger:         logger,
		wsUpgrader: websocket.Upgrader{
			// Dashboards connect cross-origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		wsSubscribers: make(map[*websocket.Conn]bool),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

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

	// Start HTTP server
	go server.startHTTPServer(*httpAddr)

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
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

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (metadata, catalog events, estimate scalars)
		datasetStore:  pgstore.NewDatasetStore(pool),
		eventStore:    pgstore.NewCatalogEventStore(pool),
		estimateStore: pgstore.NewEstimateStore(pool),

		// ClickHouse stores (bulk points)
		sampleStore:     chstore.NewInjectionSampleStore(chConn),
		trajectoryStore: chstore.NewTrajectoryStore(chConn),
		curveStore:      chstore.NewFitCurveStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	// Create error channel for goroutines
	errCh := make(chan error, 2)

	// Start sweep scheduler in background
	go func() {
		err := s.runSweepScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("sweep scheduler: %w", err)
		}
	}()

	// Start report scheduler in background
	go func() {
		err := s.runReportScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("report scheduler: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runSweepScheduler runs the scenario sweep on schedule.
func (s *Server) runSweepScheduler(ctx context.Context) error {
	s.logger.Printf("Starting sweep scheduler (interval: %v)...", s.sweepInterval)

	// Run immediately on start
	s.runSweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep executes one scenario sweep over all stored datasets.
func (s *Server) runSweep(ctx context.Context) {
	s.mu.Lock()
	if s.sweepRunning {
		s.mu.Unlock()
		s.logger.Println("Sweep already running, skipping...")
		return
	}
	s.sweepRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweepRunning = false
		s.lastSweepRun = time.Now()
		s.sweepRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running scenario sweep...")
	start := time.Now()

	orch := orchestrator.New(orchestrator.Options{
		DatasetStore:    s.stores.datasetStore,
		SampleStore:     s.stores.sampleStore,
		EventStore:      s.stores.eventStore,
		EstimateStore:   s.stores.estimateStore,
		TrajectoryStore: s.stores.trajectoryStore,
		CurveStore:      s.stores.curveStore,
		Verbose:         true,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		s.logger.Printf("Sweep error: %v", err)
		return
	}

	s.logger.Printf("Sweep completed in %v: %d datasets, %d estimates, %d degenerate, %d duplicates",
		time.Since(start), result.DatasetsProcessed, result.EstimatesCreated, result.Degenerate, result.Duplicates)
	if len(result.Errors) > 0 {
		s.logger.Printf("Sweep errors: %d", len(result.Errors))
	}

	s.broadcast(wsMessage{Type: "sweep_completed", Sweep: &sweepJSON{
		DatasetsProcessed: result.DatasetsProcessed,
		EstimatesCreated:  result.EstimatesCreated,
		Degenerate:        result.Degenerate,
		Duplicates:        result.Duplicates,
	}})
}

// runReportScheduler runs report generation on schedule.
func (s *Server) runReportScheduler(ctx context.Context) error {
	s.logger.Printf("Starting report scheduler (interval: %v)...", s.reportInterval)

	// Wait for first sweep run before generating reports
	time.Sleep(s.sweepInterval + 1*time.Minute)

	// Run immediately after first sweep
	s.runReport(ctx)

	ticker := time.NewTicker(s.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runReport(ctx)
		}
	}
}

// runReport generates the report bundle.
func (s *Server) runReport(ctx context.Context) {
	s.mu.Lock()
	if s.reportRunning {
		s.mu.Unlock()
		s.logger.Println("Report generation already running, skipping...")
		return
	}
	// Wait for sweep to finish
	if s.sweepRunning {
		s.mu.Unlock()
		s.logger.Println("Sweep running, waiting before report generation...")
		time.Sleep(30 * time.Second)
		s.mu.Lock()
	}
	s.reportRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reportRunning = false
		s.lastReportRun = time.Now()
		s.reportRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Generating reports...")
	start := time.Now()

	// Ensure output directory exists
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		s.logger.Printf("Failed to create output directory: %v", err)
		return
	}

	p := pipeline.NewEstimationPipeline(
		s.stores.datasetStore,
		s.stores.sampleStore,
		s.stores.eventStore,
		s.stores.estimateStore,
		s.stores.trajectoryStore,
		s.stores.curveStore,
		reportParams(),
		s.outputDir,
	).WithSufficiencyChecker()

	if _, err := p.Run(ctx); err != nil {
		s.logger.Printf("Report generation error: %v", err)
		return
	}

	s.logger.Printf("Reports generated in %v to %s/", time.Since(start), s.outputDir)
}

// startHTTPServer starts the HTTP server for health/metrics/status/API.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	// Query API
	mux.HandleFunc("/api/datasets", s.handleDatasets)
	mux.HandleFunc("/api/estimates", s.handleEstimates)
	mux.HandleFunc("/api/estimate", s.handleEstimateCreate)

	// Live estimate stream
	mux.HandleFunc("/api/estimates/stream", s.handleWSEstimates)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	StartedAt     time.Time `json:"started_at"`
	LastSweepRun  time.Time `json:"last_sweep_run,omitempty"`
	LastReportRun time.Time `json:"last_report_run,omitempty"`
	SweepRuns     int       `json:"sweep_runs"`
	ReportRuns    int       `json:"report_runs"`
	SweepRunning  bool      `json:"sweep_running"`
	ReportRunning bool      `json:"report_running"`
	Subscribers   int       `json:"subscribers"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.wsMu.Lock()
	subscribers := len(s.wsSubscribers)
	s.wsMu.Unlock()

	s.mu.Lock()
	resp := StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.startedAt).String(),
		StartedAt:     s.startedAt,
		LastSweepRun:  s.lastSweepRun,
		LastReportRun: s.lastReportRun,
		SweepRuns:     s.sweepRuns,
		ReportRuns:    s.reportRuns,
		SweepRunning:  s.sweepRunning,
		ReportRunning: s.reportRunning,
		Subscribers:   subscribers,
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// datasetJSON is the /api/datasets row.
type datasetJSON struct {
	DatasetID  string `json:"dataset_id"`
	Name       string `json:"name"`
	Region     string `json:"region"`
	WellName   string `json:"well_name"`
	TimeUnit   string `json:"time_unit"`
	VolumeUnit string `json:"volume_unit"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// handleDatasets lists all stored datasets.
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.stores.datasetStore.GetAll(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("load datasets: %v", err), http.StatusInternalServerError)
		return
	}

	out := make([]datasetJSON, 0, len(datasets))
	for _, d := range datasets {
		out = append(out, datasetJSON{
			DatasetID:  d.DatasetID,
			Name:       d.Name,
			Region:     d.Region,
			WellName:   d.WellName,
			TimeUnit:   d.TimeUnit,
			VolumeUnit: d.VolumeUnit,
			Notes:      d.Notes,
			CreatedAt:  d.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// handleEstimates lists stored estimate scalars, optionally filtered by
// ?dataset_id=.
func (s *Server) handleEstimates(w http.ResponseWriter, r *http.Request) {
	var (
		estimates []*domain.IndexEstimate
		err       error
	)
	if datasetID := r.URL.Query().Get("dataset_id"); datasetID != "" {
		estimates, err = s.stores.estimateStore.GetByDatasetID(r.Context(), datasetID)
	} else {
		estimates, err = s.stores.estimateStore.GetAll(r.Context())
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("load estimates: %v", err), http.StatusInternalServerError)
		return
	}

	out := make([]estimateJSON, 0, len(estimates))
	for _, e := range estimates {
		out = append(out, toEstimateJSON(*e))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// estimateRequest is the POST /api/estimate body.
type estimateRequest struct {
	DatasetID       string  `json:"dataset_id"`
	BValue          float64 `json:"b_value"`
	MagnitudeCutoff float64 `json:"magnitude_cutoff"`
	VolumeStart     float64 `json:"volume_start"`
	VolumeEnd       float64 `json:"volume_end"`
}

// handleEstimateCreate computes, persists and broadcasts an estimate for a
// stored dataset.
func (s *Server) handleEstimateCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.DatasetID == "" {
		http.Error(w, "dataset_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	samples, err := s.stores.sampleStore.GetByDatasetID(ctx, req.DatasetID)
	if err != nil {
		http.Error(w, fmt.Sprintf("load samples: %v", err), http.StatusInternalServerError)
		return
	}
	if len(samples) == 0 {
		http.Error(w, fmt.Sprintf("no stored rows for dataset %s", req.DatasetID), http.StatusNotFound)
		return
	}
	events, err := s.stores.eventStore.GetByDatasetID(ctx, req.DatasetID)
	if err != nil {
		http.Error(w, fmt.Sprintf("load events: %v", err), http.StatusInternalServerError)
		return
	}

	params := domain.FitParameters{
		BValue:          req.BValue,
		MagnitudeCutoff: req.MagnitudeCutoff,
		VolumeStart:     req.VolumeStart,
		VolumeEnd:       req.VolumeEnd,
	}

	estimate := estimator.New(nil).Estimate(domain.SeriesFromSamples(samples), domain.CatalogFromEvents(events), params)
	estimate.EstimateID = idhash.ComputeEstimateID(req.DatasetID, params)
	estimate.DatasetID = req.DatasetID
	estimate.CreatedAt = time.Now().UnixMilli()

	if err := s.persistEstimate(ctx, estimate); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		http.Error(w, fmt.Sprintf("persist estimate: %v", err), http.StatusInternalServerError)
		return
	}

	dto := toEstimateJSON(estimate)
	s.broadcast(wsMessage{Type: "estimate_created", Estimate: &dto})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto)
}

// persistEstimate stores the scalar row and its points. Re-estimating with
// identical parameters hits the deterministic estimate ID and reports
// ErrDuplicateKey.
func (s *Server) persistEstimate(ctx context.Context, estimate domain.IndexEstimate) error {
	if err := s.stores.estimateStore.Insert(ctx, &estimate); err != nil {
		return err
	}
	if points := domain.TrajectoryPointsFromEstimate(estimate); len(points) > 0 {
		if err := s.stores.trajectoryStore.InsertBulk(ctx, points); err != nil {
			return err
		}
	}
	if points := domain.FitCurvePointsFromEstimate(estimate); len(points) > 0 {
		if err := s.stores.curveStore.InsertBulk(ctx, points); err != nil {
			return err
		}
	}
	return nil
}

// wsMessage is pushed to stream subscribers.
type wsMessage struct {
	Type     string        `json:"type"`
	Estimate *estimateJSON `json:"estimate,omitempty"`
	Sweep    *sweepJSON    `json:"sweep,omitempty"`
}

// sweepJSON summarizes a completed sweep for subscribers.
type sweepJSON struct {
	DatasetsProcessed int `json:"datasets_processed"`
	EstimatesCreated  int `json:"estimates_created"`
	Degenerate        int `json:"degenerate"`
	Duplicates        int `json:"duplicates"`
}

// handleWSEstimates upgrades the /api/estimates/stream connection and
// registers a subscriber.
func (s *Server) handleWSEstimates(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.wsMu.Lock()
	s.wsSubscribers[conn] = true
	active := len(s.wsSubscribers)
	s.wsMu.Unlock()
	s.logger.Printf("WebSocket subscriber connected (%d active)", active)

	// Read loop detects client disconnect; inbound messages are discarded
	go func() {
		defer s.removeSubscriber(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// removeSubscriber closes and unregisters a connection.
func (s *Server) removeSubscriber(conn *websocket.Conn) {
	conn.Close()
	s.wsMu.Lock()
	delete(s.wsSubscribers, conn)
	s.wsMu.Unlock()
}

// broadcast pushes a message to every subscriber, dropping dead connections.
func (s *Server) broadcast(msg wsMessage) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	for conn := range s.wsSubscribers {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(s.wsSubscribers, conn)
		}
	}
}

// estimateJSON mirrors the stored estimate scalars with JSON-safe floats.
// NaN and Inf have no JSON encoding; non-finite values become null.
type estimateJSON struct {
	EstimateID      string   `json:"estimate_id"`
	DatasetID       string   `json:"dataset_id"`
	BValue          float64  `json:"b_value"`
	MagnitudeCutoff float64  `json:"magnitude_cutoff"`
	VolumeStart     float64  `json:"volume_start"`
	VolumeEnd       float64  `json:"volume_end"`
	Vs              *float64 `json:"vs"`
	Sigma           *float64 `json:"sigma"`
	SigmaError      *float64 `json:"sigma_error"`
	RSquared        *float64 `json:"r_squared"`
	Reason          string   `json:"reason,omitempty"`
	Diagnostic      string   `json:"diagnostic,omitempty"`
	CreatedAt       int64    `json:"created_at"`
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

// reportParams returns the parameter set the scheduled report bundle uses.
func reportParams() domain.FitParameters {
	return domain.FitParameters{
		BValue:          1.0,
		MagnitudeCutoff: 1.0,
	}
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
