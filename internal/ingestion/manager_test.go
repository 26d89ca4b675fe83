package ingestion

import (
	"context"
	"errors"
	"testing"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/ingestion/stub"
	"seismo-index-lab/internal/storage"
	"seismo-index-lab/internal/storage/memory"
)

// orderValidatingEventStore wraps a CatalogEventStore and validates ordering
// in InsertBulk. Returns ErrInvalidOrdering if events are not properly ordered.
type orderValidatingEventStore struct {
	storage.CatalogEventStore
}

func (s *orderValidatingEventStore) InsertBulk(ctx context.Context, events []*domain.CatalogEvent) error {
	if err := ValidateCatalogEventOrdering(events); err != nil {
		return err
	}
	return s.CatalogEventStore.InsertBulk(ctx, events)
}

// orderValidatingSampleStore wraps an InjectionSampleStore and validates
// ordering in InsertBulk.
type orderValidatingSampleStore struct {
	storage.InjectionSampleStore
}

func (s *orderValidatingSampleStore) InsertBulk(ctx context.Context, samples []*domain.InjectionSample) error {
	if err := ValidateInjectionSampleOrdering(samples); err != nil {
		return err
	}
	return s.InjectionSampleStore.InsertBulk(ctx, samples)
}

func rampRawDataset() *domain.RawDataset {
	return &domain.RawDataset{
		Meta: domain.DatasetMeta{
			Name:       "basel geothermal stimulation",
			Region:     "basel",
			WellName:   "BS-1",
			TimeUnit:   "days",
			VolumeUnit: "m3",
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
}

func TestManager_IngestDataset_StoresAllParts(t *testing.T) {
	raw := rampRawDataset()
	datasets := memory.NewDatasetStore()
	events := memory.NewCatalogEventStore()
	samples := memory.NewInjectionSampleStore()

	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: datasets,
		EventStore:   events,
		SampleStore:  samples,
		NowMs:        func() int64 { return 1700000000000 },
	})

	ctx := context.Background()
	res, err := mgr.IngestDataset(ctx)
	if err != nil {
		t.Fatalf("IngestDataset failed: %v", err)
	}
	if res == nil {
		t.Fatal("Expected a result")
	}

	wantID := idhash.ComputeDatasetID("basel geothermal stimulation", "basel", "BS-1")
	if res.DatasetID != wantID {
		t.Errorf("DatasetID mismatch: got %s, want %s", res.DatasetID, wantID)
	}
	if res.RunID == "" {
		t.Error("Expected a non-empty run ID")
	}
	if res.SampleCount != 4 {
		t.Errorf("Expected 4 samples, got %d", res.SampleCount)
	}
	if res.EventCount != 3 {
		t.Errorf("Expected 3 events, got %d", res.EventCount)
	}

	ds, err := datasets.GetByID(ctx, wantID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if ds.Region != "basel" || ds.WellName != "BS-1" {
		t.Errorf("Dataset metadata mismatch: %+v", ds)
	}
	if ds.CreatedAt != 1700000000000 {
		t.Errorf("CreatedAt mismatch: got %d", ds.CreatedAt)
	}

	storedSamples, err := samples.GetByDatasetID(ctx, wantID)
	if err != nil {
		t.Fatalf("GetByDatasetID samples failed: %v", err)
	}
	for i, want := range []float64{0, 1, 2, 3} {
		if storedSamples[i].T != want {
			t.Errorf("Sample %d: got t=%v, want %v", i, storedSamples[i].T, want)
		}
	}

	storedEvents, err := events.GetByDatasetID(ctx, wantID)
	if err != nil {
		t.Fatalf("GetByDatasetID events failed: %v", err)
	}
	for i, ev := range storedEvents {
		if ev.Seq != i {
			t.Errorf("Event %d: got seq=%d, want %d", i, ev.Seq, i)
		}
	}
}

func TestManager_IngestDataset_Ordering(t *testing.T) {
	// Unordered source data: Manager must sort rows before InsertBulk,
	// otherwise the validating stores fail. Seq must record source order.
	raw := rampRawDataset()
	raw.Series.Times = []float64{3, 0, 2, 1}
	raw.Series.Volumes = []float64{600, 0, 300, 100}
	raw.Catalog.Times = []float64{2.5, 0.5, 1.5}
	raw.Catalog.Magnitudes = []float64{3.0, 2.0, 2.5}

	events := &orderValidatingEventStore{CatalogEventStore: memory.NewCatalogEventStore()}
	samples := &orderValidatingSampleStore{InjectionSampleStore: memory.NewInjectionSampleStore()}

	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: memory.NewDatasetStore(),
		EventStore:   events,
		SampleStore:  samples,
	})

	ctx := context.Background()
	res, err := mgr.IngestDataset(ctx)
	if err != nil {
		t.Fatalf("IngestDataset failed: %v (Manager must sort before InsertBulk)", err)
	}

	stored, err := events.GetByDatasetID(ctx, res.DatasetID)
	if err != nil {
		t.Fatalf("GetByDatasetID failed: %v", err)
	}

	wantTimes := []float64{0.5, 1.5, 2.5}
	wantSeqs := []int{1, 2, 0}
	wantMags := []float64{2.0, 2.5, 3.0}
	for i := range stored {
		if stored[i].T != wantTimes[i] || stored[i].Seq != wantSeqs[i] || stored[i].Magnitude != wantMags[i] {
			t.Errorf("Event %d: got (t=%v seq=%d m=%v), want (t=%v seq=%d m=%v)",
				i, stored[i].T, stored[i].Seq, stored[i].Magnitude, wantTimes[i], wantSeqs[i], wantMags[i])
		}
	}
}

func TestManager_IngestDataset_DuplicateRejection(t *testing.T) {
	datasets := memory.NewDatasetStore()
	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(rampRawDataset()),
		DatasetStore: datasets,
		EventStore:   memory.NewCatalogEventStore(),
		SampleStore:  memory.NewInjectionSampleStore(),
	})

	ctx := context.Background()

	// First ingest succeeds
	if _, err := mgr.IngestDataset(ctx); err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}

	// Second ingest of the same dataset fails (duplicate)
	_, err := mgr.IngestDataset(ctx)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey on duplicate, got %v", err)
	}
}

func TestManager_IngestDataset_Deterministic(t *testing.T) {
	// Run multiple times and verify identity and ordering never vary
	var firstID string
	for run := 0; run < 5; run++ {
		raw := rampRawDataset()
		raw.Catalog.Times = []float64{2.5, 0.5, 1.5}
		raw.Catalog.Magnitudes = []float64{3.0, 2.0, 2.5}

		mgr := NewManager(ManagerOptions{
			Source:       stub.NewStubSource(raw),
			DatasetStore: memory.NewDatasetStore(),
			EventStore:   &orderValidatingEventStore{CatalogEventStore: memory.NewCatalogEventStore()},
			SampleStore:  &orderValidatingSampleStore{InjectionSampleStore: memory.NewInjectionSampleStore()},
		})

		res, err := mgr.IngestDataset(context.Background())
		if err != nil {
			t.Fatalf("Run %d: IngestDataset failed: %v", run, err)
		}
		if run == 0 {
			firstID = res.DatasetID
		} else if res.DatasetID != firstID {
			t.Errorf("Run %d: DatasetID changed: %s vs %s", run, res.DatasetID, firstID)
		}
	}
}

func TestManager_IngestDataset_EmptyCatalog(t *testing.T) {
	raw := rampRawDataset()
	raw.Catalog = domain.EarthquakeCatalog{}

	datasets := memory.NewDatasetStore()
	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: datasets,
		EventStore:   memory.NewCatalogEventStore(),
		SampleStore:  memory.NewInjectionSampleStore(),
	})

	ctx := context.Background()
	res, err := mgr.IngestDataset(ctx)
	if err != nil {
		t.Fatalf("Empty catalog should not error: %v", err)
	}
	if res.EventCount != 0 {
		t.Errorf("Expected 0 events, got %d", res.EventCount)
	}
	if res.SampleCount != 4 {
		t.Errorf("Expected 4 samples, got %d", res.SampleCount)
	}

	// The dataset row is still written: quiet sites are valid datasets
	if _, err := datasets.GetByID(ctx, res.DatasetID); err != nil {
		t.Errorf("Dataset row missing: %v", err)
	}
}

func TestManager_IngestDataset_SeriesLengthMismatch(t *testing.T) {
	raw := rampRawDataset()
	raw.Series.Volumes = raw.Series.Volumes[:2]

	datasets := memory.NewDatasetStore()
	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: datasets,
	})

	ctx := context.Background()
	if _, err := mgr.IngestDataset(ctx); err == nil {
		t.Fatal("Expected error for ragged series")
	}

	// Validation failures must leave no rows behind
	all, err := datasets.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Expected no datasets stored, got %d", len(all))
	}
}

func TestManager_IngestDataset_CatalogLengthMismatch(t *testing.T) {
	raw := rampRawDataset()
	raw.Catalog.Magnitudes = raw.Catalog.Magnitudes[:1]

	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: memory.NewDatasetStore(),
	})

	if _, err := mgr.IngestDataset(context.Background()); err == nil {
		t.Fatal("Expected error for ragged catalog")
	}
}

func TestManager_IngestDataset_NonMonotonicVolume(t *testing.T) {
	raw := rampRawDataset()
	raw.Series.Volumes = []float64{0, 100, 50, 600}

	datasets := memory.NewDatasetStore()
	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: datasets,
	})

	ctx := context.Background()
	_, err := mgr.IngestDataset(ctx)
	if !errors.Is(err, ErrNonMonotonicVolume) {
		t.Errorf("Expected ErrNonMonotonicVolume, got %v", err)
	}

	all, _ := datasets.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("Expected no datasets stored, got %d", len(all))
	}
}

func TestManager_IngestDataset_DuplicateSampleTime(t *testing.T) {
	raw := rampRawDataset()
	raw.Series.Times = []float64{0, 1, 1, 3}

	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(raw),
		DatasetStore: memory.NewDatasetStore(),
	})

	_, err := mgr.IngestDataset(context.Background())
	if !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("Expected ErrInvalidOrdering for duplicate times, got %v", err)
	}
}

func TestManager_IngestDataset_NilCollaborators(t *testing.T) {
	ctx := context.Background()

	mgr := NewManager(ManagerOptions{})
	res, err := mgr.IngestDataset(ctx)
	if err != nil || res != nil {
		t.Error("Nil source should return nil, nil")
	}

	mgr = NewManager(ManagerOptions{Source: stub.NewStubSource(rampRawDataset())})
	res, err = mgr.IngestDataset(ctx)
	if err != nil || res != nil {
		t.Error("Nil dataset store should return nil, nil")
	}
}

func TestManager_IngestDataset_EmptySource(t *testing.T) {
	mgr := NewManager(ManagerOptions{
		Source:       stub.NewStubSource(nil),
		DatasetStore: memory.NewDatasetStore(),
	})

	res, err := mgr.IngestDataset(context.Background())
	if err != nil {
		t.Errorf("Empty source should not error: %v", err)
	}
	if res != nil {
		t.Errorf("Expected nil result, got %+v", res)
	}
}
