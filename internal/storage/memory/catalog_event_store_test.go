package memory

import (
	"context"
	"errors"
	"testing"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

func TestCatalogEventStore_InsertAndGet(t *testing.T) {
	store := NewCatalogEventStore()
	ctx := context.Background()

	event := &domain.CatalogEvent{DatasetID: "ds1", Seq: 0, T: 0.5, Magnitude: 2.0}

	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByDatasetID(ctx, "ds1")
	if err != nil {
		t.Fatalf("GetByDatasetID failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	if got[0].T != 0.5 || got[0].Magnitude != 2.0 {
		t.Errorf("Event mismatch: got %+v", got[0])
	}
}

func TestCatalogEventStore_DuplicateKey(t *testing.T) {
	store := NewCatalogEventStore()
	ctx := context.Background()

	event := &domain.CatalogEvent{DatasetID: "ds1", Seq: 0, T: 0.5, Magnitude: 2.0}

	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, event)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCatalogEventStore_InsertBulkOrdering(t *testing.T) {
	store := NewCatalogEventStore()
	ctx := context.Background()

	// Unsorted arrival, including a time tie broken by seq
	events := []*domain.CatalogEvent{
		{DatasetID: "ds1", Seq: 0, T: 2.5, Magnitude: 3.0},
		{DatasetID: "ds1", Seq: 1, T: 0.5, Magnitude: 2.0},
		{DatasetID: "ds1", Seq: 2, T: 0.5, Magnitude: 2.2},
		{DatasetID: "ds2", Seq: 0, T: 1.0, Magnitude: 1.5},
	}

	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDatasetID(ctx, "ds1")
	if err != nil {
		t.Fatalf("GetByDatasetID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(got))
	}
	if got[0].Seq != 1 || got[1].Seq != 2 || got[2].Seq != 0 {
		t.Errorf("Wrong order: seqs %d, %d, %d", got[0].Seq, got[1].Seq, got[2].Seq)
	}
}

func TestCatalogEventStore_InsertBulkPartialDuplicate(t *testing.T) {
	store := NewCatalogEventStore()
	ctx := context.Background()

	first := &domain.CatalogEvent{DatasetID: "ds1", Seq: 0, T: 0.5, Magnitude: 2.0}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	events := []*domain.CatalogEvent{
		{DatasetID: "ds1", Seq: 1, T: 1.5, Magnitude: 2.5},
		{DatasetID: "ds1", Seq: 0, T: 0.5, Magnitude: 2.0}, // duplicate
	}

	err := store.InsertBulk(ctx, events)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Verify all-or-nothing
	all, _ := store.GetByDatasetID(ctx, "ds1")
	if len(all) != 1 {
		t.Errorf("Expected 1 event (no partial insert), got %d", len(all))
	}
}

func TestCatalogEventStore_GetByTimeRange(t *testing.T) {
	store := NewCatalogEventStore()
	ctx := context.Background()

	events := []*domain.CatalogEvent{
		{DatasetID: "ds1", Seq: 0, T: 0.5, Magnitude: 2.0},
		{DatasetID: "ds1", Seq: 1, T: 1.5, Magnitude: 2.5},
		{DatasetID: "ds1", Seq: 2, T: 2.5, Magnitude: 3.0},
	}
	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "ds1", 1.5, 2.5)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events in [1.5, 2.5], got %d", len(got))
	}
	if got[0].T != 1.5 || got[1].T != 2.5 {
		t.Error("Range bounds should be inclusive")
	}
}

func TestCatalogEventStore_InvalidInput(t *testing.T) {
	store := NewCatalogEventStore()
	ctx := context.Background()

	err := store.Insert(ctx, nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}

	err = store.InsertBulk(ctx, []*domain.CatalogEvent{{DatasetID: ""}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty dataset ID, got %v", err)
	}
}
