package memory

import (
	"context"
	"errors"
	"testing"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

func TestDatasetStore_InsertAndGet(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	ds := &domain.Dataset{
		DatasetID:  "ds1",
		Name:       "basel stimulation",
		Region:     "basel",
		WellName:   "BS-1",
		TimeUnit:   "days",
		VolumeUnit: "m3",
		CreatedAt:  1000,
	}

	if err := store.Insert(ctx, ds); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "ds1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.Name != "basel stimulation" || got.Region != "basel" {
		t.Errorf("Dataset mismatch: got %+v", got)
	}
}

func TestDatasetStore_DuplicateKey(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	ds := &domain.Dataset{DatasetID: "ds1", Name: "first"}

	if err := store.Insert(ctx, ds); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, ds)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestDatasetStore_NotFound(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDatasetStore_GetByRegion(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	datasets := []*domain.Dataset{
		{DatasetID: "ds1", Region: "basel", CreatedAt: 1000},
		{DatasetID: "ds2", Region: "oklahoma", CreatedAt: 2000},
		{DatasetID: "ds3", Region: "basel", CreatedAt: 3000},
	}
	for _, ds := range datasets {
		if err := store.Insert(ctx, ds); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByRegion(ctx, "basel")
	if err != nil {
		t.Fatalf("GetByRegion failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 datasets, got %d", len(got))
	}
	if got[0].DatasetID != "ds1" || got[1].DatasetID != "ds3" {
		t.Errorf("Wrong order: got %s, %s", got[0].DatasetID, got[1].DatasetID)
	}
}

func TestDatasetStore_GetAllOrdering(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	datasets := []*domain.Dataset{
		{DatasetID: "ds-late", CreatedAt: 3000},
		{DatasetID: "ds-early", CreatedAt: 1000},
		{DatasetID: "ds-mid", CreatedAt: 2000},
	}
	for _, ds := range datasets {
		if err := store.Insert(ctx, ds); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 datasets, got %d", len(got))
	}
	if got[0].DatasetID != "ds-early" || got[2].DatasetID != "ds-late" {
		t.Error("Results not ordered by created_at")
	}
}

func TestDatasetStore_InvalidInput(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	err := store.Insert(ctx, nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}

	err = store.Insert(ctx, &domain.Dataset{DatasetID: ""})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ID, got %v", err)
	}
}
