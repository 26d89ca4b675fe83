package clickhouse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

func TestInjectionSampleStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInjectionSampleStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	samples := []*domain.InjectionSample{
		{DatasetID: "ds-1", T: 0.0, CumulativeVolume: 0.0},
		{DatasetID: "ds-1", T: 1.0, CumulativeVolume: 100.0},
	}

	err = store.InsertBulk(ctx, samples)
	require.NoError(t, err)

	got, err := store.GetByDatasetID(ctx, "ds-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ds-1", got[0].DatasetID)
	assert.Equal(t, 0.0, got[0].T)
	assert.Equal(t, 0.0, got[0].CumulativeVolume)
	assert.Equal(t, 1.0, got[1].T)
	assert.Equal(t, 100.0, got[1].CumulativeVolume)
}

func TestInjectionSampleStore_InsertBulk_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInjectionSampleStore(conn)
	ctx := context.Background()

	samples := []*domain.InjectionSample{
		{DatasetID: "ds-1", T: 1.0, CumulativeVolume: 100.0},
	}

	err := store.InsertBulk(ctx, samples)
	require.NoError(t, err)

	err = store.InsertBulk(ctx, samples)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestInjectionSampleStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInjectionSampleStore(conn)
	ctx := context.Background()

	samples := []*domain.InjectionSample{
		{DatasetID: "ds-1", T: 1.0, CumulativeVolume: 100.0},
		{DatasetID: "ds-1", T: 1.0, CumulativeVolume: 200.0},
	}

	err := store.InsertBulk(ctx, samples)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestInjectionSampleStore_GetByDatasetID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInjectionSampleStore(conn)
	ctx := context.Background()

	samples := []*domain.InjectionSample{
		{DatasetID: "ds-1", T: 2.0, CumulativeVolume: 300.0},
		{DatasetID: "ds-1", T: 0.0, CumulativeVolume: 0.0},
		{DatasetID: "ds-2", T: 1.0, CumulativeVolume: 50.0},
	}

	err := store.InsertBulk(ctx, samples)
	require.NoError(t, err)

	// Only ds-1, ordered by t
	got, err := store.GetByDatasetID(ctx, "ds-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[0].T)
	assert.Equal(t, 2.0, got[1].T)

	got, err = store.GetByDatasetID(ctx, "ds-999")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInjectionSampleStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInjectionSampleStore(conn)
	ctx := context.Background()

	var samples []*domain.InjectionSample
	for i := 0; i < 4; i++ {
		samples = append(samples, &domain.InjectionSample{
			DatasetID:        "ds-1",
			T:                float64(i),
			CumulativeVolume: float64(i * 100),
		})
	}

	err := store.InsertBulk(ctx, samples)
	require.NoError(t, err)

	// Inclusive on both ends
	got, err := store.GetByTimeRange(ctx, "ds-1", 1.0, 2.0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].T)
	assert.Equal(t, 2.0, got[1].T)

	got, err = store.GetByTimeRange(ctx, "ds-1", 10.0, 20.0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInjectionSampleStore_MultipleDatasets(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInjectionSampleStore(conn)
	ctx := context.Background()

	var samples []*domain.InjectionSample
	for i := 0; i < 5; i++ {
		for j := 0; j < 4; j++ {
			samples = append(samples, &domain.InjectionSample{
				DatasetID:        fmt.Sprintf("ds-%d", i),
				T:                float64(j),
				CumulativeVolume: float64(i*1000 + j*100),
			})
		}
	}

	err := store.InsertBulk(ctx, samples)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		got, err := store.GetByDatasetID(ctx, fmt.Sprintf("ds-%d", i))
		require.NoError(t, err)
		assert.Len(t, got, 4)
	}
}
