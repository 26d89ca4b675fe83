package clickhouse

import (
	"context"
	"fmt"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// InjectionSampleStore implements storage.InjectionSampleStore using ClickHouse.
type InjectionSampleStore struct {
	conn *Conn
}

// NewInjectionSampleStore creates a new InjectionSampleStore.
func NewInjectionSampleStore(conn *Conn) *InjectionSampleStore {
	return &InjectionSampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.InjectionSampleStore = (*InjectionSampleStore)(nil)

// InsertBulk adds multiple samples. Fails entire batch on duplicate (dataset_id, t).
// MergeTree does not enforce uniqueness, so duplicates are detected by
// explicit checks before the batch is sent.
func (s *InjectionSampleStore) InsertBulk(ctx context.Context, samples []*domain.InjectionSample) error {
	if len(samples) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		datasetID string
		t         float64
	}
	seen := make(map[key]struct{})
	for _, p := range samples {
		k := key{p.DatasetID, p.T}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range samples {
		exists, err := s.exists(ctx, p.DatasetID, p.T)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO injection_samples (
			dataset_id, t, cumulative_volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		err = batch.Append(p.DatasetID, p.T, p.CumulativeVolume)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByDatasetID retrieves all samples for a dataset, ordered by t ASC.
func (s *InjectionSampleStore) GetByDatasetID(ctx context.Context, datasetID string) ([]*domain.InjectionSample, error) {
	query := `
		SELECT dataset_id, t, cumulative_volume
		FROM injection_samples
		WHERE dataset_id = ?
		ORDER BY t ASC
	`

	rows, err := s.conn.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("query by dataset id: %w", err)
	}
	defer rows.Close()

	return scanInjectionSamples(rows)
}

// GetByTimeRange retrieves samples for a dataset within [start, end] (inclusive).
func (s *InjectionSampleStore) GetByTimeRange(ctx context.Context, datasetID string, start, end float64) ([]*domain.InjectionSample, error) {
	query := `
		SELECT dataset_id, t, cumulative_volume
		FROM injection_samples
		WHERE dataset_id = ? AND t >= ? AND t <= ?
		ORDER BY t ASC
	`

	rows, err := s.conn.Query(ctx, query, datasetID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanInjectionSamples(rows)
}

// exists checks if a sample with the given key exists.
func (s *InjectionSampleStore) exists(ctx context.Context, datasetID string, t float64) (bool, error) {
	query := `
		SELECT count(*) FROM injection_samples
		WHERE dataset_id = ? AND t = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, datasetID, t).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanInjectionSamples scans multiple rows.
func scanInjectionSamples(rows chRows) ([]*domain.InjectionSample, error) {
	var samples []*domain.InjectionSample

	for rows.Next() {
		var p domain.InjectionSample

		err := rows.Scan(&p.DatasetID, &p.T, &p.CumulativeVolume)
		if err != nil {
			return nil, fmt.Errorf("scan injection sample row: %w", err)
		}

		samples = append(samples, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate injection sample rows: %w", err)
	}

	return samples, nil
}
