package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// DatasetStore implements storage.DatasetStore using PostgreSQL.
type DatasetStore struct {
	pool *Pool
}

// NewDatasetStore creates a new DatasetStore.
func NewDatasetStore(pool *Pool) *DatasetStore {
	return &DatasetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DatasetStore = (*DatasetStore)(nil)

// Insert adds a new dataset. Returns ErrDuplicateKey if dataset_id exists.
func (s *DatasetStore) Insert(ctx context.Context, d *domain.Dataset) error {
	query := `
		INSERT INTO datasets (
			dataset_id, name, region, well_name, time_unit, volume_unit, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		d.DatasetID,
		d.Name,
		d.Region,
		d.WellName,
		d.TimeUnit,
		d.VolumeUnit,
		d.Notes,
		d.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its ID. Returns ErrNotFound if not exists.
func (s *DatasetStore) GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	query := `
		SELECT dataset_id, name, region, well_name, time_unit, volume_unit, notes, created_at
		FROM datasets
		WHERE dataset_id = $1
	`

	row := s.pool.QueryRow(ctx, query, datasetID)
	d, err := scanDataset(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get dataset by id: %w", err)
	}
	return d, nil
}

// GetByRegion retrieves all datasets for a given region.
func (s *DatasetStore) GetByRegion(ctx context.Context, region string) ([]*domain.Dataset, error) {
	query := `
		SELECT dataset_id, name, region, well_name, time_unit, volume_unit, notes, created_at
		FROM datasets
		WHERE region = $1
		ORDER BY created_at ASC, dataset_id ASC
	`

	rows, err := s.pool.Query(ctx, query, region)
	if err != nil {
		return nil, fmt.Errorf("get datasets by region: %w", err)
	}
	defer rows.Close()

	return scanDatasets(rows)
}

// GetAll retrieves all datasets, ordered by created_at ASC.
func (s *DatasetStore) GetAll(ctx context.Context) ([]*domain.Dataset, error) {
	query := `
		SELECT dataset_id, name, region, well_name, time_unit, volume_unit, notes, created_at
		FROM datasets
		ORDER BY created_at ASC, dataset_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all datasets: %w", err)
	}
	defer rows.Close()

	return scanDatasets(rows)
}

// scanDataset scans a single row into a Dataset.
func scanDataset(row pgx.Row) (*domain.Dataset, error) {
	var d domain.Dataset

	err := row.Scan(
		&d.DatasetID,
		&d.Name,
		&d.Region,
		&d.WellName,
		&d.TimeUnit,
		&d.VolumeUnit,
		&d.Notes,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// scanDatasets scans multiple rows into a slice of Dataset.
func scanDatasets(rows pgx.Rows) ([]*domain.Dataset, error) {
	var datasets []*domain.Dataset

	for rows.Next() {
		var d domain.Dataset

		err := rows.Scan(
			&d.DatasetID,
			&d.Name,
			&d.Region,
			&d.WellName,
			&d.TimeUnit,
			&d.VolumeUnit,
			&d.Notes,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}

		datasets = append(datasets, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset rows: %w", err)
	}

	return datasets, nil
}
