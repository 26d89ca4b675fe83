package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// EstimateStore implements storage.EstimateStore using PostgreSQL.
// Fit parameters are flattened into columns; trajectory and curve
// samples are persisted separately in ClickHouse.
type EstimateStore struct {
	pool *Pool
}

// NewEstimateStore creates a new EstimateStore.
func NewEstimateStore(pool *Pool) *EstimateStore {
	return &EstimateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EstimateStore = (*EstimateStore)(nil)

// Insert adds a new estimate. Returns ErrDuplicateKey if estimate_id exists.
func (s *EstimateStore) Insert(ctx context.Context, e *domain.IndexEstimate) error {
	query := `
		INSERT INTO estimates (
			estimate_id, dataset_id, b_value, magnitude_cutoff, volume_start, volume_end,
			vs, sigma, sigma_error, r_squared, event_count, reason, diagnostic, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		e.EstimateID,
		e.DatasetID,
		e.Params.BValue,
		e.Params.MagnitudeCutoff,
		e.Params.VolumeStart,
		e.Params.VolumeEnd,
		e.Vs,
		e.Sigma,
		e.SigmaError,
		e.RSquared,
		e.EventCount(),
		string(e.Reason),
		e.Diagnostic,
		e.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

// GetByID retrieves an estimate by its ID. Returns ErrNotFound if not exists.
// Slice fields are left empty; load them from the point stores.
func (s *EstimateStore) GetByID(ctx context.Context, estimateID string) (*domain.IndexEstimate, error) {
	query := `
		SELECT estimate_id, dataset_id, b_value, magnitude_cutoff, volume_start, volume_end,
		       vs, sigma, sigma_error, r_squared, reason, diagnostic, created_at
		FROM estimates
		WHERE estimate_id = $1
	`

	row := s.pool.QueryRow(ctx, query, estimateID)
	e, err := scanEstimate(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get estimate by id: %w", err)
	}
	return e, nil
}

// GetByDatasetID retrieves all estimates for a dataset, ordered by created_at ASC.
func (s *EstimateStore) GetByDatasetID(ctx context.Context, datasetID string) ([]*domain.IndexEstimate, error) {
	query := `
		SELECT estimate_id, dataset_id, b_value, magnitude_cutoff, volume_start, volume_end,
		       vs, sigma, sigma_error, r_squared, reason, diagnostic, created_at
		FROM estimates
		WHERE dataset_id = $1
		ORDER BY created_at ASC, estimate_id ASC
	`

	rows, err := s.pool.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("get estimates by dataset id: %w", err)
	}
	defer rows.Close()

	return scanEstimates(rows)
}

// GetAll retrieves all estimates, ordered by created_at ASC.
func (s *EstimateStore) GetAll(ctx context.Context) ([]*domain.IndexEstimate, error) {
	query := `
		SELECT estimate_id, dataset_id, b_value, magnitude_cutoff, volume_start, volume_end,
		       vs, sigma, sigma_error, r_squared, reason, diagnostic, created_at
		FROM estimates
		ORDER BY created_at ASC, estimate_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all estimates: %w", err)
	}
	defer rows.Close()

	return scanEstimates(rows)
}

// scanEstimate scans a single row into an IndexEstimate.
func scanEstimate(row pgx.Row) (*domain.IndexEstimate, error) {
	var e domain.IndexEstimate
	var reasonStr string

	err := row.Scan(
		&e.EstimateID,
		&e.DatasetID,
		&e.Params.BValue,
		&e.Params.MagnitudeCutoff,
		&e.Params.VolumeStart,
		&e.Params.VolumeEnd,
		&e.Vs,
		&e.Sigma,
		&e.SigmaError,
		&e.RSquared,
		&reasonStr,
		&e.Diagnostic,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Reason = domain.DegenerateReason(reasonStr)
	return &e, nil
}

// scanEstimates scans multiple rows into a slice of IndexEstimate.
func scanEstimates(rows pgx.Rows) ([]*domain.IndexEstimate, error) {
	var estimates []*domain.IndexEstimate

	for rows.Next() {
		var e domain.IndexEstimate
		var reasonStr string

		err := rows.Scan(
			&e.EstimateID,
			&e.DatasetID,
			&e.Params.BValue,
			&e.Params.MagnitudeCutoff,
			&e.Params.VolumeStart,
			&e.Params.VolumeEnd,
			&e.Vs,
			&e.Sigma,
			&e.SigmaError,
			&e.RSquared,
			&reasonStr,
			&e.Diagnostic,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan estimate row: %w", err)
		}

		e.Reason = domain.DegenerateReason(reasonStr)
		estimates = append(estimates, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate rows: %w", err)
	}

	return estimates, nil
}
