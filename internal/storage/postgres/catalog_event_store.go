package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// CatalogEventStore implements storage.CatalogEventStore using PostgreSQL.
type CatalogEventStore struct {
	pool *Pool
}

// NewCatalogEventStore creates a new CatalogEventStore.
func NewCatalogEventStore(pool *Pool) *CatalogEventStore {
	return &CatalogEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CatalogEventStore = (*CatalogEventStore)(nil)

// Insert adds a new catalog event. Returns ErrDuplicateKey if (dataset_id, seq) exists.
func (s *CatalogEventStore) Insert(ctx context.Context, e *domain.CatalogEvent) error {
	query := `
		INSERT INTO catalog_events (
			dataset_id, seq, t, magnitude
		) VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		e.DatasetID,
		e.Seq,
		e.T,
		e.Magnitude,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert catalog event: %w", err)
	}
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *CatalogEventStore) InsertBulk(ctx context.Context, events []*domain.CatalogEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO catalog_events (
			dataset_id, seq, t, magnitude
		) VALUES ($1, $2, $3, $4)
	`

	for _, e := range events {
		_, err := tx.Exec(ctx, query,
			e.DatasetID,
			e.Seq,
			e.T,
			e.Magnitude,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert catalog event in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByDatasetID retrieves all events for a dataset, ordered by t ASC, seq ASC.
func (s *CatalogEventStore) GetByDatasetID(ctx context.Context, datasetID string) ([]*domain.CatalogEvent, error) {
	query := `
		SELECT dataset_id, seq, t, magnitude
		FROM catalog_events
		WHERE dataset_id = $1
		ORDER BY t ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("get catalog events by dataset id: %w", err)
	}
	defer rows.Close()

	return scanCatalogEvents(rows)
}

// GetByTimeRange retrieves events for a dataset within [start, end] (inclusive).
func (s *CatalogEventStore) GetByTimeRange(ctx context.Context, datasetID string, start, end float64) ([]*domain.CatalogEvent, error) {
	query := `
		SELECT dataset_id, seq, t, magnitude
		FROM catalog_events
		WHERE dataset_id = $1 AND t >= $2 AND t <= $3
		ORDER BY t ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, datasetID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get catalog events by time range: %w", err)
	}
	defer rows.Close()

	return scanCatalogEvents(rows)
}

// scanCatalogEvents scans multiple rows into a slice of CatalogEvent.
func scanCatalogEvents(rows pgx.Rows) ([]*domain.CatalogEvent, error) {
	var events []*domain.CatalogEvent

	for rows.Next() {
		var e domain.CatalogEvent

		err := rows.Scan(
			&e.DatasetID,
			&e.Seq,
			&e.T,
			&e.Magnitude,
		)
		if err != nil {
			return nil, fmt.Errorf("scan catalog event row: %w", err)
		}

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog event rows: %w", err)
	}

	return events, nil
}
