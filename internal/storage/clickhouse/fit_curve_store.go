package clickhouse

import (
	"context"
	"fmt"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// FitCurveStore implements storage.FitCurveStore using ClickHouse.
type FitCurveStore struct {
	conn *Conn
}

// NewFitCurveStore creates a new FitCurveStore.
func NewFitCurveStore(conn *Conn) *FitCurveStore {
	return &FitCurveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FitCurveStore = (*FitCurveStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (estimate_id, point_index).
func (s *FitCurveStore) InsertBulk(ctx context.Context, points []*domain.FitCurvePoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		estimateID string
		pointIndex int
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		k := key{p.EstimateID, p.PointIndex}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.EstimateID, p.PointIndex)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fit_curve_points (
			estimate_id, point_index, volume, predicted_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(p.EstimateID, uint32(p.PointIndex), p.Volume, p.PredictedCount)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByEstimateID retrieves all points for an estimate, ordered by point_index ASC.
func (s *FitCurveStore) GetByEstimateID(ctx context.Context, estimateID string) ([]*domain.FitCurvePoint, error) {
	query := `
		SELECT estimate_id, point_index, volume, predicted_count
		FROM fit_curve_points
		WHERE estimate_id = ?
		ORDER BY point_index ASC
	`

	rows, err := s.conn.Query(ctx, query, estimateID)
	if err != nil {
		return nil, fmt.Errorf("query by estimate id: %w", err)
	}
	defer rows.Close()

	return scanFitCurvePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *FitCurveStore) exists(ctx context.Context, estimateID string, pointIndex int) (bool, error) {
	query := `
		SELECT count(*) FROM fit_curve_points
		WHERE estimate_id = ? AND point_index = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, estimateID, uint32(pointIndex)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanFitCurvePoints scans multiple rows.
func scanFitCurvePoints(rows chRows) ([]*domain.FitCurvePoint, error) {
	var points []*domain.FitCurvePoint

	for rows.Next() {
		var p domain.FitCurvePoint
		var pointIndex uint32

		err := rows.Scan(&p.EstimateID, &pointIndex, &p.Volume, &p.PredictedCount)
		if err != nil {
			return nil, fmt.Errorf("scan fit curve row: %w", err)
		}

		p.PointIndex = int(pointIndex)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fit curve rows: %w", err)
	}

	return points, nil
}
