package clickhouse

import (
	"context"
	"fmt"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// TrajectoryStore implements storage.TrajectoryStore using ClickHouse.
type TrajectoryStore struct {
	conn *Conn
}

// NewTrajectoryStore creates a new TrajectoryStore.
func NewTrajectoryStore(conn *Conn) *TrajectoryStore {
	return &TrajectoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TrajectoryStore = (*TrajectoryStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (estimate_id, event_seq).
func (s *TrajectoryStore) InsertBulk(ctx context.Context, points []*domain.TrajectoryPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		estimateID string
		eventSeq   int
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		k := key{p.EstimateID, p.EventSeq}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.EstimateID, p.EventSeq)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO sigma_trajectory_points (
			estimate_id, event_seq, volume, trajectory
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(p.EstimateID, uint32(p.EventSeq), p.Volume, p.Trajectory)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByEstimateID retrieves all points for an estimate, ordered by event_seq ASC.
func (s *TrajectoryStore) GetByEstimateID(ctx context.Context, estimateID string) ([]*domain.TrajectoryPoint, error) {
	query := `
		SELECT estimate_id, event_seq, volume, trajectory
		FROM sigma_trajectory_points
		WHERE estimate_id = ?
		ORDER BY event_seq ASC
	`

	rows, err := s.conn.Query(ctx, query, estimateID)
	if err != nil {
		return nil, fmt.Errorf("query by estimate id: %w", err)
	}
	defer rows.Close()

	return scanTrajectoryPoints(rows)
}

// exists checks if a point with the given key exists.
func (s *TrajectoryStore) exists(ctx context.Context, estimateID string, eventSeq int) (bool, error) {
	query := `
		SELECT count(*) FROM sigma_trajectory_points
		WHERE estimate_id = ? AND event_seq = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, estimateID, uint32(eventSeq)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanTrajectoryPoints scans multiple rows.
func scanTrajectoryPoints(rows chRows) ([]*domain.TrajectoryPoint, error) {
	var points []*domain.TrajectoryPoint

	for rows.Next() {
		var p domain.TrajectoryPoint
		var eventSeq uint32

		err := rows.Scan(&p.EstimateID, &eventSeq, &p.Volume, &p.Trajectory)
		if err != nil {
			return nil, fmt.Errorf("scan trajectory row: %w", err)
		}

		p.EventSeq = int(eventSeq)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trajectory rows: %w", err)
	}

	return points, nil
}
