package store

import (
	"encoding/json"
	"fmt"

	"github.com/kilupskalvis/eagledup/internal/match"
)

// SaveCheckpointChunk persists one completed comparison chunk. Called
// from the matching engine's chunk hook while a scan is running.
func (s *Store) SaveCheckpointChunk(snapshotHash, stage string, chunkSize, chunk int, edges []match.Edge) error {
	data, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("marshal checkpoint edges: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO scan_checkpoints (snapshot_hash, stage, chunk, chunk_size, edges)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(snapshot_hash, stage, chunk) DO UPDATE SET
			chunk_size = excluded.chunk_size,
			edges = excluded.edges
	`, snapshotHash, stage, chunk, chunkSize, data)
	return err
}

// LoadCheckpoint reconstructs the resumable state for a snapshot.
// Stages recorded with a different chunk size are ignored: chunk
// boundaries would no longer line up.
func (s *Store) LoadCheckpoint(snapshotHash string, chunkSize int) (*match.Checkpoint, error) {
	rows, err := s.db.Query(`
		SELECT stage, chunk, chunk_size, edges
		FROM scan_checkpoints WHERE snapshot_hash = ?
		ORDER BY stage, chunk
	`, snapshotHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cp := match.NewCheckpoint()
	for rows.Next() {
		var (
			stage           string
			chunk, recorded int
			data            []byte
		)
		if err := rows.Scan(&stage, &chunk, &recorded, &data); err != nil {
			return nil, err
		}
		if recorded != chunkSize {
			continue
		}

		var edges []match.Edge
		if err := json.Unmarshal(data, &edges); err != nil {
			return nil, fmt.Errorf("decode checkpoint edges: %w", err)
		}

		st := cp.Stages[stage]
		if st == nil {
			st = &match.StageCheckpoint{ChunkSize: chunkSize}
			cp.Stages[stage] = st
		}
		st.Done = append(st.Done, chunk)
		st.Edges = append(st.Edges, edges...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(cp.Stages) == 0 {
		return nil, nil
	}
	return cp, nil
}

// ClearCheckpoints drops resumable state for a snapshot, or for every
// snapshot when hash is empty. Called after a scan completes or when
// the inventory has drifted since the checkpoint was taken.
func (s *Store) ClearCheckpoints(snapshotHash string) error {
	if snapshotHash == "" {
		_, err := s.db.Exec("DELETE FROM scan_checkpoints")
		return err
	}
	_, err := s.db.Exec("DELETE FROM scan_checkpoints WHERE snapshot_hash = ?", snapshotHash)
	return err
}
