package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Load returns the stored state for a pipeline. When no state has been
// saved yet it returns a fresh state, not an error.
func (s *syncStateStore) Load(ctx context.Context, pipelineID string) (*domain.SyncState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT pipeline_id, last_check_time, known_objects
		FROM sync_states WHERE pipeline_id = ?
	`, pipelineID)

	var state domain.SyncState
	var lastCheck sql.NullTime
	var knownJSON string
	if err := row.Scan(&state.PipelineID, &lastCheck, &knownJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewSyncState(pipelineID), nil
		}
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}

	if lastCheck.Valid {
		state.LastCheckTime = lastCheck.Time
	}

	state.KnownObjects = make(map[string]string)
	if knownJSON != "" && knownJSON != jsonNull {
		if err := json.Unmarshal([]byte(knownJSON), &state.KnownObjects); err != nil {
			return nil, fmt.Errorf("unmarshalling known objects: %w", err)
		}
	}

	return &state, nil
}

// Save persists the state for a pipeline, replacing any previous one.
func (s *syncStateStore) Save(ctx context.Context, state *domain.SyncState) error {
	if state == nil || state.PipelineID == "" {
		return domain.ErrInvalidInput
	}

	knownJSON, err := json.Marshal(state.KnownObjects)
	if err != nil {
		return fmt.Errorf("marshalling known objects: %w", err)
	}

	var lastCheck any
	if !state.LastCheckTime.IsZero() {
		lastCheck = state.LastCheckTime.UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_states (pipeline_id, last_check_time, known_objects)
		VALUES (?, ?, ?)
		ON CONFLICT(pipeline_id) DO UPDATE SET
			last_check_time = excluded.last_check_time,
			known_objects = excluded.known_objects
	`, state.PipelineID, lastCheck, string(knownJSON))

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// SupportsKnownObjects reports that this backend persists the full
// per-object fingerprint map.
func (s *syncStateStore) SupportsKnownObjects() bool {
	return true
}
