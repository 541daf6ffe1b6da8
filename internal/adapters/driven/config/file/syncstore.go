package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore is a file-based implementation of driven.SyncStateStore.
// It persists only the last check time per pipeline in a TOML file; the
// per-object fingerprint map is not kept, so change detection degrades to
// timestamp comparison when this backend is used.
type SyncStateStore struct {
	mu       sync.Mutex
	filePath string
}

// syncStateFile is the on-disk TOML layout, keyed by pipeline ID.
type syncStateFile struct {
	Pipelines map[string]pipelineEntry `toml:"pipelines"`
}

type pipelineEntry struct {
	LastCheckTime time.Time `toml:"last_check_time"`
}

// NewSyncStateStore creates a file-backed sync state store.
// If configDir is empty, defaults to ~/.docsight/sync_state.toml.
func NewSyncStateStore(configDir string) (*SyncStateStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docsight")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SyncStateStore{
		filePath: filepath.Join(configDir, "sync_state.toml"),
	}, nil
}

// Load returns the stored state for a pipeline, or a fresh state when none
// has been saved yet.
func (s *SyncStateStore) Load(_ context.Context, pipelineID string) (*domain.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		return nil, err
	}

	entry, ok := contents.Pipelines[pipelineID]
	if !ok {
		return domain.NewSyncState(pipelineID), nil
	}

	state := domain.NewSyncState(pipelineID)
	state.LastCheckTime = entry.LastCheckTime
	return state, nil
}

// Save persists the pipeline watermark, replacing any previous one.
// The known-objects map is intentionally not written.
func (s *SyncStateStore) Save(_ context.Context, state *domain.SyncState) error {
	if state == nil || state.PipelineID == "" {
		return fmt.Errorf("%w: sync state requires a pipeline ID", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		return err
	}

	contents.Pipelines[state.PipelineID] = pipelineEntry{
		LastCheckTime: state.LastCheckTime.UTC(),
	}

	data, err := toml.Marshal(contents)
	if err != nil {
		return fmt.Errorf("marshal sync state: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// SupportsKnownObjects reports that this backend keeps no fingerprint map.
func (s *SyncStateStore) SupportsKnownObjects() bool {
	return false
}

// read loads the state file, returning an empty layout when it does not
// exist yet (caller must hold lock).
func (s *SyncStateStore) read() (*syncStateFile, error) {
	contents := &syncStateFile{Pipelines: make(map[string]pipelineEntry)}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return contents, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, contents); err != nil {
		return nil, fmt.Errorf("parse sync state: %w", err)
	}
	if contents.Pipelines == nil {
		contents.Pipelines = make(map[string]pipelineEntry)
	}
	return contents, nil
}
