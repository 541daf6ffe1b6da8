package domain

import "time"

// SyncState tracks the watcher's progress over the lifetime of a pipeline.
// It must only ever be read and written by a single orchestrator instance;
// there is no cross-process locking (operational constraint, not enforced).
type SyncState struct {
	// PipelineID identifies the logical pipeline this state belongs to.
	PipelineID string

	// LastCheckTime is the watermark used to bound "changed since" queries.
	LastCheckTime time.Time

	// KnownObjects maps object identity ("area/path") to the content
	// fingerprint recorded after the object was last processed
	// successfully. An object is reprocessed if and only if its current
	// fingerprint differs from this entry, or no entry exists.
	KnownObjects map[string]string
}

// NewSyncState returns an empty state for a pipeline.
func NewSyncState(pipelineID string) *SyncState {
	return &SyncState{
		PipelineID:   pipelineID,
		KnownObjects: make(map[string]string),
	}
}

// Fingerprint returns the recorded fingerprint for an object identity,
// and whether one exists.
func (s *SyncState) Fingerprint(identity string) (string, bool) {
	fp, ok := s.KnownObjects[identity]
	return fp, ok
}

// RecordFingerprint stores the fingerprint for an object identity.
// Callers must only invoke this after the object's full processing
// succeeded, otherwise a failed object would never be retried.
func (s *SyncState) RecordFingerprint(identity, fingerprint string) {
	if s.KnownObjects == nil {
		s.KnownObjects = make(map[string]string)
	}
	s.KnownObjects[identity] = fingerprint
}

// Clone returns a deep copy. The orchestrator persists clones so a
// concurrent status read never observes a half-written map.
func (s *SyncState) Clone() *SyncState {
	clone := &SyncState{
		PipelineID:    s.PipelineID,
		LastCheckTime: s.LastCheckTime,
		KnownObjects:  make(map[string]string, len(s.KnownObjects)),
	}
	for k, v := range s.KnownObjects {
		clone.KnownObjects[k] = v
	}
	return clone
}
