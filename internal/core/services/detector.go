package services

import (
	"context"
	"fmt"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// ChangeDetector finds objects in storage that need processing.
//
// Detection is two-phase: a cheap listing pass selects candidates from
// timestamps and the known-object map, then the orchestrator confirms each
// candidate by content fingerprint after download. Storage timestamps alone
// are unreliable (copies and migrations rewrite them), so a candidate whose
// content hash matches the stored fingerprint is skipped.
type ChangeDetector struct {
	storage driven.ObjectStorage
}

// NewChangeDetector creates a detector over the given storage.
func NewChangeDetector(storage driven.ObjectStorage) *ChangeDetector {
	return &ChangeDetector{storage: storage}
}

// Discover lists all objects across the given storage areas.
func (d *ChangeDetector) Discover(ctx context.Context, areas []string) ([]domain.ObjectRef, error) {
	var refs []domain.ObjectRef
	for _, area := range areas {
		listed, err := d.storage.List(ctx, area)
		if err != nil {
			return nil, fmt.Errorf("list area %s: %w", area, err)
		}
		refs = append(refs, listed...)
	}
	return refs, nil
}

// Candidates filters discovered refs down to those that may have changed
// since the stored state.
//
// With a trusted fingerprint map, an object is a candidate when it is
// unknown or its timestamp moved past the watermark. Without one (file
// backed state only keeps the watermark) detection degrades to timestamps
// alone. Force selects everything.
func (d *ChangeDetector) Candidates(refs []domain.ObjectRef, state *domain.SyncState, trustFingerprints, force bool) []domain.ObjectRef {
	if force {
		return refs
	}

	var out []domain.ObjectRef
	for _, ref := range refs {
		if trustFingerprints {
			if _, known := state.KnownObjects[ref.Identity()]; !known {
				out = append(out, ref)
				continue
			}
		}
		if ref.ChangedSince(state.LastCheckTime) {
			out = append(out, ref)
		}
	}
	return out
}

// Confirm checks downloaded content against the stored fingerprint.
// It returns the content's fingerprint and whether the content is new.
func (d *ChangeDetector) Confirm(content []byte, identity string, state *domain.SyncState) (string, bool) {
	fp := domain.Fingerprint(content)
	stored, _ := state.Fingerprint(identity)
	return fp, stored != fp
}
