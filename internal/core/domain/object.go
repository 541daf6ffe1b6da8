package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"
)

// ObjectRef identifies a file in a watched storage area without its content.
// It is what a storage listing returns.
type ObjectRef struct {
	// Area is the storage area (bucket) the object lives in.
	Area string

	// Path is the object's path relative to the area.
	Path string

	// MediaType is the declared content type. May be empty in listings;
	// use ResolveMediaType to fall back to extension-based inference.
	MediaType string

	// CreatedAt is the reported creation timestamp.
	CreatedAt time.Time

	// UpdatedAt is the reported last-modification timestamp.
	UpdatedAt time.Time

	// Metadata contains free-form owner metadata. May carry project or
	// meeting identifiers under "project_id" / "meeting_id".
	Metadata map[string]any
}

// Identity returns the object's stable identity, "area/path".
func (r ObjectRef) Identity() string {
	return r.Area + "/" + r.Path
}

// ChangedSince reports whether the object's creation or modification
// timestamp is strictly after the watermark.
func (r ObjectRef) ChangedSince(watermark time.Time) bool {
	return r.CreatedAt.After(watermark) || r.UpdatedAt.After(watermark)
}

// SourceObject is an ObjectRef together with its downloaded raw content.
type SourceObject struct {
	Ref     ObjectRef
	Content []byte
}

// Fingerprint computes the content fingerprint used for change detection:
// a SHA-256 hash over the raw bytes, hex encoded. Timestamps never feed it.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// extensionMediaTypes maps file extensions to media types for listings
// that do not declare one.
var extensionMediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".html": "text/html",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// ResolveMediaType returns the declared media type, or an extension-based
// guess when the listing did not declare one. Unknown extensions resolve to
// application/octet-stream.
func (r ObjectRef) ResolveMediaType() string {
	if r.MediaType != "" {
		return r.MediaType
	}
	ext := strings.ToLower(filepath.Ext(r.Path))
	if mt, ok := extensionMediaTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

// ProjectID returns the owner-metadata project identifier, if present.
func (r ObjectRef) ProjectID() string {
	return metadataString(r.Metadata, "project_id")
}

// MeetingID returns the owner-metadata meeting identifier, if present.
func (r ObjectRef) MeetingID() string {
	return metadataString(r.Metadata, "meeting_id")
}

func metadataString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
