package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMedia indicates an object's media type has no
	// registered extractor. The object is skipped and its fingerprint
	// is not advanced, so a later extractor picks it up.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrEmptyContent indicates extraction produced no usable text.
	ErrEmptyContent = errors.New("empty content")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Insight extraction is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Chunk indexing degrades to unembedded chunks and
	// semantic chunking falls back to fixed windows.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSyncInProgress indicates a sync cycle is already running for
	// this pipeline.
	ErrSyncInProgress = errors.New("sync in progress")
)
