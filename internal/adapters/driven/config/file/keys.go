package file

// Well-known configuration keys. Nested TOML tables are flattened to
// dot-notation, so [storage] backend = "sqlite" is read as "storage.backend".
const (
	KeyStorageBackend = "storage.backend"
	KeyDataDir        = "storage.data_dir"

	KeyObjectStoreKind = "objectstore.kind"
	KeyObjectStoreURL  = "objectstore.url"
	KeyObjectStoreRoot = "objectstore.root"
	KeyAreas           = "objectstore.areas"

	KeySyncInterval     = "sync.interval"
	KeySyncMaxObjects   = "sync.max_objects"
	KeySyncStateBackend = "sync.state_backend"

	KeyLLMModel        = "llm.model"
	KeyLLMBaseURL      = "llm.base_url"
	KeyEmbeddingModel  = "embedding.model"
	KeyChunkTargetSize = "chunking.target_size"
	KeyChunkOverlap    = "chunking.overlap"

	KeyInsightConcurrency = "insights.batch_concurrency"
	KeyInsightMinQuality  = "insights.min_quality"
)
