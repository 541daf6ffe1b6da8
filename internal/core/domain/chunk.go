package domain

// ChunkStrategy identifies the decomposition algorithm that produced a chunk.
type ChunkStrategy string

// The fixed set of chunking strategies.
const (
	// StrategySpeaker segments transcripts into accumulated speaker turns.
	StrategySpeaker ChunkStrategy = "speaker_based"

	// StrategySemantic groups sentences by embedding similarity.
	StrategySemantic ChunkStrategy = "semantic"

	// StrategyStructured splits on detected section headers.
	StrategyStructured ChunkStrategy = "structured_section"

	// StrategyParagraph accumulates paragraphs with one paragraph of overlap.
	StrategyParagraph ChunkStrategy = "paragraph_based"

	// StrategyWindow is the fixed-size slicing fallback.
	StrategyWindow ChunkStrategy = "fixed_window"
)

// Chunk is a contiguous span of extracted text, the unit of embedding and
// retrieval. Chunks for one object are ordered by Index and fully replace
// any previously stored chunks for that object on reprocessing.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// ObjectID is the source object identity ("area/path").
	ObjectID string

	// Index is the zero-based position within the object. Stable and
	// monotonically increasing in input text order.
	Index int

	// Content is the chunk text, including any explicit overlap window.
	Content string

	// Strategy tags the algorithm that produced this chunk.
	Strategy ChunkStrategy

	// Size is the chunk content length in characters.
	Size int

	// Embedding is the vector representation, if one was generated.
	Embedding []float32

	// Metadata carries strategy-specific keys: speakers and turn range for
	// speaker chunks, header for structured sections, topic keywords and
	// importance estimate where computed.
	Metadata map[string]any
}
