// Package chunking implements the adaptive chunking engine. It classifies
// a document's structural shape (transcript, structured, conversational,
// plain prose) and applies the matching decomposition strategy to produce
// an ordered sequence of chunks with strategy-specific metadata.
package chunking
