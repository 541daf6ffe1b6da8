// Package insights implements the insight extraction pipeline. Each
// document runs through four stages: classification, windowed LLM
// extraction, enhancement and scoring, then filtering, deduplication and
// ranking down to a small persisted set of records.
//
// The pipeline is built to degrade rather than fail on malformed model
// output: response parsing falls through progressively weaker strategies
// and, at worst, yields keyword-sniffed stub insights.
package insights
