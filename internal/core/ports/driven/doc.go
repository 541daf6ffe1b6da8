// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): object storage, model services and the
// metadata stores the pipeline writes to.
package driven
