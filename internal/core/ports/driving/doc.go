// Package driving provides interfaces for application entry points
// (primary/inbound ports): ingestion, retrieval-augmented generation,
// theme discovery, and book synthesis.
package driving
