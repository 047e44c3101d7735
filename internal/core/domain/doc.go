// Package domain contains the core business entities and errors for bookforge.
//
// The domain layer has no dependencies on infrastructure. It defines the
// entities that flow through the synthesis pipeline (Document, Chunk, Theme,
// Chapter) and the sentinel errors used across service boundaries.
package domain
