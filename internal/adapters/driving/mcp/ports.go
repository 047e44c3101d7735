package mcp

import (
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG provides retrieval over the ingested collection.
	RAG driving.RAGService

	// Themes provides theme discovery.
	Themes driving.ThemeService

	// Ingest lists ingested documents for resources.
	Ingest driving.IngestService

	// Documents resolves document content for resources.
	Documents driven.DocumentStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	if p.Themes == nil {
		return ErrMissingThemeService
	}
	// Ingest and Documents are optional; resources degrade gracefully
	return nil
}
