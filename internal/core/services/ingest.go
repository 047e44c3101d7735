package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
	"github.com/bookforge-labs/bookforge-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion pipeline: fetch, normalise, chunk,
// embed, store. Each stage is a driven port so formats and backends are
// pluggable.
type IngestService struct {
	fetchers    []driven.Fetcher
	registry    driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
}

// NewIngestService creates a new ingest service.
// Fetchers are consulted in order; the first one that supports a URI wins.
func NewIngestService(
	fetchers []driven.Fetcher,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
) *IngestService {
	return &IngestService{
		fetchers:    fetchers,
		registry:    registry,
		pipeline:    pipeline,
		embedder:    embedder,
		docStore:    docStore,
		vectorStore: vectorStore,
	}
}

// Ingest fetches, normalises, chunks, embeds and stores a single input.
// Re-ingesting the same input replaces the previous document's chunks;
// document and chunk IDs are deterministic so retries are idempotent.
func (s *IngestService) Ingest(ctx context.Context, uri string) (*domain.Document, int, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, 0, fmt.Errorf("empty input: %w", domain.ErrInvalidInput)
	}

	logger.Section("Ingest")
	logger.Debug("Input: %q", uri)

	fetcher := s.fetcherFor(uri)
	if fetcher == nil {
		return nil, 0, fmt.Errorf("no fetcher for %q: %w", uri, domain.ErrUnsupportedType)
	}

	raw, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", uri, err)
	}
	logger.Debug("Fetched %d bytes (%s)", len(raw.Content), raw.MIMEType)

	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, 0, fmt.Errorf("normalise %s: %w", uri, err)
	}
	doc := result.Document
	logger.Debug("Normalised: title=%q content=%d chars", doc.Title, len(doc.Content))

	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, 0, fmt.Errorf("chunk %s: %w", uri, err)
	}
	logger.Debug("Chunked into %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, 0, fmt.Errorf("embed %s: %w", uri, err)
	}
	if len(vectors) != len(chunks) {
		return nil, 0, fmt.Errorf("embedder returned %d vectors for %d chunks: %w",
			len(vectors), len(chunks), domain.ErrDimensionMismatch)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	// Persist: document first, then replace the previous chunk set.
	// Upserts plus deterministic IDs make a retried ingest converge to the
	// same rows.
	doc.Processed = true
	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, 0, fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	if err := s.vectorStore.DeleteByDocument(ctx, doc.ID); err != nil {
		return nil, 0, fmt.Errorf("clear previous chunks for %s: %w", doc.ID, err)
	}
	if err := s.vectorStore.AddChunks(ctx, chunks); err != nil {
		return nil, 0, fmt.Errorf("store chunks for %s: %w", doc.ID, err)
	}

	logger.Info("Ingested %q: %d chunks", doc.Title, len(chunks))
	return &doc, len(chunks), nil
}

// IngestBatch ingests many inputs, collecting per-item outcomes instead of
// aborting on the first failure. Cancellation fails the remaining items.
func (s *IngestService) IngestBatch(ctx context.Context, uris []string) *domain.IngestReport {
	report := &domain.IngestReport{}

	for _, uri := range uris {
		if err := ctx.Err(); err != nil {
			report.Add(domain.IngestItem{URI: uri, Err: err})
			continue
		}

		doc, count, err := s.Ingest(ctx, uri)
		item := domain.IngestItem{URI: uri, Err: err}
		if err == nil {
			item.DocumentID = doc.ID
			item.ChunkCount = count
		}
		report.Add(item)
	}

	return report
}

// DeleteDocument removes a document and its vector entries.
func (s *IngestService) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.vectorStore.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete vectors for %s: %w", documentID, err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

// ListDocuments returns all ingested documents.
func (s *IngestService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// fetcherFor returns the first fetcher that supports the URI, or nil.
func (s *IngestService) fetcherFor(uri string) driven.Fetcher {
	for _, f := range s.fetchers {
		if f.Supports(uri) {
			return f
		}
	}
	return nil
}
