// Package chunker provides a paragraph-aware text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// DefaultChunkSize is the default target chunk length in characters.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of characters re-included at
// the start of the next chunk.
const DefaultChunkOverlap = 200

// paragraphSep joins paragraphs within a chunk.
const paragraphSep = "\n\n"

// Processor splits document content into paragraph-aligned chunks.
// It implements the PostProcessor interface.
//
// Paragraphs (blank-line-delimited) are accumulated greedily until adding
// the next one would exceed the chunk size. The trailing overlap characters
// of each closed chunk are prefixed to the next chunk to preserve local
// context across boundaries. A single paragraph longer than the chunk size
// becomes its own oversized chunk; it is never dropped or split.
//
// Chunking is deterministic: identical content and configuration produce
// byte-identical chunk text, spans and IDs on every invocation.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// paragraph is a blank-line-delimited block with its span in the original text.
type paragraph struct {
	text  string
	start int
	end   int
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Returns domain.ErrEmptyContent when the content is empty or whitespace-only.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("document %s: %w", doc.ID, domain.ErrEmptyContent)
	}

	paras := splitParagraphs(doc.Content)

	var chunks []domain.Chunk
	var group []paragraph
	var carry string // overlap prefix carried from the previous chunk

	groupLen := func() int {
		n := len(carry)
		for i, para := range group {
			if i > 0 || carry != "" {
				n += len(paragraphSep)
			}
			n += len(para.text)
		}
		return n
	}

	closeGroup := func() {
		if len(group) == 0 {
			return
		}
		chunk := p.buildChunk(doc, len(chunks), carry, group)
		chunks = append(chunks, chunk)
		carry = tail(chunk.Content, p.overlap)
		group = group[:0]
	}

	for _, para := range paras {
		projected := groupLen() + len(para.text)
		if len(group) > 0 || carry != "" {
			projected += len(paragraphSep)
		}

		if len(group) > 0 && projected > p.chunkSize {
			closeGroup()
		}
		group = append(group, para)

		// An oversized paragraph closes immediately so it stands alone
		// rather than dragging the following paragraphs past the limit.
		if len(group) == 1 && len(para.text) > p.chunkSize {
			closeGroup()
		}
	}
	closeGroup()

	return chunks, nil
}

// buildChunk assembles a chunk from an overlap prefix and a paragraph group.
func (p *Processor) buildChunk(doc *domain.Document, index int, carry string, group []paragraph) domain.Chunk {
	var sb strings.Builder
	sb.WriteString(carry)
	for i, para := range group {
		if i > 0 || carry != "" {
			sb.WriteString(paragraphSep)
		}
		sb.WriteString(para.text)
	}

	start := group[0].start
	end := group[len(group)-1].end

	metadata := map[string]any{
		"document_id": doc.ID,
		"chunk_index": index,
	}
	if page := pageForOffset(doc, start); page > 0 {
		metadata["page_number"] = page
	}

	return domain.Chunk{
		ID:         chunkID(doc.ID, index),
		DocumentID: doc.ID,
		Content:    sb.String(),
		Index:      index,
		StartChar:  start,
		EndChar:    end,
		Metadata:   metadata,
	}
}

// chunkID derives a deterministic chunk identifier from the document ID and
// chunk index, so re-chunking the same document upserts rather than
// duplicating entries.
func chunkID(documentID string, index int) string {
	name := fmt.Sprintf("bookforge:chunk:%s:%d", documentID, index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// splitParagraphs splits content into blank-line-delimited paragraphs,
// recording each paragraph's span in the original text. Whitespace-only
// blocks are skipped.
func splitParagraphs(content string) []paragraph {
	var paras []paragraph

	offset := 0
	for offset < len(content) {
		rel := strings.Index(content[offset:], "\n\n")
		end := len(content)
		next := len(content)
		if rel >= 0 {
			end = offset + rel
			next = end + 2
		}

		block := content[offset:end]
		trimmed := strings.TrimSpace(block)
		if trimmed != "" {
			lead := strings.Index(block, trimmed)
			paras = append(paras, paragraph{
				text:  trimmed,
				start: offset + lead,
				end:   offset + lead + len(trimmed),
			})
		}

		offset = next
	}

	return paras
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// pageForOffset estimates the 1-based page holding the given character
// offset, when the document knows its page count.
func pageForOffset(doc *domain.Document, offset int) int {
	if doc.PageCount <= 0 || len(doc.Content) == 0 {
		return 0
	}
	page := offset*doc.PageCount/len(doc.Content) + 1
	if page > doc.PageCount {
		page = doc.PageCount
	}
	return page
}
