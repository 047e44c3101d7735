package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
	"github.com/bookforge-labs/bookforge-cli/internal/logger"
)

// Ensure SynthesisService implements the interface.
var _ driving.SynthesisService = (*SynthesisService)(nil)

// maxContextChunks bounds how many retrieved chunks feed one chapter.
const maxContextChunks = 10

// summaryChars bounds the prior-chapter summary threaded into the next
// chapter's prompt.
const summaryChars = 400

// orderLine matches one entry of a numbered sequencing response,
// e.g. "1. 3" or "2) 1".
var orderLine = regexp.MustCompile(`^\s*\d+[.)]\s*(\d+)\s*$`)

// detailTokens maps detail levels to generation budgets.
var detailTokens = map[domain.DetailLevel]int{
	domain.DetailBrief:         1024,
	domain.DetailStandard:      2048,
	domain.DetailComprehensive: 4096,
}

// SynthesisService plans and generates citation-tracked chapters from
// discovered themes.
type SynthesisService struct {
	rag      driving.RAGService
	docStore driven.DocumentStore
	llm      driven.LLMService
	prompts  driven.PromptStore
}

// NewSynthesisService creates a new synthesis service.
func NewSynthesisService(
	rag driving.RAGService,
	docStore driven.DocumentStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *SynthesisService {
	return &SynthesisService{
		rag:      rag,
		docStore: docStore,
		llm:      llm,
		prompts:  prompts,
	}
}

// PlanChapters orders themes into a narrative sequence via the sequencing
// prompt. A single theme is returned unchanged without an LLM call. Any LLM
// or parse failure falls back to the original order: sequencing improves
// quality, it is not required for correctness.
func (s *SynthesisService) PlanChapters(ctx context.Context, themes []domain.Theme, bookTitle, bookObjective string) ([]domain.Theme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(themes) <= 1 {
		return append([]domain.Theme(nil), themes...), nil
	}

	listing := make([]string, len(themes))
	for i, theme := range themes {
		listing[i] = fmt.Sprintf("%d. %s: %s", i+1, theme.Label, theme.Description)
	}

	system, user, err := s.prompts.Render(driven.PromptChapterSequencing, map[string]string{
		"book_title":     bookTitle,
		"book_objective": bookObjective,
		"themes":         strings.Join(listing, "\n"),
	})
	if err != nil {
		logger.Warn("Sequencing prompt failed, keeping discovery order: %v", err)
		return append([]domain.Theme(nil), themes...), nil
	}

	response, err := s.llm.Generate(ctx, system, user, driven.GenerateOptions{
		MaxTokens:   200,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("Sequencing call failed, keeping discovery order: %v", err)
		return append([]domain.Theme(nil), themes...), nil
	}

	order, ok := parseSequence(response, len(themes))
	if !ok {
		logger.Warn("Unparsable sequencing response, keeping discovery order")
		return append([]domain.Theme(nil), themes...), nil
	}

	planned := make([]domain.Theme, len(themes))
	for i, idx := range order {
		planned[i] = themes[idx]
	}
	return planned, nil
}

// SynthesizeChapter retrieves the theme's chunks, builds context and
// generates one chapter. LLM failure propagates to the caller. A theme with
// no chunks yields a well-formed, content-sparse chapter without an LLM
// call.
func (s *SynthesisService) SynthesizeChapter(ctx context.Context, theme domain.Theme, chapterNumber, totalChapters int, detail domain.DetailLevel, previousSummary string) (*domain.Chapter, error) {
	if _, ok := detailTokens[detail]; !ok {
		detail = domain.DetailStandard
	}
	if previousSummary == "" {
		previousSummary = "(this is the first chapter)"
	}

	logger.Section("Chapter Synthesis")
	logger.Debug("Theme %q: %d source chunks", theme.Label, theme.Size())

	if theme.Size() == 0 {
		return &domain.Chapter{
			Number:    chapterNumber,
			Title:     theme.Label,
			Content:   theme.Description,
			ThemeID:   theme.ID,
			WordCount: domain.CountWords(theme.Description),
			Metadata: map[string]any{
				"detail_level": string(detail),
				"no_sources":   true,
			},
		}, nil
	}

	k := theme.Size()
	if k > maxContextChunks {
		k = maxContextChunks
	}
	query := theme.Label
	if theme.Description != "" {
		query += ": " + theme.Description
	}
	hits, err := s.rag.Retrieve(ctx, query, k, domain.SearchFilter{ChunkIDs: theme.ChunkIDs})
	if err != nil {
		return nil, fmt.Errorf("retrieve for theme %q: %w", theme.Label, err)
	}

	contextBlock := s.rag.BuildContext(hits, true)

	// Outline pre-pass is best effort: a draft structure improves prose,
	// its absence does not block the chapter.
	if outline := s.draftOutline(ctx, theme, contextBlock); outline != "" {
		contextBlock = "Chapter outline:\n" + outline + "\n\n" + contextBlock
	}

	system, user, err := s.prompts.Render(driven.PromptChapterSynthesis, map[string]string{
		"theme":            theme.Label,
		"description":      theme.Description,
		"context":          contextBlock,
		"chapter_number":   strconv.Itoa(chapterNumber),
		"total_chapters":   strconv.Itoa(totalChapters),
		"detail_level":     string(detail),
		"previous_summary": previousSummary,
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	content, err := s.llm.Generate(ctx, system, user, driven.GenerateOptions{
		MaxTokens:   detailTokens[detail],
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize chapter %d: %w", chapterNumber, err)
	}

	sourceIDs := make([]string, len(hits))
	for i, hit := range hits {
		sourceIDs[i] = hit.ChunkID
	}

	return &domain.Chapter{
		Number:         chapterNumber,
		Title:          theme.Label,
		Content:        content,
		ThemeID:        theme.ID,
		SourceChunkIDs: sourceIDs,
		WordCount:      domain.CountWords(content),
		Citations:      s.citations(ctx, hits),
		Metadata: map[string]any{
			"detail_level":  string(detail),
			"model":         s.llm.ModelName(),
			"generation_ms": time.Since(started).Milliseconds(),
		},
	}, nil
}

// SynthesizeBook plans the chapter order, then synthesizes each theme up to
// MaxChapters, renumbering chapters 1..K in final order. Cancellation is
// cooperative: ctx is checked between chapter boundaries and the chapters
// already written are returned alongside ctx.Err().
func (s *SynthesisService) SynthesizeBook(ctx context.Context, themes []domain.Theme, opts driving.BookOptions) ([]domain.Chapter, error) {
	if len(themes) == 0 {
		return nil, nil
	}

	detail := opts.DetailLevel
	if detail == "" {
		detail = domain.DetailStandard
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(int, int, string) {}
	}

	planned, err := s.PlanChapters(ctx, themes, opts.Title, opts.Objective)
	if err != nil {
		return nil, err
	}
	if opts.MaxChapters > 0 && len(planned) > opts.MaxChapters {
		planned = planned[:opts.MaxChapters]
	}

	total := len(planned)
	progress(0, total, "Planned "+strconv.Itoa(total)+" chapters")

	chapters := make([]domain.Chapter, 0, total)
	previousSummary := ""
	for i, theme := range planned {
		if err := ctx.Err(); err != nil {
			return chapters, err
		}

		chapter, err := s.SynthesizeChapter(ctx, theme, i+1, total, detail, previousSummary)
		if err != nil {
			return chapters, err
		}

		chapters = append(chapters, *chapter)
		previousSummary = summarise(chapter.Content)
		progress(i+1, total, "Chapter "+strconv.Itoa(i+1)+": "+chapter.Title)
	}

	return chapters, nil
}

// draftOutline runs the optional outline pre-pass. Returns "" on any
// failure.
func (s *SynthesisService) draftOutline(ctx context.Context, theme domain.Theme, contextBlock string) string {
	system, user, err := s.prompts.Render(driven.PromptChapterOutline, map[string]string{
		"theme":       theme.Label,
		"description": theme.Description,
		"context":     contextBlock,
	})
	if err != nil {
		return ""
	}

	outline, err := s.llm.Generate(ctx, system, user, driven.GenerateOptions{
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Debug("Outline pre-pass failed: %v", err)
		return ""
	}
	return strings.TrimSpace(outline)
}

// citations renders one citation per source document, in first-hit order.
func (s *SynthesisService) citations(ctx context.Context, hits []domain.SearchHit) []string {
	seen := make(map[string]bool)
	var cites []string //nolint:prealloc // one entry per distinct document
	for _, hit := range hits {
		if hit.DocumentID == "" || seen[hit.DocumentID] {
			continue
		}
		seen[hit.DocumentID] = true

		label := hit.DocumentID
		if doc, err := s.docStore.GetDocument(ctx, hit.DocumentID); err == nil {
			label = doc.Title
			if doc.Author != "" {
				label += ", " + doc.Author
			}
		}
		cites = append(cites, fmt.Sprintf("[%d] %s", len(cites)+1, label))
	}
	return cites
}

// parseSequence parses a numbered-list sequencing response into a
// permutation of theme indices (0-based). Returns ok=false for anything
// that is not a complete, duplicate-free ordering.
func parseSequence(response string, n int) ([]int, bool) {
	seen := make(map[int]bool)
	var order []int //nolint:prealloc // response may hold junk lines

	for _, line := range strings.Split(response, "\n") {
		m := orderLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > n || seen[idx] {
			return nil, false
		}
		seen[idx] = true
		order = append(order, idx-1)
	}

	if len(order) != n {
		return nil, false
	}
	return order, true
}

// summarise produces the short prior-chapter synopsis threaded into the
// next chapter's prompt.
func summarise(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= summaryChars {
		return content
	}
	cut := content[:summaryChars]
	if idx := strings.LastIndexAny(cut, ".!?"); idx > summaryChars/2 {
		return cut[:idx+1]
	}
	return cut
}
