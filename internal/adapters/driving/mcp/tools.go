package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find relevant passages"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// ListThemesInput is the input schema for the list_themes tool.
type ListThemesInput struct {
	Count int `json:"count,omitempty" jsonschema:"maximum number of themes to discover (default 5)"`
}

// ListThemesOutput is the output schema for the list_themes tool.
type ListThemesOutput struct {
	Themes []ThemeOutput `json:"themes"`
	Count  int           `json:"count"`
}

// ThemeOutput represents a single discovered theme.
type ThemeOutput struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	ChunkCount  int      `json:"chunk_count"`
	Importance  float64  `json:"importance"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the ingested collection for relevant passages",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_themes",
		Description: "Discover thematic clusters across the ingested collection",
	}, s.handleListThemes)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	hits, err := s.ports.RAG.Retrieve(ctx, input.Query, limit, domain.SearchFilter{})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i := range hits {
		output.Results[i] = SearchResultOutput{
			ChunkID:    hits[i].ChunkID,
			DocumentID: hits[i].DocumentID,
			Score:      hits[i].Score,
			Content:    hits[i].Content,
		}
	}

	return nil, output, nil
}

// handleListThemes handles the list_themes tool invocation.
// An empty collection yields an empty theme list rather than an error.
func (s *Server) handleListThemes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListThemesInput,
) (*mcp.CallToolResult, ListThemesOutput, error) {
	count := input.Count
	if count <= 0 {
		count = 5
	}

	themes, err := s.ports.Themes.DiscoverThemes(ctx, count)
	if err != nil {
		if errors.Is(err, domain.ErrNoThemes) {
			return nil, ListThemesOutput{Themes: []ThemeOutput{}}, nil
		}
		return nil, ListThemesOutput{}, err
	}

	output := ListThemesOutput{
		Themes: make([]ThemeOutput, len(themes)),
		Count:  len(themes),
	}
	for i := range themes {
		output.Themes[i] = ThemeOutput{
			ID:          themes[i].ID,
			Label:       themes[i].Label,
			Description: themes[i].Description,
			Keywords:    themes[i].Keywords,
			ChunkCount:  themes[i].Size(),
			Importance:  themes[i].ImportanceScore,
		}
	}

	return nil, output, nil
}
