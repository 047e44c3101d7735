// Package mcp provides an MCP (Model Context Protocol) server adapter for
// BookForge. It lets AI assistants search the ingested collection and browse
// its discovered themes and documents.
package mcp

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")

// ErrMissingThemeService is returned when the theme service is not provided.
var ErrMissingThemeService = errors.New("mcp: theme service is required")
