package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

func TestFormatBook(t *testing.T) {
	chapters := []domain.Chapter{
		{
			Number:    1,
			Title:     "Tides",
			Content:   "The moon pulls the sea.",
			Citations: []string{"[1] Field Notes, A. Author"},
		},
		{
			Number:  2,
			Title:   "Currents",
			Content: "Water moves in loops.",
		},
	}

	book := formatBook("Sea Book", chapters)

	assert.True(t, strings.HasPrefix(book, "# Sea Book\n"))
	assert.Contains(t, book, "## Contents\n\n1. Tides\n2. Currents\n")
	assert.Contains(t, book, "## Chapter 1: Tides\n\nThe moon pulls the sea.")
	assert.Contains(t, book, "### Sources\n\n- [1] Field Notes, A. Author")
	assert.Contains(t, book, "## Chapter 2: Currents")

	// Only the cited chapter gets a sources section.
	assert.Equal(t, 1, strings.Count(book, "### Sources"))
	// Chapter separator between, not after, chapters.
	assert.Equal(t, 1, strings.Count(book, "\n---\n"))
}

func TestFormatBook_EmptyChapters(t *testing.T) {
	book := formatBook("", nil)

	assert.Contains(t, book, "# Untitled")
	assert.Contains(t, book, "_No chapters were synthesized._")
}
