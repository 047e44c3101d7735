package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptSeparator splits a prompt file into its system and user sections.
const promptSeparator = "\n---\n"

// placeholderPattern matches {{variable}} placeholders in templates.
var placeholderPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// Each prompt file holds the system prompt, a line containing only "---",
// then the user prompt. Templates reference variables as {{name}}.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRAGQuery: `You are a knowledgeable assistant. Answer the question using ONLY the provided context. If the context does not contain the answer, say so. Cite sources by their bracketed numbers, e.g. [1].
---
Context:
{{context}}

Question: {{question}}

Answer:`,

	driven.PromptThemeLabeling: `You label groups of related text passages. Respond with exactly two lines:
Theme: <a short theme name, 2-6 words>
Description: <one sentence describing what the passages share>
---
The following passages were grouped together by semantic similarity:

{{samples}}

Name this theme.`,

	driven.PromptChapterSynthesis: `You are an expert author writing a book chapter by chapter. Write flowing, coherent prose in markdown. Use the source material faithfully and cite passages by their bracketed numbers, e.g. [3]. Do not invent facts absent from the sources. Detail level: {{detail_level}}.
---
Write chapter {{chapter_number}} of {{total_chapters}}, titled "{{theme}}".

Chapter focus: {{description}}

Summary of the book so far:
{{previous_summary}}

Source material:
{{context}}

Write the chapter now.`,

	driven.PromptChapterOutline: `You draft chapter outlines. Respond with a short markdown bullet list of the points the chapter should cover, in reading order. No prose.
---
Chapter theme: {{theme}}
Focus: {{description}}

Source material:
{{context}}

Outline the chapter.`,

	driven.PromptChapterSequencing: `You order book chapters into the most readable narrative sequence. Respond with a numbered list referencing the themes by their given numbers, one per line, e.g. "1. 3" meaning the third theme comes first. Include every theme exactly once. No other text.
---
Book title: {{book_title}}
Objective: {{book_objective}}

Themes:
{{themes}}

Order them.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.bookforge/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first access.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".bookforge", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Render renders the named template with the given variables and returns the
// system and user prompts.
func (s *PromptStore) Render(name string, vars map[string]string) (string, string, error) {
	raw, err := s.load(name)
	if err != nil {
		return "", "", err
	}

	system, user := splitPrompt(raw)

	system, err = substitute(system, vars)
	if err != nil {
		return "", "", fmt.Errorf("prompt %q: %w", name, err)
	}
	user, err = substitute(user, vars)
	if err != nil {
		return "", "", fmt.Errorf("prompt %q: %w", name, err)
	}

	return system, user, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads the cache whenever a prompt file changes on disk.
// Blocks until ctx is cancelled or the watcher fails.
func (s *PromptStore) Watch(ctx context.Context) error {
	// Make sure the directory exists before watching it
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		}
	}
}

// load returns the raw prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// splitPrompt separates a raw template into system and user sections.
// A template without a separator is all user prompt.
func splitPrompt(raw string) (system, user string) {
	if idx := strings.Index(raw, promptSeparator); idx >= 0 {
		return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+len(promptSeparator):])
	}
	return "", strings.TrimSpace(raw)
}

// substitute replaces {{name}} placeholders with values from vars.
// A placeholder without a matching value is an error.
func substitute(template string, vars map[string]string) (string, error) {
	var missing []string
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := vars[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# BookForge Prompts

This directory contains customisable prompts used by BookForge's LLM features.

## Files

- ` + "`rag_query.txt`" + ` - Answers a question from retrieved context
- ` + "`theme_labeling.txt`" + ` - Names and describes a group of related passages
- ` + "`chapter_synthesis.txt`" + ` - Writes a book chapter from theme context
- ` + "`chapter_outline.txt`" + ` - Drafts a bullet outline before synthesis
- ` + "`chapter_sequencing.txt`" + ` - Orders themes into a narrative sequence

## Format

Each file holds the system prompt, a line containing only ` + "`---`" + `,
then the user prompt. Templates reference variables as ` + "`{{name}}`" + `.

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command. Ensure customised prompts keep the variables they need.
`
	return os.WriteFile(path, []byte(content), 0600)
}
