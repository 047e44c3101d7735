package driven

// PromptStore provides access to named LLM prompt templates.
// Implementations may load templates from files, embed them in the binary,
// or both, with user files taking precedence.
type PromptStore interface {
	// Render renders the named template with the given variables and returns
	// the system and user prompts.
	//
	// A missing template or a missing template variable is a caller bug and
	// returns an error; it is not recoverable at runtime.
	Render(name string, vars map[string]string) (system, user string, err error)

	// Reload clears any cached templates, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptRAGQuery answers a question from retrieved context.
	// Variables: context, question.
	PromptRAGQuery = "rag_query"

	// PromptThemeLabeling names and describes a chunk cluster.
	// Variables: samples.
	PromptThemeLabeling = "theme_labeling"

	// PromptChapterSynthesis writes a chapter from theme context.
	// Variables: theme, description, context, chapter_number, total_chapters,
	// detail_level, previous_summary.
	PromptChapterSynthesis = "chapter_synthesis"

	// PromptChapterOutline drafts a bullet outline before synthesis.
	// Variables: theme, description, context.
	PromptChapterOutline = "chapter_outline"

	// PromptChapterSequencing orders themes into a narrative sequence.
	// Variables: book_title, book_objective, themes.
	PromptChapterSequencing = "chapter_sequencing"
)
