package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the
	// embedded default or an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptChatSystem is the system prompt for retrieval-grounded chat.
	// It expects two %s placeholders: the corpus summary line and the
	// formatted context documents.
	PromptChatSystem = "chat_system"

	// PromptChatReferenced is the system prompt when the user picked the
	// documents explicitly. Same placeholders as PromptChatSystem.
	PromptChatReferenced = "chat_referenced"

	// PromptSummarise is the system prompt for document summaries.
	// It has no placeholders.
	PromptSummarise = "summarise"

	// PromptSummariseRequest is the user message asking for a summary.
	// It expects two %s placeholders: the title and the content.
	PromptSummariseRequest = "summarise_request"
)
