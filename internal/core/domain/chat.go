package domain

// ChatRole identifies the author of a chat turn.
type ChatRole string

// Chat roles accepted by the LLM service.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// Completion is the LLM service's answer to one request.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns input plus output tokens.
func (c Completion) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}

// ChatRequest asks a question about the corpus.
type ChatRequest struct {
	// Message is the user's question.
	Message string

	// History is the prior conversation, oldest first.
	History []ChatMessage

	// ReferencedDocumentIDs, when set, replaces retrieval: only these
	// documents are given to the model, with their full content.
	ReferencedDocumentIDs []int64
}

// ChatSource is a document the model said it used.
type ChatSource struct {
	ID      int64
	Title   string
	Snippet string
}

// ChatResponse is the answer with its cited sources.
type ChatResponse struct {
	// Response is the model text with the sources tag removed.
	Response string

	// TokensUsed is input plus output tokens.
	TokensUsed int

	// Sources lists the cited documents in retrieval order.
	Sources []ChatSource
}
