package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Chat input limits.
const (
	MaxMessageLength = 50000
	MaxHistoryLength = 100
)

const (
	snippetLength           = 200
	referencedSnippetLength = 300
	summaryContentLength    = 8000
)

// User-facing messages. Provider details stay in the debug log.
const (
	msgKeyNotConfigured     = "Clé d'accès IA non configurée. Veuillez la configurer dans les paramètres."
	msgKeyInvalid           = "Clé d'accès invalide. Vérifiez et réessayez."
	msgRateLimited          = "Limite de requêtes atteinte. Réessayez dans quelques instants."
	msgStoreUnavailable     = "Le stockage sécurisé n'est pas disponible sur ce système. Impossible d'enregistrer la clé."
	msgServiceUnavailable   = "Le service IA est temporairement indisponible. Réessayez plus tard."
	msgGeneric              = "Une erreur est survenue"
	msgDocumentNotFound     = "Document non trouvé."
	msgNoReferencedDocument = "Aucun des sermons sélectionnés n'existe."
)

var (
	sourcesTag   = regexp.MustCompile(`(?i)\[SOURCES:\s*([^\]]+)\]`)
	sourcesStrip = regexp.MustCompile(`(?i)\s*\[SOURCES:[^\]]*\]\s*`)
)

// ChatError is a failure whose message is safe to show to the user.
// Kind is the domain error it stands for.
type ChatError struct {
	Kind    error
	Message string
}

// Error returns the user-facing message.
func (e *ChatError) Error() string {
	return e.Message
}

// Unwrap returns the domain error.
func (e *ChatError) Unwrap() error {
	return e.Kind
}

// ChatService answers questions grounded in the corpus.
type ChatService struct {
	store       driven.CorpusStore
	search      driving.SearchService
	credentials driven.CredentialStore
	llm         driven.LLMFactory
	prompts     driven.PromptStore
	maxTokens   int
}

// NewChatService creates a chat service. llm and credentials may be nil,
// in which case chat is unavailable.
func NewChatService(
	store driven.CorpusStore,
	search driving.SearchService,
	credentials driven.CredentialStore,
	llm driven.LLMFactory,
	prompts driven.PromptStore,
	maxTokens int,
) *ChatService {
	if maxTokens <= 0 {
		maxTokens = domain.DefaultLLMMaxTokens
	}
	return &ChatService{
		store:       store,
		search:      search,
		credentials: credentials,
		llm:         llm,
		prompts:     prompts,
		maxTokens:   maxTokens,
	}
}

// Available reports whether an LLM backend and an API key exist.
func (s *ChatService) Available() bool {
	return s.llm != nil && s.HasKey()
}

// Ask answers req.Message. Without referenced documents the context is the
// top hybrid search hits; with them it is exactly those documents, in full.
func (s *ChatService) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message longer than %d characters", domain.ErrInvalidInput, MaxMessageLength)
	}
	if len(req.History) > MaxHistoryLength {
		return nil, fmt.Errorf("%w: history longer than %d messages", domain.ErrInvalidInput, MaxHistoryLength)
	}

	client, err := s.client()
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	var (
		docs       []domain.Document
		system     string
		referenced = len(req.ReferencedDocumentIDs) > 0
	)
	if referenced {
		docs, err = s.referencedDocuments(ctx, req.ReferencedDocumentIDs)
		if err != nil {
			return nil, err
		}
		system = fmt.Sprintf(s.prompt(driven.PromptChatReferenced),
			corpusLine(total, 0), referencedContext(docs))
	} else {
		hits, err := s.search.Hybrid(ctx, message, domain.DefaultContextDocuments)
		if err != nil {
			return nil, fmt.Errorf("retrieve context: %w", err)
		}
		docs = make([]domain.Document, len(hits))
		for i, h := range hits {
			docs[i] = h.Document
		}
		logger.Debug("chat context: %d documents", len(docs))
		system = fmt.Sprintf(s.prompt(driven.PromptChatSystem),
			corpusLine(total, len(docs)), searchContext(docs))
	}

	turns := make([]domain.ChatMessage, 0, len(req.History)+1)
	turns = append(turns, req.History...)
	turns = append(turns, domain.ChatMessage{Role: domain.ChatRoleUser, Content: message})

	completion, err := client.Complete(ctx, system, turns, driven.CompletionOptions{MaxTokens: s.maxTokens})
	if err != nil {
		return nil, userError(ctx, err)
	}

	resp := &domain.ChatResponse{
		Response:   StripSources(completion.Text),
		TokensUsed: completion.TotalTokens(),
		Sources:    []domain.ChatSource{},
	}
	if referenced {
		for _, doc := range docs {
			resp.Sources = append(resp.Sources, chatSource(doc, referencedSnippetLength))
		}
		return resp, nil
	}
	for _, n := range ParseSources(completion.Text) {
		if n >= 1 && n <= len(docs) {
			resp.Sources = append(resp.Sources, chatSource(docs[n-1], snippetLength))
		}
	}
	return resp, nil
}

// Summarise returns an LLM summary of one document.
func (s *ChatService) Summarise(ctx context.Context, id int64) (string, error) {
	client, err := s.client()
	if err != nil {
		return "", err
	}

	doc, err := s.store.GetDocument(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return "", &ChatError{Kind: domain.ErrNotFound, Message: msgDocumentNotFound}
	}
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}

	request := fmt.Sprintf(s.prompt(driven.PromptSummariseRequest),
		doc.Title, truncateRunes(doc.Content, summaryContentLength))
	completion, err := client.Complete(ctx, s.prompt(driven.PromptSummarise),
		[]domain.ChatMessage{{Role: domain.ChatRoleUser, Content: request}},
		driven.CompletionOptions{MaxTokens: domain.DefaultSummaryMaxTokens})
	if err != nil {
		return "", userError(ctx, err)
	}
	return strings.TrimSpace(completion.Text), nil
}

// TestKey checks an API key against the LLM backend without storing it.
func (s *ChatService) TestKey(ctx context.Context, apiKey string) error {
	if s.llm == nil {
		return &ChatError{Kind: domain.ErrLLMUnavailable, Message: msgServiceUnavailable}
	}
	client := s.llm(strings.TrimSpace(apiKey))
	if client == nil {
		return &ChatError{Kind: domain.ErrCredentialsMissing, Message: msgKeyNotConfigured}
	}
	if err := client.Ping(ctx); err != nil {
		return userError(ctx, err)
	}
	return nil
}

// SaveKey tests apiKey and stores it when the backend accepts it.
func (s *ChatService) SaveKey(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if s.credentials == nil || !s.credentials.Available() {
		return &ChatError{Kind: domain.ErrCredentialStoreUnavailable, Message: msgStoreUnavailable}
	}
	if err := s.TestKey(ctx, apiKey); err != nil {
		return err
	}
	if err := s.credentials.Set(apiKey); err != nil {
		logger.Debug("store api key: %v", err)
		return &ChatError{Kind: domain.ErrCredentialStoreUnavailable, Message: msgStoreUnavailable}
	}
	return nil
}

// DeleteKey removes the stored API key.
func (s *ChatService) DeleteKey() error {
	if s.credentials == nil || !s.credentials.Available() {
		return &ChatError{Kind: domain.ErrCredentialStoreUnavailable, Message: msgStoreUnavailable}
	}
	return s.credentials.Delete()
}

// HasKey reports whether an API key is stored.
func (s *ChatService) HasKey() bool {
	return s.credentials != nil && s.credentials.Available() && s.credentials.Has()
}

// client builds an LLM client with the stored key. The key is not kept.
func (s *ChatService) client() (driven.LLMService, error) {
	if s.llm == nil {
		return nil, &ChatError{Kind: domain.ErrLLMUnavailable, Message: msgServiceUnavailable}
	}
	if s.credentials == nil || !s.credentials.Available() {
		return nil, &ChatError{Kind: domain.ErrCredentialStoreUnavailable, Message: msgStoreUnavailable}
	}
	key, err := s.credentials.Get()
	if err != nil {
		if errors.Is(err, domain.ErrCredentialStoreUnavailable) {
			return nil, &ChatError{Kind: domain.ErrCredentialStoreUnavailable, Message: msgStoreUnavailable}
		}
		return nil, &ChatError{Kind: domain.ErrCredentialsMissing, Message: msgKeyNotConfigured}
	}
	client := s.llm(key)
	if client == nil {
		return nil, &ChatError{Kind: domain.ErrCredentialsMissing, Message: msgKeyNotConfigured}
	}
	return client, nil
}

func (s *ChatService) referencedDocuments(ctx context.Context, ids []int64) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.store.GetDocument(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("referenced document %d not found", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get document %d: %w", id, err)
		}
		docs = append(docs, *doc)
	}
	if len(docs) == 0 {
		return nil, &ChatError{Kind: domain.ErrNotFound, Message: msgNoReferencedDocument}
	}
	return docs, nil
}

// prompt loads a template. The file prompt store falls back to its
// built-in defaults, so an error here means the name is unknown.
func (s *ChatService) prompt(name string) string {
	if s.prompts == nil {
		return ""
	}
	p, err := s.prompts.Load(name)
	if err != nil {
		logger.Warn("load prompt %s: %v", name, err)
		return ""
	}
	return p
}

// userError maps an LLM failure to a generic message.
func userError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logger.Debug("llm error: %v", err)

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &ChatError{Kind: domain.ErrInvalidCredentials, Message: msgKeyInvalid}
	case errors.Is(err, domain.ErrRateLimited):
		return &ChatError{Kind: domain.ErrRateLimited, Message: msgRateLimited}
	case errors.Is(err, domain.ErrServiceUnavailable):
		return &ChatError{Kind: domain.ErrServiceUnavailable, Message: msgServiceUnavailable}
	default:
		return &ChatError{Kind: domain.ErrServiceUnavailable, Message: msgGeneric}
	}
}

// ParseSources returns the 1-based context numbers listed in the
// [SOURCES: ...] tag. "aucune" or "none" yields no numbers.
func ParseSources(text string) []int {
	m := sourcesTag.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	list := strings.TrimSpace(m[1])
	if strings.EqualFold(list, "aucune") || strings.EqualFold(list, "none") {
		return nil
	}

	var ids []int
	for _, part := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, n)
	}
	return ids
}

// StripSources removes every [SOURCES: ...] tag and trims the text.
func StripSources(text string) string {
	return strings.TrimSpace(sourcesStrip.ReplaceAllString(text, ""))
}

// corpusLine describes the corpus size, and how many documents follow
// when shown > 0.
func corpusLine(total, shown int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INFORMATION CORPUS : L'utilisateur possède %d sermon%s au total dans sa bibliothèque.",
		total, plural(total))
	if shown > 0 {
		fmt.Fprintf(&b, " Les %d sermons ci-dessous sont les plus pertinents pour la question posée.", shown)
	}
	b.WriteString("\n\n")
	return b.String()
}

// searchContext formats retrieved documents as numbered blocks with
// truncated content. It is empty when there are no documents.
func searchContext(docs []domain.Document) string {
	if len(docs) == 0 {
		return ""
	}
	blocks := make([]string, len(docs))
	for i, doc := range docs {
		content := doc.Content
		if utf8.RuneCountInString(content) > domain.DefaultContextContentLength {
			content = truncateRunes(content, domain.DefaultContextContentLength) + "..."
		}
		blocks[i] = sermonBlock(fmt.Sprintf(`sermon id="%d"`, i+1), "sermon", doc, content)
	}
	return "CONTEXTE - Sermons pertinents de l'utilisateur :\n\n" + strings.Join(blocks, "\n") + "\n\n"
}

// referencedContext formats user-selected documents with full content.
func referencedContext(docs []domain.Document) string {
	blocks := make([]string, len(docs))
	for i, doc := range docs {
		blocks[i] = sermonBlock("sermon_reference", "sermon_reference", doc, doc.Content)
	}
	return strings.Join(blocks, "\n")
}

func sermonBlock(open, closeTag string, doc domain.Document, content string) string {
	var b strings.Builder
	b.WriteString("---\n<" + open + ">\n")
	b.WriteString("<titre>" + doc.Title + "</titre>\n")
	if doc.Date != "" {
		b.WriteString("<date>" + doc.Date + "</date>\n")
	}
	if doc.Reference != "" {
		b.WriteString("<reference>" + doc.Reference + "</reference>\n")
	}
	b.WriteString("<contenu>\n" + content + "\n</contenu>\n")
	b.WriteString("</" + closeTag + ">\n---")
	return b.String()
}

func chatSource(doc domain.Document, n int) domain.ChatSource {
	return domain.ChatSource{
		ID:      doc.ID,
		Title:   doc.Title,
		Snippet: truncateRunes(doc.Content, n) + "...",
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
