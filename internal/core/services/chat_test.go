package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sermonindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

type chatFixture struct {
	chat  *ChatService
	llm   *mockLLM
	creds *mockCredentials
	store *memory.CorpusStore
	ids   map[string]int64
}

// newChatFixture stores three sermons; "grâce" matches two of them, the
// first more strongly.
func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	store := memory.NewCorpusStore()
	ids := map[string]int64{}
	for _, d := range []domain.Document{
		{Path: "/c/a.md", Title: "Grâce abondante", Content: "La grâce, la grâce seule.", Date: "2024-03-10", Reference: "Romains 5:20"},
		{Path: "/c/b.md", Title: "Le pardon", Content: "Le pardon procède de la grâce."},
		{Path: "/c/c.md", Title: "La prière", Content: "Priez sans cesse."},
	} {
		id, err := store.InsertDocument(t.Context(), &d)
		require.NoError(t, err)
		ids[d.Title] = id
	}

	llm := &mockLLM{}
	creds := &mockCredentials{key: "sk-ant-test"}
	chat := NewChatService(store, NewSearchService(store, nil), creds, factoryFor(llm), mockPromptStore{}, 0)
	return &chatFixture{chat: chat, llm: llm, creds: creds, store: store, ids: ids}
}

func chatErr(t *testing.T, err error) *ChatError {
	t.Helper()
	var ce *ChatError
	require.True(t, errors.As(err, &ce), "expected ChatError, got %v", err)
	return ce
}

func TestChatService_AskWithRetrievedContext(t *testing.T) {
	f := newChatFixture(t)
	f.llm.completion = &domain.Completion{
		Text:         "La grâce précède le pardon. [SOURCES: 2, 9]",
		InputTokens:  120,
		OutputTokens: 30,
	}
	history := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: "Bonjour"},
		{Role: domain.ChatRoleAssistant, Content: "Bonjour, que voulez-vous savoir ?"},
	}

	resp, err := f.chat.Ask(t.Context(), domain.ChatRequest{Message: "  grâce ", History: history})

	require.NoError(t, err)
	assert.Equal(t, "La grâce précède le pardon.", resp.Response)
	assert.Equal(t, 150, resp.TokensUsed)
	require.Len(t, resp.Sources, 1, "out-of-range numbers are ignored")
	assert.Equal(t, domain.ChatSource{
		ID:      f.ids["Le pardon"],
		Title:   "Le pardon",
		Snippet: "Le pardon procède de la grâce....",
	}, resp.Sources[0])

	assert.True(t, strings.HasPrefix(f.llm.system, "SYSTEM|"))
	assert.Contains(t, f.llm.system, "L'utilisateur possède 3 sermons au total dans sa bibliothèque. "+
		"Les 2 sermons ci-dessous sont les plus pertinents pour la question posée.")
	assert.Contains(t, f.llm.system, "CONTEXTE - Sermons pertinents de l'utilisateur :")
	assert.Contains(t, f.llm.system, "<sermon id=\"1\">\n<titre>Grâce abondante</titre>\n<date>2024-03-10</date>\n<reference>Romains 5:20</reference>")
	assert.Contains(t, f.llm.system, "<sermon id=\"2\">\n<titre>Le pardon</titre>\n<contenu>")
	assert.NotContains(t, f.llm.system, "La prière")

	require.Len(t, f.llm.turns, 3)
	assert.Equal(t, domain.ChatMessage{Role: domain.ChatRoleUser, Content: "grâce"}, f.llm.turns[2])
	assert.Equal(t, domain.DefaultLLMMaxTokens, f.llm.opts.MaxTokens)
}

func TestChatService_AskWithoutMatches(t *testing.T) {
	f := newChatFixture(t)
	f.llm.completion = &domain.Completion{Text: "Je ne sais pas.\n[SOURCES: aucune]"}

	resp, err := f.chat.Ask(t.Context(), domain.ChatRequest{Message: "jardinage"})

	require.NoError(t, err)
	assert.Equal(t, "Je ne sais pas.", resp.Response)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, "SYSTEM|INFORMATION CORPUS : L'utilisateur possède 3 sermons au total dans sa bibliothèque.\n\n|", f.llm.system)
}

func TestChatService_AskWithReferencedDocuments(t *testing.T) {
	f := newChatFixture(t)
	f.llm.completion = &domain.Completion{Text: "Résumé des deux. [SOURCES: 1]"}
	long := strings.Repeat("mot ", 1000)
	id, err := f.store.InsertDocument(t.Context(), &domain.Document{Path: "/c/long.md", Title: "Long", Content: long})
	require.NoError(t, err)

	resp, err := f.chat.Ask(t.Context(), domain.ChatRequest{
		Message:               "Compare",
		ReferencedDocumentIDs: []int64{f.ids["La prière"], 999, id},
	})

	require.NoError(t, err)
	assert.Equal(t, "Résumé des deux.", resp.Response)
	require.Len(t, resp.Sources, 2, "every existing referenced document is a source")
	assert.Equal(t, "La prière", resp.Sources[0].Title)
	assert.Equal(t, "Priez sans cesse....", resp.Sources[0].Snippet)
	assert.Equal(t, strings.Repeat("mot ", 75)+"...", resp.Sources[1].Snippet)

	assert.True(t, strings.HasPrefix(f.llm.system, "REFERENCED|"))
	assert.Contains(t, f.llm.system, "L'utilisateur possède 4 sermons au total dans sa bibliothèque.\n\n|")
	assert.Contains(t, f.llm.system, "---\n<sermon_reference>\n<titre>La prière</titre>\n<contenu>\nPriez sans cesse.\n</contenu>\n</sermon_reference>\n---")
	assert.Contains(t, f.llm.system, long, "referenced documents are not truncated")
}

func TestChatService_AskReferencedNoneExist(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.chat.Ask(t.Context(), domain.ChatRequest{Message: "x", ReferencedDocumentIDs: []int64{998, 999}})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.llm.system, "the LLM is not called")
}

func TestChatService_AskTruncatesContext(t *testing.T) {
	f := newChatFixture(t)
	content := "grâce " + strings.Repeat("x", 3000)
	_, err := f.store.InsertDocument(t.Context(), &domain.Document{Path: "/c/d.md", Title: "Long", Content: content})
	require.NoError(t, err)

	_, err = f.chat.Ask(t.Context(), domain.ChatRequest{Message: "grâce"})

	require.NoError(t, err)
	assert.Contains(t, f.llm.system, truncateRunes(content, domain.DefaultContextContentLength)+"...\n</contenu>")
	assert.NotContains(t, f.llm.system, content)
}

func TestChatService_AskValidation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.ChatRequest
	}{
		{"empty message", domain.ChatRequest{Message: "  "}},
		{"message too long", domain.ChatRequest{Message: strings.Repeat("a", MaxMessageLength+1)}},
		{"history too long", domain.ChatRequest{Message: "x", History: make([]domain.ChatMessage, MaxHistoryLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t)
			_, err := f.chat.Ask(t.Context(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestChatService_AskWithoutKey(t *testing.T) {
	f := newChatFixture(t)
	f.creds.key = ""

	_, err := f.chat.Ask(t.Context(), domain.ChatRequest{Message: "grâce"})

	ce := chatErr(t, err)
	assert.ErrorIs(t, err, domain.ErrCredentialsMissing)
	assert.Equal(t, msgKeyNotConfigured, ce.Error())
}

func TestChatService_CredentialStoreUnavailable(t *testing.T) {
	f := newChatFixture(t)
	f.creds.unavailable = true

	_, err := f.chat.Ask(t.Context(), domain.ChatRequest{Message: "grâce"})

	assert.ErrorIs(t, err, domain.ErrCredentialStoreUnavailable)
	assert.Equal(t, msgStoreUnavailable, err.Error())
	assert.False(t, f.chat.Available())
}

func TestChatService_LLMErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{"invalid key", domain.ErrInvalidCredentials, domain.ErrInvalidCredentials, msgKeyInvalid},
		{"rate limited", domain.ErrRateLimited, domain.ErrRateLimited, msgRateLimited},
		{"overloaded", domain.ErrServiceUnavailable, domain.ErrServiceUnavailable, msgServiceUnavailable},
		{"unknown", errors.New("status 418: raw provider body"), domain.ErrServiceUnavailable, msgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t)
			f.llm.err = tt.err

			_, err := f.chat.Ask(t.Context(), domain.ChatRequest{Message: "grâce"})

			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, err.Error())
			assert.NotContains(t, err.Error(), "raw provider body")
		})
	}
}

func TestChatService_NoLLM(t *testing.T) {
	store := memory.NewCorpusStore()
	chat := NewChatService(store, NewSearchService(store, nil), &mockCredentials{key: "k"}, nil, mockPromptStore{}, 0)

	assert.False(t, chat.Available())
	_, err := chat.Ask(t.Context(), domain.ChatRequest{Message: "x"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = chat.Summarise(t.Context(), 1)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestChatService_Available(t *testing.T) {
	f := newChatFixture(t)
	assert.True(t, f.chat.Available())

	f.creds.key = ""
	assert.False(t, f.chat.Available())
}

func TestChatService_Summarise(t *testing.T) {
	f := newChatFixture(t)
	f.llm.completion = &domain.Completion{Text: "  Un résumé.  "}

	summary, err := f.chat.Summarise(t.Context(), f.ids["Grâce abondante"])

	require.NoError(t, err)
	assert.Equal(t, "Un résumé.", summary)
	assert.Equal(t, "SUMMARISE", f.llm.system)
	assert.Equal(t, domain.DefaultSummaryMaxTokens, f.llm.opts.MaxTokens)
	require.Len(t, f.llm.turns, 1)
	assert.Equal(t, "Titre: Grâce abondante\n\nLa grâce, la grâce seule.", f.llm.turns[0].Content)
}

func TestChatService_SummariseTruncatesContent(t *testing.T) {
	f := newChatFixture(t)
	id, err := f.store.InsertDocument(t.Context(), &domain.Document{
		Path: "/c/long.md", Title: "Long", Content: strings.Repeat("é", 9000),
	})
	require.NoError(t, err)

	_, err = f.chat.Summarise(t.Context(), id)

	require.NoError(t, err)
	assert.Equal(t, "Titre: Long\n\n"+strings.Repeat("é", 8000), f.llm.turns[0].Content)
}

func TestChatService_SummariseErrors(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.chat.Summarise(t.Context(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.llm.err = domain.ErrRateLimited
	_, err = f.chat.Summarise(t.Context(), f.ids["Le pardon"])
	assert.Equal(t, msgRateLimited, err.Error())

	f.creds.key = ""
	_, err = f.chat.Summarise(t.Context(), f.ids["Le pardon"])
	assert.ErrorIs(t, err, domain.ErrCredentialsMissing)
}

func TestChatService_TestKey(t *testing.T) {
	f := newChatFixture(t)

	assert.NoError(t, f.chat.TestKey(t.Context(), "sk-ant-new"))

	f.llm.pingErr = domain.ErrInvalidCredentials
	err := f.chat.TestKey(t.Context(), "sk-ant-bad")
	assert.Equal(t, msgKeyInvalid, err.Error())

	err = f.chat.TestKey(t.Context(), "  ")
	assert.ErrorIs(t, err, domain.ErrCredentialsMissing)
}

func TestParseSources(t *testing.T) {
	tests := []struct {
		text string
		want []int
	}{
		{"Réponse [SOURCES: 1, 3]", []int{1, 3}},
		{"Réponse [sources:2]", []int{2}},
		{"Réponse [SOURCES: aucune]", nil},
		{"Réponse [SOURCES: None]", nil},
		{"Réponse [SOURCES: 1, x, 4]", []int{1, 4}},
		{"Réponse sans balise", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSources(tt.text))
		})
	}
}

func TestStripSources(t *testing.T) {
	assert.Equal(t, "Réponse.", StripSources("Réponse. [SOURCES: 1, 2]"))
	assert.Equal(t, "Ligne un.\nLigne deux.", StripSources("Ligne un.\nLigne deux.\n\n[SOURCES: 1]\n"))
	assert.Equal(t, "Rien", StripSources("  Rien  "))
}

func TestChatService_SaveKey(t *testing.T) {
	f := newChatFixture(t)
	f.creds.key = ""

	require.NoError(t, f.chat.SaveKey(t.Context(), " sk-ant-new "))
	assert.Equal(t, "sk-ant-new", f.creds.key)
	assert.True(t, f.chat.HasKey())

	f.llm.pingErr = domain.ErrInvalidCredentials
	err := f.chat.SaveKey(t.Context(), "sk-ant-bad")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, "sk-ant-new", f.creds.key, "a rejected key is not stored")

	require.NoError(t, f.chat.DeleteKey())
	assert.False(t, f.chat.HasKey())
}

func TestChatService_SaveKeyStoreUnavailable(t *testing.T) {
	f := newChatFixture(t)
	f.creds.unavailable = true

	err := f.chat.SaveKey(t.Context(), "sk-ant-new")

	assert.ErrorIs(t, err, domain.ErrCredentialStoreUnavailable)
	assert.ErrorIs(t, f.chat.DeleteKey(), domain.ErrCredentialStoreUnavailable)
	assert.False(t, f.chat.HasKey())
}
