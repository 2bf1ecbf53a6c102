package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// Files are only created on first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// They are written out as the initial content of missing files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: `Tu es un assistant pour pasteurs protestants francophones. Tu aides à rechercher, analyser et exploiter leurs archives de sermons.

%s%sINSTRUCTIONS :
1. Base tes réponses prioritairement sur les sermons fournis quand c'est pertinent
2. Cite le titre du sermon quand tu t'en inspires (entre guillemets)
3. Si l'information n'est pas dans les sermons, indique-le clairement
4. Réponds en français, de manière pastorale et bienveillante
5. Sois concis mais complet
6. Pour les résumés, utilise des puces structurées
7. Pour les recherches, liste les sermons pertinents avec leurs dates
8. Pour les suggestions de préparation, propose des pistes concrètes
9. IMPORTANT: À la fin de ta réponse, indique les sermons que tu as utilisés avec le format exact: [SOURCES: 1, 3, 5] (liste les IDs des sermons cités ou utilisés, séparés par des virgules). Si tu n'as utilisé aucun sermon, écris [SOURCES: aucune]

Tu es là pour aider, pas pour remplacer la réflexion théologique du pasteur.`,

	driven.PromptChatReferenced: `Tu es un assistant pour pasteurs protestants francophones. Tu aides à rechercher, analyser et exploiter leurs archives de sermons.

%sSERMONS SÉLECTIONNÉS PAR L'UTILISATEUR (contenu intégral) :

%s

INSTRUCTIONS :
1. L'utilisateur a explicitement sélectionné les sermons ci-dessus
2. Tu dois te baser UNIQUEMENT sur ces sermons pour ta réponse
3. Tu as accès à leur contenu INTÉGRAL
4. Cite le titre du sermon quand tu t'en inspires (entre guillemets)
5. Réponds en français, de manière pastorale et bienveillante
6. Sois complet et détaillé puisque tu as le contenu intégral
7. Pour les résumés, utilise des puces structurées
8. Pour les analyses, explore en profondeur le contenu fourni

Tu es là pour aider, pas pour remplacer la réflexion théologique du pasteur.`,

	driven.PromptSummarise: `Tu es un assistant pour pasteurs. Résume les sermons de manière concise et structurée en français.`,

	driven.PromptSummariseRequest: `Résume ce sermon intitulé "%s" en 3-5 points clés :

%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.sermonindex/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".sermonindex", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name. A missing or
// unreadable file falls back to the built-in default; only names without
// a default can fail.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if fallback, known := defaultPrompts[name]; known {
			return fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(err, s.initErr))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
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

// initialise creates the prompt directory and any missing default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# sermonindex prompts\n\n")
	b.WriteString("These files are the prompts sent to the language model by `sermonindex chat`\n")
	b.WriteString("and `sermonindex summarise`. Edit them freely; a deleted file falls back to\n")
	b.WriteString("the built-in default.\n\n## Files\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- `%s.txt`\n", name)
	}
	b.WriteString("\n## Placeholders\n\n")
	b.WriteString("`chat_system` and `chat_referenced` take two `%s`: the corpus summary line,\n")
	b.WriteString("then the sermon context. `summarise_request` takes the title, then the content.\n")
	b.WriteString("Keep the placeholders in place when customising.\n")

	return os.WriteFile(path, []byte(b.String()), 0600)
}
