// Package cli provides the sermonindex command line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// version is set by SetVersion from the build.
var version = "dev"

// Services used by the commands. Nil services make their commands fail
// with a "not configured" error.
var (
	indexer          driving.Indexer
	watcher          driving.Watcher
	searchService    driving.SearchService
	documentService  driving.DocumentService
	embeddingIndexer driving.EmbeddingIndexer
	chatService      driving.ChatService
	settingsService  driving.SettingsService
)

var verbose bool

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var rootCmd = &cobra.Command{
	Use:   "sermonindex",
	Short: "Index and search a personal sermon corpus",
	Long: `sermonindex keeps a folder of sermons (.txt, .md, .docx, .odt, .pdf)
indexed in a local database and searches it by keyword, by meaning,
or by scripture reference.

Semantic search needs an embedding backend (Ollama by default).
Chat and summaries need an Anthropic API key: see 'sermonindex key set'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
}

// Services groups the driving ports the commands use.
type Services struct {
	Indexer    driving.Indexer
	Watcher    driving.Watcher
	Search     driving.SearchService
	Documents  driving.DocumentService
	Embeddings driving.EmbeddingIndexer
	Chat       driving.ChatService
	Settings   driving.SettingsService
}

// SetServices installs the services for the commands.
func SetServices(s Services) {
	indexer = s.Indexer
	watcher = s.Watcher
	searchService = s.Search
	documentService = s.Documents
	embeddingIndexer = s.Embeddings
	chatService = s.Chat
	settingsService = s.Settings
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Cancelling ctx cancels long-running
// commands such as index and watch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// parseID parses a document id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid document id %q", domain.ErrInvalidInput, arg)
	}
	return id, nil
}

// validateOutput checks an --output value.
func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("%w: unknown output format %q (text, json, yaml)", domain.ErrInvalidInput, format)
	}
}

// printStructured writes v as JSON or YAML.
func printStructured(cmd *cobra.Command, format string, v any) error {
	var (
		data []byte
		err  error
	)
	if format == outputYAML {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Print(string(data))
	if format == outputJSON {
		cmd.Println()
	}
	return nil
}

// documentView is the structured output form of a document.
type documentView struct {
	ID        int64  `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Path      string `json:"path" yaml:"path"`
	Date      string `json:"date,omitempty" yaml:"date,omitempty"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	WordCount int    `json:"word_count" yaml:"word_count"`
	IndexedAt string `json:"indexed_at,omitempty" yaml:"indexed_at,omitempty"`
	Content   string `json:"content,omitempty" yaml:"content,omitempty"`
}

func newDocumentView(doc *domain.Document, withContent bool) documentView {
	v := documentView{
		ID:        doc.ID,
		Title:     doc.Title,
		Path:      doc.Path,
		Date:      doc.Date,
		Reference: doc.Reference,
		WordCount: doc.WordCount,
	}
	if !doc.IndexedAt.IsZero() {
		v.IndexedAt = doc.IndexedAt.Format("2006-01-02 15:04:05")
	}
	if withContent {
		v.Content = doc.Content
	}
	return v
}

func documentViews(docs []domain.Document) []documentView {
	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = newDocumentView(&docs[i], false)
	}
	return views
}

// printDocumentLine prints the one-line summary used by list commands.
func printDocumentLine(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("  [%d] %s\n", doc.ID, doc.Title)
	if doc.Date != "" || doc.Reference != "" {
		cmd.Printf("      %s\n", joinNonEmpty(doc.Date, doc.Reference))
	}
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " · "
		}
		out += p
	}
	return out
}
