package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

var (
	searchMode   string
	searchLimit  int
	searchOutput string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed sermons",
	Long: `Searches the corpus. Modes:
  hybrid    - keyword (BM25) and semantic results fused by rank (default)
  text      - keyword search only
  semantic  - embedding similarity only (requires an embedding backend)
  reference - match the scripture reference field, e.g. "Jean 3"

Without an embedding backend hybrid search returns keyword matches only.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", string(domain.SearchModeHybrid), "search mode: hybrid, text, semantic, reference")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 uses the mode default)")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", outputText, "output format: text, json, yaml")
	rootCmd.AddCommand(searchCmd)
}

// searchResultView is one search result in structured output.
type searchResultView struct {
	Rank      int     `json:"rank" yaml:"rank"`
	ID        int64   `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Path      string  `json:"path" yaml:"path"`
	Date      string  `json:"date,omitempty" yaml:"date,omitempty"`
	Reference string  `json:"reference,omitempty" yaml:"reference,omitempty"`
	Score     float64 `json:"score" yaml:"score"`
	Match     string  `json:"match,omitempty" yaml:"match,omitempty"`
	Snippet   string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	mode := domain.SearchMode(strings.ToLower(searchMode))
	if !mode.IsValid() {
		return fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, searchMode)
	}
	if err := validateOutput(searchOutput); err != nil {
		return err
	}

	results, err := search(cmd, mode, args[0])
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return errors.New("semantic search needs an embedding backend: check 'sermonindex config get embedding.provider'")
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchOutput != outputText {
		return printStructured(cmd, searchOutput, results)
	}
	return outputSearchTable(cmd, results)
}

// search runs one query in mode and flattens the hits.
func search(cmd *cobra.Command, mode domain.SearchMode, query string) ([]searchResultView, error) {
	ctx := cmd.Context()
	results := []searchResultView{}

	switch mode {
	case domain.SearchModeText:
		hits, err := searchService.FullText(ctx, query, searchLimit)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			r := resultView(i, &hits[i].Document, hits[i].Rank)
			r.Snippet = hits[i].Snippet
			results = append(results, r)
		}

	case domain.SearchModeSemantic:
		hits, err := searchService.Semantic(ctx, query, searchLimit)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			results = append(results, resultView(i, &hits[i].Document, hits[i].Similarity()))
		}

	case domain.SearchModeReference:
		docs, err := searchService.ByReference(ctx, query)
		if err != nil {
			return nil, err
		}
		for i := range docs {
			if searchLimit > 0 && i == searchLimit {
				break
			}
			results = append(results, resultView(i, &docs[i], 0))
		}

	default:
		hits, err := searchService.Hybrid(ctx, query, searchLimit)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			r := resultView(i, &hits[i].Document, hits[i].Score)
			r.Match = string(hits[i].MatchType)
			r.Snippet = hits[i].Snippet
			results = append(results, r)
		}
	}
	return results, nil
}

func resultView(i int, doc *domain.Document, score float64) searchResultView {
	return searchResultView{
		Rank:      i + 1,
		ID:        doc.ID,
		Title:     doc.Title,
		Path:      doc.Path,
		Date:      doc.Date,
		Reference: doc.Reference,
		Score:     score,
	}
}

func outputSearchTable(cmd *cobra.Command, results []searchResultView) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		// Format: [rank] Title (#id, match)
		label := fmt.Sprintf("#%d", r.ID)
		if r.Match != "" {
			label += ", " + r.Match
		}
		cmd.Printf("  [%d] %s (%s)\n", r.Rank, r.Title, label)
		if meta := joinNonEmpty(r.Date, r.Reference); meta != "" {
			cmd.Printf("      %s\n", meta)
		}
		if r.Snippet != "" {
			cmd.Printf("      %s\n", plainSnippet(r.Snippet))
		}
		cmd.Println()
	}
	return nil
}

// plainSnippet replaces the match markers with terminal-friendly brackets.
func plainSnippet(s string) string {
	return strings.NewReplacer("<mark>", "[", "</mark>", "]", "\n", " ").Replace(s)
}
