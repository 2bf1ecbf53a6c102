package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, view, or delete indexed sermons, and show corpus statistics.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentRecent,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document from the index",
	Long: `Removes a document and its embedding from the index. The file on disk
is not touched; it is indexed again on the next run unless it is moved out
of the corpus folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentDelete,
}

var documentStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runDocumentStats,
}

var (
	documentOutput      string
	documentRecentLimit int
	documentShowContent bool
)

func init() {
	documentCmd.PersistentFlags().StringVarP(&documentOutput, "output", "o", outputText, "output format: text, json, yaml")
	documentRecentCmd.Flags().IntVarP(&documentRecentLimit, "limit", "n", 10, "number of documents")
	documentGetCmd.Flags().BoolVarP(&documentShowContent, "content", "c", false, "print the full content")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentRecentCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentStatsCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if err := validateOutput(documentOutput); err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	return outputDocuments(cmd, docs)
}

func runDocumentRecent(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if err := validateOutput(documentOutput); err != nil {
		return err
	}

	docs, err := documentService.Recent(cmd.Context(), documentRecentLimit)
	if err != nil {
		return fmt.Errorf("failed to list recent documents: %w", err)
	}
	return outputDocuments(cmd, docs)
}

func outputDocuments(cmd *cobra.Command, docs []domain.Document) error {
	if documentOutput != outputText {
		return printStructured(cmd, documentOutput, documentViews(docs))
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}
	for i := range docs {
		printDocumentLine(cmd, &docs[i])
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if err := validateOutput(documentOutput); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("document %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentOutput != outputText {
		return printStructured(cmd, documentOutput, newDocumentView(doc, documentShowContent))
	}

	cmd.Printf("Document: %d\n\n", doc.ID)
	cmd.Printf("  Title:     %s\n", doc.Title)
	cmd.Printf("  Path:      %s\n", doc.Path)
	if doc.Date != "" {
		cmd.Printf("  Date:      %s\n", doc.Date)
	}
	if doc.Reference != "" {
		cmd.Printf("  Reference: %s\n", doc.Reference)
	}
	cmd.Printf("  Words:     %d\n", doc.WordCount)
	cmd.Printf("  Indexed:   %s\n", doc.IndexedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:   %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	if documentShowContent {
		cmd.Println()
		cmd.Println(doc.Content)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %d not found", id)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %d removed from the index.\n", id)
	return nil
}

// statsView is the structured output of document stats.
type statsView struct {
	Documents    int    `json:"documents" yaml:"documents"`
	Words        int    `json:"words" yaml:"words"`
	EarliestDate string `json:"earliest_date,omitempty" yaml:"earliest_date,omitempty"`
	LatestDate   string `json:"latest_date,omitempty" yaml:"latest_date,omitempty"`
}

func runDocumentStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if err := validateOutput(documentOutput); err != nil {
		return err
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if documentOutput != outputText {
		return printStructured(cmd, documentOutput, statsView{
			Documents:    stats.Documents,
			Words:        stats.Words,
			EarliestDate: stats.EarliestDate,
			LatestDate:   stats.LatestDate,
		})
	}

	cmd.Println("Corpus")
	cmd.Printf("  Documents: %d\n", stats.Documents)
	cmd.Printf("  Words:     %d\n", stats.Words)
	if stats.EarliestDate != "" {
		cmd.Printf("  Dates:     %s to %s\n", stats.EarliestDate, stats.LatestDate)
	}
	return nil
}
