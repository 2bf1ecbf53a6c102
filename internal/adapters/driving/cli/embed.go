package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed documents that have no embedding",
	Long: `Computes the embedding of every document that does not have one yet,
using the configured embedding backend. Documents whose content changed
since they were embedded are included.`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

var embedStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show embedding coverage",
	Args:  cobra.NoArgs,
	RunE:  runEmbedStats,
}

func init() {
	embedCmd.AddCommand(embedStatsCmd)
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	if embeddingIndexer == nil {
		return errors.New("embedding indexer not configured")
	}

	cmd.Println("Embedding documents...")
	result, err := embeddingIndexer.IndexMissing(cmd.Context())
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return errors.New("no embedding backend available: check 'sermonindex config get embedding.provider'")
	}
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	cmd.Printf("Embedded %d document(s).\n", result.Processed)
	if len(result.Errors) > 0 {
		cmd.Printf("\n%d document(s) failed:\n", len(result.Errors))
		for _, e := range result.Errors {
			cmd.Printf("  %s\n", e)
		}
	}
	return nil
}

func runEmbedStats(cmd *cobra.Command, _ []string) error {
	if embeddingIndexer == nil {
		return errors.New("embedding indexer not configured")
	}

	stats, err := embeddingIndexer.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get embedding stats: %w", err)
	}

	cmd.Printf("Embeddings: %d/%d documents", stats.Indexed, stats.Total)
	if missing := stats.Missing(); missing > 0 {
		cmd.Printf(" (%d missing)", missing)
	}
	cmd.Println()
	return nil
}
