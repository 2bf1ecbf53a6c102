package cli

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index [folder]",
	Short: "Index a sermon folder",
	Long: `Scans the folder recursively and indexes every supported file.
Unchanged files are skipped by content hash; documents whose file has
disappeared are removed. Without an argument the configured corpus folder
is used. The folder is remembered for later runs.

Interrupting the command (Ctrl+C) cancels the run between files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "re-extract every file even when unchanged")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexer == nil {
		return errors.New("indexer not configured")
	}

	folder, err := resolveFolder(cmd, args)
	if err != nil {
		return err
	}

	progress := make(chan domain.IndexingProgress, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printProgress(cmd, progress)
	}()

	cmd.Printf("Indexing %s...\n", folder)
	result, err := indexer.IndexFolder(cmd.Context(), folder, driving.IndexOptions{
		Force:    indexForce,
		Progress: progress,
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if settingsService != nil && !result.Cancelled {
		if err := settingsService.SetCorpusFolder(cmd.Context(), folder); err != nil {
			cmd.PrintErrf("Warning: could not remember the corpus folder: %v\n", err)
		}
	}

	printIndexingResult(cmd, result)
	return nil
}

// resolveFolder returns the folder argument, or the configured corpus folder.
func resolveFolder(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if settingsService == nil {
		return "", errors.New("no folder given and settings service not configured")
	}
	folder, err := settingsService.CorpusFolder(cmd.Context())
	if errors.Is(err, domain.ErrFolderNotConfigured) {
		return "", errors.New("no folder given and no corpus folder configured")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read corpus folder: %w", err)
	}
	return folder, nil
}

func printProgress(cmd *cobra.Command, progress <-chan domain.IndexingProgress) {
	for p := range progress {
		if verbose {
			cmd.Printf("  [%d/%d] %s\n", p.Current, p.Total, p.CurrentFile)
		}
	}
}

func printIndexingResult(cmd *cobra.Command, result *domain.IndexingResult) {
	if result.Cancelled {
		cmd.Println("Indexing cancelled.")
	} else {
		cmd.Println("Indexing complete.")
	}
	cmd.Printf("  Added:     %d\n", result.Added)
	cmd.Printf("  Updated:   %d\n", result.Updated)
	cmd.Printf("  Removed:   %d\n", result.Removed)
	cmd.Printf("  Unchanged: %d\n", result.Unchanged)

	if len(result.Errors) > 0 {
		cmd.Printf("\n%d file(s) could not be indexed:\n", len(result.Errors))
		for _, e := range result.Errors {
			cmd.Printf("  %s\n", e)
		}
	}
}
