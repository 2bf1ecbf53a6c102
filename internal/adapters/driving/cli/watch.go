package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Index a folder and keep it indexed",
	Long: `Runs a full index of the folder, then watches it and re-indexes files
as they are created, modified, renamed or deleted. Without an argument the
configured corpus folder is watched.

The command runs until interrupted (Ctrl+C).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watcher == nil {
		return errors.New("watcher not configured")
	}
	ctx := cmd.Context()

	var (
		result *domain.IndexingResult
		err    error
	)
	if len(args) > 0 {
		cmd.Printf("Indexing %s...\n", args[0])
		result, err = watcher.Start(ctx, args[0], driving.IndexOptions{})
	} else {
		cmd.Println("Indexing the corpus folder...")
		result, err = watcher.Resume(ctx, driving.IndexOptions{})
	}
	if errors.Is(err, domain.ErrFolderNotConfigured) {
		return errors.New("no folder given and no corpus folder configured")
	}
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	printIndexingResult(cmd, result)
	if !watcher.Running() {
		return nil
	}

	cmd.Printf("\nWatching %s (Ctrl+C to stop)...\n", watcher.Folder())
	select {
	case <-ctx.Done():
	case <-watcher.Done():
	}

	if err := watcher.Stop(); err != nil && !errors.Is(err, domain.ErrWatcherNotRunning) {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	cmd.Println("Stopped watching.")
	return nil
}
