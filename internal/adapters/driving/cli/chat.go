package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

var chatDocs []int64

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask a question about your sermons",
	Long: `Retrieves the most relevant sermons and asks the language model to
answer from them. The sermons the answer relies on are listed after it.

With --doc the given documents are used in full instead of searching.
Requires an Anthropic API key: see 'sermonindex key set'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var summariseCmd = &cobra.Command{
	Use:     "summarise [doc-id]",
	Aliases: []string{"summarize"},
	Short:   "Summarise one sermon",
	Args:    cobra.ExactArgs(1),
	RunE:    runSummarise,
}

func init() {
	chatCmd.Flags().Int64SliceVarP(&chatDocs, "doc", "d", nil, "answer from these document ids only")
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(summariseCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	resp, err := chatService.Ask(cmd.Context(), domain.ChatRequest{
		Message:               strings.Join(args, " "),
		ReferencedDocumentIDs: chatDocs,
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(resp.Response)
	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range resp.Sources {
			cmd.Printf("  [%d] %s\n", s.ID, s.Title)
		}
	}
	if verbose {
		cmd.Printf("\n(%d tokens)\n", resp.TokensUsed)
	}
	return nil
}

func runSummarise(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	summary, err := chatService.Summarise(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}
	cmd.Println(summary)
	return nil
}
