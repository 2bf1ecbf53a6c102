package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Anthropic API key",
	Long: `Stores, checks or removes the API key used by chat and summaries.
The ANTHROPIC_API_KEY environment variable takes precedence over the stored key.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [api-key]",
	Short: "Test and store an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeySet,
}

var keyTestCmd = &cobra.Command{
	Use:   "test [api-key]",
	Short: "Check an API key without storing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyTest,
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyDelete,
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is configured",
	Args:  cobra.NoArgs,
	RunE:  runKeyStatus,
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyTestCmd)
	keyCmd.AddCommand(keyDeleteCmd)
	keyCmd.AddCommand(keyStatusCmd)
	rootCmd.AddCommand(keyCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := chatService.SaveKey(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	cmd.Printf("API key saved (%s).\n", maskAPIKey(args[0]))
	return nil
}

func runKeyTest(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := chatService.TestKey(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("key test failed: %w", err)
	}
	cmd.Println("API key is valid.")
	return nil
}

func runKeyDelete(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := chatService.DeleteKey(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	cmd.Println("API key removed.")
	return nil
}

func runKeyStatus(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if chatService.HasKey() {
		cmd.Println("API key: configured")
	} else {
		cmd.Println("API key: (not set)")
	}
	return nil
}

// maskAPIKey masks an API key for display, showing only first/last 4 chars.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
