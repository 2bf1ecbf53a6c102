package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the settings in the configuration file.

Keys use dot notation, e.g. embedding.provider or search.locale.
Changes apply the next time a command starts.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration keys and values",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a value so that its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		value, ok := settingsService.Value(key)
		if !ok {
			value = "(default)"
		}
		cmd.Printf("  %-30s %s\n", key, displayValue(key, value, ok))
	}

	if folder, err := settingsService.CorpusFolder(cmd.Context()); err == nil {
		cmd.Printf("\n  Corpus folder: %s\n", folder)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := args[0]
	if !knownKey(key) {
		return fmt.Errorf("unknown configuration key %q", key)
	}

	value, ok := settingsService.Value(key)
	if !ok {
		cmd.Println("(default)")
		return nil
	}
	cmd.Println(displayValue(key, value, ok))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s updated.\n", args[0])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("%s reset to default.\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.ConfigPath())
	return nil
}

func knownKey(key string) bool {
	for _, k := range settingsService.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// displayValue masks secrets.
func displayValue(key, value string, set bool) string {
	if set && key == "embedding.api_key" {
		return maskAPIKey(value)
	}
	return value
}
