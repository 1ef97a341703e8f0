package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/adapters/driven/ai"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration",
	Long: `Configuration lives in ~/.quarry/config.toml. Keys use dot notation,
e.g. 'llm.provider' or 'storage.backend'.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		val, ok := configStore.Get(args[0])
		if !ok {
			return fmt.Errorf("key %q is not set", args[0])
		}
		cmd.Printf("%v\n", val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
		cmd.Printf("Set %s\n", key)

		// Changing LLM settings gets an immediate connectivity check so
		// bad credentials surface here, not mid-index.
		if key == "llm.provider" || key == "llm.api_key" || key == "llm.base_url" || key == "llm.model" {
			settings := ai.SettingsFromConfig(configStore)
			if err := ai.ValidateLLMConfig(&settings); err != nil {
				cmd.Printf("Warning: provider validation failed: %v\n", err)
			} else if settings.IsConfigured() {
				cmd.Println("LLM provider validated.")
			}
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.Println(configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
