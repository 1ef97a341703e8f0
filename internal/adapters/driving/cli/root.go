// Package cli implements the quarry command-line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/quarry-dev/quarry/internal/adapters/driven/config/file"
	storagefile "github.com/quarry-dev/quarry/internal/adapters/driven/storage/file"
	"github.com/quarry-dev/quarry/internal/adapters/driven/storage/sqlite"
	"github.com/quarry-dev/quarry/internal/adapters/driven/walker"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/services"
	"github.com/quarry-dev/quarry/internal/logger"
	"github.com/quarry-dev/quarry/internal/parsers"
	"github.com/quarry-dev/quarry/internal/parsers/plaintext"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Shared services, wired in initServices.
var (
	configStore    driven.ConfigStore
	promptStore    driven.PromptStore
	stateStore     driven.StateStore
	fileWalker     driven.FileWalker
	parserRegistry driven.ParserRegistry
	fallbackParser driven.Parser
	projectManager *services.ProjectManager
)

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Index and search source code repositories",
	Long: `Quarry parses a project's files into a hierarchy of blocks
(functions, headings, paragraphs), optionally enriches them with LLM
summaries, and answers free-text queries against the index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command. Sentinel errors are translated to user
// guidance here; the core never formats text for humans.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", userMessage(err))
	}
	closeServices()
	return err
}

// initServices wires the driven adapters shared by every command.
func initServices() error {
	if projectManager != nil {
		return nil
	}

	var err error
	configStore, err = configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	promptStore, err = configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	stateStore, err = openStateStore(configStore)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}

	fileWalker = walker.New()
	parserRegistry = parsers.NewRegistry()
	fallbackParser = plaintext.New()
	projectManager = services.NewProjectManager(stateStore)
	return nil
}

// openStateStore selects the state backend from config. The JSON file
// store is the default; "sqlite" switches to the database store.
func openStateStore(cfg driven.ConfigStore) (driven.StateStore, error) {
	switch backend := cfg.GetString("storage.backend"); backend {
	case "", "file":
		return storagefile.NewStateStore("")
	case "sqlite":
		return sqlite.NewStore("")
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func closeServices() {
	if stateStore != nil {
		stateStore.Close()
	}
}

// userMessage maps domain sentinels to actionable guidance.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoProject):
		return "no project selected. Run 'quarry project init <path>' first"
	case errors.Is(err, domain.ErrProjectNotFound):
		return "project not found. Run 'quarry project list' to see registered projects"
	case errors.Is(err, domain.ErrNotIndexed):
		return "project has no block index. Run 'quarry index' first"
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Sprintf("LLM provider unavailable: %v", err)
	default:
		return err.Error()
	}
}
