package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/adapters/driven/ai"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-index the current project on file changes",
	Long: `Watches the current project's directory and re-runs the indexer
after each burst of file changes. Uses the same flags as 'quarry index'.
Press Ctrl-C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&indexSummaries, "summaries", false, "generate LLM summaries")
	watchCmd.Flags().BoolVar(&indexKeywords, "keywords", false, "extract LLM keywords")
	watchCmd.Flags().StringSliceVar(&indexInclude, "include", nil, "include glob patterns")
	watchCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "exclude glob patterns")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	project, err := projectManager.Current(ctx)
	if err != nil {
		return err
	}

	var llm driven.LLMService
	if indexSummaries || indexKeywords {
		settings := ai.SettingsFromConfig(configStore)
		llm, err = ai.CreateAndValidateLLMService(&settings, promptStore)
		if err != nil {
			return err
		}
		if llm != nil {
			defer llm.Close()
		}
	}

	indexer := services.NewBlockIndexer(projectManager, fileWalker, parserRegistry, fallbackParser, llm, stateStore)
	watcher := services.NewWatcher(projectManager, indexer)

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", project.Path)
	err = watcher.Watch(ctx, project.ID, driving.IndexOptions{
		WithSummaries:   indexSummaries,
		ExtractKeywords: indexKeywords,
		Include:         indexInclude,
		Exclude:         indexExclude,
		Verbose:         verbose,
	})
	if ctx.Err() != nil {
		cmd.Println("Stopped.")
		return nil
	}
	return err
}
