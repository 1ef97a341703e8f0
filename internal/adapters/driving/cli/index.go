package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quarry-dev/quarry/internal/adapters/driven/ai"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/core/services"
)

var (
	indexSummaries bool
	indexKeywords  bool
	indexInclude   []string
	indexExclude   []string
	indexParallel  int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the block index for the current project",
	Long: `Parses every indexable file of the current project into blocks and
persists the result. With --summaries, each file and the whole project
are summarised by the configured LLM provider; with --keywords, an
inverted keyword index is built as well.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexSummaries, "summaries", false, "generate LLM summaries")
	indexCmd.Flags().BoolVar(&indexKeywords, "keywords", false, "extract LLM keywords")
	indexCmd.Flags().StringSliceVar(&indexInclude, "include", nil, "include glob patterns")
	indexCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "exclude glob patterns")
	indexCmd.Flags().IntVar(&indexParallel, "parallel", 0, "concurrent file batch size")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

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
		if llm == nil {
			return fmt.Errorf("no LLM provider configured; set llm.provider via 'quarry config set'")
		}
		defer llm.Close()
		cmd.Printf("Using %s for summaries\n", llm.ModelName())
	}

	indexer := services.NewBlockIndexer(projectManager, fileWalker, parserRegistry, fallbackParser, llm, stateStore)

	var bar *progressbar.ProgressBar
	if term.IsTerminal(int(os.Stderr.Fd())) && !verbose {
		indexer.SetProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("indexing"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
					progressbar.OptionShowCount(),
				)
			}
			_ = bar.Set(done)
		})
	}

	stats, err := indexer.IndexProject(ctx, project.ID, driving.IndexOptions{
		WithSummaries:   indexSummaries,
		ExtractKeywords: indexKeywords,
		Include:         indexInclude,
		Exclude:         indexExclude,
		MaxParallelism:  indexParallel,
		Verbose:         verbose,
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	// Keep the legacy flat index in step with the block index.
	flat := services.NewFlatIndexer(projectManager, fileWalker, stateStore)
	if _, err := flat.IndexProject(ctx, project.ID, indexInclude, indexExclude); err != nil {
		return fmt.Errorf("flat index: %w", err)
	}

	cmd.Printf("Indexed %d files (%d blocks)\n", stats.FilesIndexed, stats.Blocks)
	if stats.FilesSkipped > 0 {
		cmd.Printf("Skipped %d files:\n", stats.FilesSkipped)
		for _, fe := range stats.Errors {
			cmd.Printf("  %s: %s\n", fe.Path, fe.Err)
		}
	}
	if indexSummaries {
		cmd.Printf("Generated %d summaries (cost $%.4f)\n", stats.Summaries, stats.Cost)
	}
	return nil
}
