package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/core/services"
)

var (
	searchJSON   bool
	searchLegacy bool
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the current project's index",
	Long: `Scores every indexed block against the query and prints ranked
per-document result bundles: the matching blocks plus their enclosing
declarations and neighbours. --legacy switches to the older whole-file
search.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchLegacy, "legacy", false, "use the whole-file search")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of documents")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchLegacy {
		return runFlatSearch(cmd, query)
	}

	engine := services.NewBlockSearch(projectManager, stateStore)
	results, err := engine.SearchBlocks(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, res := range results {
		cmd.Printf("[%d] %s (%.2f)\n", i+1, res.Document, res.Score)
		for _, b := range res.Blocks {
			label := string(b.Type)
			if b.Title != "" {
				label = b.Title
			}
			cmd.Printf("    %s (lines %d-%d)\n", label, b.StartLine, b.EndLine)
			if b.Summary != "" {
				cmd.Printf("      %s\n", b.Summary)
			}
		}
		cmd.Println()
	}
	return nil
}

func runFlatSearch(cmd *cobra.Command, query string) error {
	engine := services.NewFlatSearch(projectManager, stateStore)
	results, err := engine.SearchFiles(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, res := range results {
		marker := ""
		if res.Similar {
			marker = " (similar)"
		}
		cmd.Printf("[%d] %s (%.2f)%s\n", i+1, res.Record.Path, res.Score, marker)
		if res.Record.Summary != "" {
			cmd.Printf("    %s\n", res.Record.Summary)
		}
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
