package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var projectName string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage registered projects",
}

var projectInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Register a project directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		project, err := projectManager.Init(cmd.Context(), path, projectName)
		if err != nil {
			return fmt.Errorf("init project: %w", err)
		}

		cmd.Printf("Registered project %q (%s)\n", project.Name, project.ID)
		cmd.Printf("  Path: %s\n", project.Path)
		cmd.Println("Run 'quarry index' to build the block index.")
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		projects, err := projectManager.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			cmd.Println("No projects registered. Run 'quarry project init <path>' first.")
			return nil
		}

		current, _ := projectManager.Current(cmd.Context())

		for _, p := range projects {
			marker := " "
			if current != nil && current.ID == p.ID {
				marker = "*"
			}
			status := "not indexed"
			if p.Indexed {
				status = fmt.Sprintf("indexed %s", p.LastIndexed.Format("2006-01-02 15:04"))
				if p.HasSummaries {
					status += ", with summaries"
				}
			}
			cmd.Printf("%s %s  %s\n", marker, p.Name, p.ID)
			cmd.Printf("    %s (%s)\n", p.Path, status)
		}
		return nil
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use [id]",
	Short: "Select the current project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := projectManager.Use(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Current project set to %s\n", args[0])
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a project and its indexes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := projectManager.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Removed project %s\n", args[0])
		return nil
	},
}

func init() {
	projectInitCmd.Flags().StringVar(&projectName, "name", "", "display name (defaults to the directory name)")
	projectCmd.AddCommand(projectInitCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUseCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	rootCmd.AddCommand(projectCmd)
}
