package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashpool/techplan/internal/explorer"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Explore the dependency graph around a node",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		if err := restoreBacklog(cmd.Context(), e); err != nil {
			return err
		}

		selected := explorer.NoSelection
		if selectID, _ := cmd.Flags().GetString("select"); selectID != "" {
			idx, ok := e.sess.Graph().IDToIndex[selectID]
			if !ok {
				return fmt.Errorf("unknown node id %q", selectID)
			}
			selected = idx
		}

		filters := explorer.DefaultFilters()
		filters.HideFiltered, _ = cmd.Flags().GetBool("hide-filtered")
		filters.BacklogOnly, _ = cmd.Flags().GetBool("backlog")
		if hideCompleted, _ := cmd.Flags().GetBool("hide-completed"); hideCompleted {
			filters.IncludeCompleted = false
		}

		view := e.sess.Explorer().BuildView(
			selected, e.sess.Completed, e.sess.Backlog.Order(), filters)
		fmt.Print(e.renderer.ExplorerView(view))
		return nil
	},
}

func init() {
	graphCmd.Flags().String("select", "", "node id to focus")
	graphCmd.Flags().Bool("hide-filtered", false, "hide filtered nodes instead of dimming")
	graphCmd.Flags().Bool("hide-completed", false, "hide completed nodes")
	graphCmd.Flags().Bool("backlog", false, "only show backlog members")
	rootCmd.AddCommand(graphCmd)
}
