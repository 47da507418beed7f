package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashpool/techplan/internal/planner"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the filtered, sorted node list",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		if err := restoreBacklog(cmd.Context(), e); err != nil {
			return err
		}

		filters := planner.DefaultListFilters()
		if categories, _ := cmd.Flags().GetStringSlice("category"); len(categories) > 0 {
			filters.Categories = make(map[string]bool, len(categories))
			for _, category := range categories {
				filters.Categories[category] = true
			}
		}
		if hideCompleted, _ := cmd.Flags().GetBool("hide-completed"); hideCompleted {
			filters.IncludeCompleted = false
		}
		filters.BacklogOnly, _ = cmd.Flags().GetBool("backlog")
		filters.Search, _ = cmd.Flags().GetString("search")

		mode := e.sess.SortMode
		if sortFlag, _ := cmd.Flags().GetString("sort"); sortFlag != "" {
			switch strings.ToLower(sortFlag) {
			case "cost":
				mode = planner.SortByCostDesc
			case "name":
				mode = planner.SortByName
			default:
				return fmt.Errorf("unknown sort mode %q (want name or cost)", sortFlag)
			}
		}

		view := planner.BuildListView(
			e.sess.FlatList(), filters, e.sess.Completed, e.sess.Backlog.Members(), mode)
		fmt.Print(e.renderer.ListView(e.sess.FlatList(), view, e.sess.Completed, e.sess.Backlog))
		return nil
	},
}

// restoreBacklog loads persisted backlog and completed state for the
// configured profile into the session. A missing or undecodable payload is
// treated as absent; identifiers unknown to the current dataset are dropped
// and reported.
func restoreBacklog(ctx context.Context, e *env) error {
	st, err := openStore(ctx, e)
	if err != nil {
		return err
	}
	defer st.Close()

	raw, ok, err := st.LoadBacklog(ctx, e.cfg.Profile)
	if err != nil {
		return err
	}
	if ok {
		if decoded, valid := planner.DecodeBacklog(raw, e.sess.Graph()); valid {
			e.sess.Backlog = decoded.Backlog
			for _, id := range decoded.Dropped {
				fmt.Fprintf(os.Stderr, "warning: dropping unknown backlog id %s\n", id)
			}
		}
	}

	completedIDs, err := st.LoadCompleted(ctx, e.cfg.Profile)
	if err != nil {
		return err
	}
	for _, idx := range planner.IndicesForIDs(completedIDs, e.sess.Graph()) {
		e.sess.Completed[idx] = true
	}
	return nil
}

func init() {
	listCmd.Flags().StringSlice("category", nil, "only show these categories")
	listCmd.Flags().Bool("hide-completed", false, "hide completed nodes")
	listCmd.Flags().Bool("backlog", false, "only show backlog members")
	listCmd.Flags().String("search", "", "substring match on friendly name")
	listCmd.Flags().String("sort", "", "sort mode: name or cost")
	rootCmd.AddCommand(listCmd)
}
