package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashpool/techplan/internal/planner"
)

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Manage the research backlog",
}

var backlogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the backlog in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBacklog(cmd.Context(), func(ctx context.Context, e *env) error {
			order := e.sess.Backlog.Order()
			if len(order) == 0 {
				fmt.Println("Backlog is empty.")
				return nil
			}
			flat := e.sess.FlatList()
			for pos, idx := range order {
				row := flat.Rows[idx]
				cost := "?"
				if row.HasCost {
					cost = fmt.Sprintf("%d", row.Cost)
				}
				fmt.Printf("%3d. %s (%s, cost %s)\n", pos+1, row.Name, row.NodeID, cost)
			}
			return nil
		}, false)
	},
}

var backlogAddCmd = &cobra.Command{
	Use:   "add <node-id>...",
	Short: "Append nodes to the backlog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBacklog(cmd.Context(), func(ctx context.Context, e *env) error {
			for _, id := range args {
				idx, ok := e.sess.Graph().IDToIndex[id]
				if !ok {
					return fmt.Errorf("unknown node id %q", id)
				}
				e.sess.Backlog = e.sess.Backlog.Add(idx)
			}
			return nil
		}, true)
	},
}

var backlogRemoveCmd = &cobra.Command{
	Use:   "remove <node-id>...",
	Short: "Remove nodes from the backlog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBacklog(cmd.Context(), func(ctx context.Context, e *env) error {
			for _, id := range args {
				idx, ok := e.sess.Graph().IDToIndex[id]
				if !ok {
					return fmt.Errorf("unknown node id %q", id)
				}
				e.sess.Backlog = e.sess.Backlog.Remove(idx)
			}
			return nil
		}, true)
	},
}

var backlogClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the backlog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBacklog(cmd.Context(), func(ctx context.Context, e *env) error {
			e.sess.Backlog = planner.Backlog{}
			return nil
		}, true)
	},
}

var backlogExplodeCmd = &cobra.Command{
	Use:   "explode",
	Short: "Show the backlog expanded with all unmet prerequisites",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBacklog(cmd.Context(), func(ctx context.Context, e *env) error {
			exploded := planner.Explode(e.sess.Graph(), e.sess.Backlog.Order(), e.sess.Completed)
			if len(exploded) == 0 {
				fmt.Println("Nothing to research.")
				return nil
			}
			flat := e.sess.FlatList()
			for pos, idx := range exploded {
				marker := " "
				if !e.sess.Backlog.Contains(idx) {
					marker = "+" // pulled in as a prerequisite
				}
				fmt.Printf("%3d. %s %s\n", pos+1, marker, flat.Rows[idx].Name)
			}
			return nil
		}, false)
	},
}

// withBacklog runs fn against a loaded session with restored state, and
// persists the (possibly mutated) backlog afterwards when save is set.
func withBacklog(ctx context.Context, fn func(context.Context, *env) error, save bool) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if err := restoreBacklog(ctx, e); err != nil {
		return err
	}
	if err := fn(ctx, e); err != nil {
		return err
	}
	if !save {
		return nil
	}

	st, err := openStore(ctx, e)
	if err != nil {
		return err
	}
	defer st.Close()

	payload := planner.EncodeBacklog(e.sess.Graph(), e.sess.Backlog)
	if err := st.SaveBacklog(ctx, e.cfg.Profile, payload); err != nil {
		return err
	}
	if e.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "saved %d backlog item(s) for profile %s\n",
			len(payload.Order), e.cfg.Profile)
	}
	return nil
}

func init() {
	backlogCmd.AddCommand(backlogShowCmd, backlogAddCmd, backlogRemoveCmd,
		backlogClearCmd, backlogExplodeCmd)
	rootCmd.AddCommand(backlogCmd)
}
