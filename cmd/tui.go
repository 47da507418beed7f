package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ashpool/techplan/internal/config"
	"github.com/ashpool/techplan/internal/planner"
	"github.com/ashpool/techplan/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive planner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		if err := restoreBacklog(ctx, e); err != nil {
			return err
		}

		slots, err := config.LoadSlots(e.cfg.SlotsFile)
		if err != nil {
			return err
		}

		program := tea.NewProgram(tui.New(e.sess, slots), tea.WithAltScreen())
		finalModel, err := program.Run()
		if err != nil {
			return fmt.Errorf("tui: %w", err)
		}

		// Persist whatever the planner session ended with.
		if m, ok := finalModel.(tui.Model); ok {
			if err := persistSession(ctx, e, m); err != nil {
				return err
			}
		}
		return nil
	},
}

func persistSession(ctx context.Context, e *env, m tui.Model) error {
	st, err := openStore(ctx, e)
	if err != nil {
		return err
	}
	defer st.Close()

	payload := planner.EncodeBacklog(m.Session.Graph(), m.Session.Backlog)
	if err := st.SaveBacklog(ctx, e.cfg.Profile, payload); err != nil {
		return err
	}
	if err := st.SaveCompleted(ctx, e.cfg.Profile, m.Session.CompletedIDs()); err != nil {
		return err
	}
	if e.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "saved profile %s\n", e.cfg.Profile)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
