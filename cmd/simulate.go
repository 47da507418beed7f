package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ashpool/techplan/internal/config"
	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
	"github.com/ashpool/techplan/internal/sim"
	"github.com/ashpool/techplan/internal/store"
	"github.com/ashpool/techplan/internal/telemetry"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the turn-based research simulation over the backlog",
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

		exploded := planner.Explode(e.sess.Graph(), e.sess.Backlog.Order(), e.sess.Completed)
		simCfg := sim.Config{
			BacklogOrder: exploded,
			Completed:    e.sess.Completed,
			TechSlots:    slotConfigs(slots.Tech, graph.NodeTypeTech),
			ProjectSlots: slotConfigs(slots.Project, graph.NodeTypeProject),
		}

		started := time.Now()
		_ = e.emitter.Emit(telemetry.Event{
			Timestamp: started,
			Kind:      telemetry.KindSimulationStart,
			SessionID: e.sess.ID,
			Profile:   e.cfg.Profile,
			Data:      map[string]int{"backlog": len(exploded)},
		})

		result := sim.Simulate(e.sess.Graph(), e.sess.FlatList(), simCfg)

		researched := 0
		for _, snapshot := range result.Turns {
			researched += len(snapshot.Completed)
		}
		_ = e.emitter.Emit(telemetry.Event{
			Timestamp: time.Now(),
			Kind:      telemetry.KindSimulationDone,
			SessionID: e.sess.ID,
			Profile:   e.cfg.Profile,
			Data:      map[string]int{"turns": len(result.Turns), "researched": researched},
		})

		st, err := openStore(ctx, e)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.RecordRun(ctx, store.RunRecord{
			ID:         uuid.NewString(),
			Profile:    e.cfg.Profile,
			StartedAt:  started,
			Turns:      len(result.Turns),
			Researched: researched,
		}); err != nil {
			return err
		}

		fmt.Print(e.renderer.Timeline(result))
		return nil
	},
}

func slotConfigs(defs []config.SlotDef, nodeType graph.NodeType) []sim.SlotConfig {
	out := make([]sim.SlotConfig, 0, len(defs))
	for _, def := range defs {
		out = append(out, sim.SlotConfig{Name: def.Name, Type: nodeType, Pips: def.Pips})
	}
	return out
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent simulation runs for the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.Load()

		st, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.Runs(ctx, cfg.Profile, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%s  %s  %3d turns  %3d researched\n",
				run.StartedAt.Format(time.RFC3339), run.ID, run.Turns, run.Researched)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(simulateCmd, runsCmd)
}
