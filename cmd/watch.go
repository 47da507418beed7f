package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/loader"
	"github.com/ashpool/techplan/internal/telemetry"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the dataset directory and revalidate on changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		watcher, err := loader.NewWatcher(e.cfg.InputDir)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()

		fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", e.cfg.InputDir)

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case <-signals:
				return nil

			case token := <-watcher.Reloads:
				report, err := (loader.Loader{Dir: e.cfg.InputDir}).Load()
				if err != nil {
					fmt.Fprintf(os.Stderr, "reload %d failed: %v\n", token, err)
					continue
				}
				_ = e.emitter.Emit(telemetry.Event{
					Timestamp: time.Now(),
					Kind:      telemetry.KindReload,
					SessionID: e.sess.ID,
					Profile:   e.cfg.Profile,
					Data:      map[string]uint64{"token": token},
				})

				if report.HasErrors() {
					for _, loadErr := range report.Errors {
						fmt.Fprintf(os.Stderr, "error: %s\n", loadErr)
					}
					continue
				}
				result := graph.Validate(report.Nodes)
				if result.HasErrors() {
					printValidation(result)
					continue
				}

				// Valid snapshot: swap it in. Backlog and completed state
				// survive by identifier remap inside Install.
				e.sess.Install(token, report.Nodes)
				fmt.Fprintf(os.Stderr, "reload %d: %d node(s), %s\n",
					token, len(report.Nodes), result.Summary())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
