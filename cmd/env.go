package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ashpool/techplan/internal/config"
	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/loader"
	"github.com/ashpool/techplan/internal/planner"
	"github.com/ashpool/techplan/internal/session"
	"github.com/ashpool/techplan/internal/store"
	"github.com/ashpool/techplan/internal/telemetry"
	"github.com/ashpool/techplan/internal/ui"
)

// errGraphInvalid aborts commands when the dataset fails validation.
// A graph with unresolved errors is not a valid planning input.
var errGraphInvalid = errors.New("dataset has validation errors; fix them before planning")

// env bundles everything a planning command needs.
type env struct {
	cfg      config.Config
	sess     *session.Session
	renderer ui.Renderer
	emitter  *telemetry.Emitter
}

// loadEnv loads the dataset, validates it, and installs it into a fresh
// session. Loader and validation errors fail closed: no command past this
// point ever sees an invalid graph.
func loadEnv() (*env, error) {
	cfg := config.Load()

	var emitter *telemetry.Emitter
	if cfg.TelemetryPath != "" {
		var err error
		emitter, err = telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, err
		}
	}

	// Every early error return must release the emitter.
	fail := func(err error) (*env, error) {
		_ = emitter.Close()
		return nil, err
	}

	report, err := loader.Loader{Dir: cfg.InputDir}.Load()
	if err != nil {
		return fail(err)
	}
	for _, warning := range report.Warnings {
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}
	}
	_ = emitter.Emit(telemetry.Event{
		Timestamp: time.Now(),
		Kind:      telemetry.KindDatasetLoaded,
		Profile:   cfg.Profile,
		Data: map[string]int{
			"nodes":    len(report.Nodes),
			"warnings": len(report.Warnings),
			"errors":   len(report.Errors),
		},
	})
	if report.HasErrors() {
		for _, loadErr := range report.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", loadErr)
		}
		return fail(errGraphInvalid)
	}

	result := graph.Validate(report.Nodes)
	_ = emitter.Emit(telemetry.Event{
		Timestamp: time.Now(),
		Kind:      telemetry.KindValidation,
		Profile:   cfg.Profile,
		Data:      result.Summary(),
	})
	if result.HasErrors() {
		printValidation(result)
		return fail(errGraphInvalid)
	}

	sess := session.New()
	sess.Install(0, report.Nodes)
	sess.SortMode = sortModeFromConfig(cfg)

	return &env{
		cfg:      cfg,
		sess:     sess,
		renderer: ui.Renderer{NoColor: cfg.NoColor},
		emitter:  emitter,
	}, nil
}

func (e *env) close() {
	_ = e.emitter.Close()
}

// openStore opens the profile store at the configured path.
func openStore(ctx context.Context, e *env) (*store.Store, error) {
	return store.Open(ctx, e.cfg.DBPath)
}

func printValidation(result graph.Result) {
	for _, issue := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s", issue.Message)
		if len(issue.Nodes) > 0 {
			fmt.Fprintf(os.Stderr, " (%s)", strings.Join(issue.Nodes, ", "))
		}
		fmt.Fprintln(os.Stderr)
	}
	for _, issue := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", issue.Message)
	}
}

func sortModeFromConfig(cfg config.Config) planner.SortMode {
	if cfg.SortMode == "cost" {
		return planner.SortByCostDesc
	}
	return planner.SortByName
}
