// Command etl loads the sparkify song catalog and listening logs into the
// star-schema warehouse.
//
//	etl                      # defaults: data/song_data, data/log_data, local Postgres
//	etl -config etl.yaml     # YAML overrides, then SPARKIFY_* environment overrides
//	etl -validate            # lint the effective configuration and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"sparkify/internal/config"
	"sparkify/internal/etl"
	"sparkify/internal/logging"
	"sparkify/internal/storage"

	// register all backends with the storage factory.
	_ "sparkify/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one batch and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML config path (default $"+config.PathEnvVar+")")
	validate := fs.Bool("validate", false, "validate the configuration and exit")
	verbose := fs.Bool("v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: stderr,
	})
	runID := logging.StartRun()

	issues := config.Validate(*cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			logging.Error().Str("path", iss.Path).Msg(iss.Message)
		} else {
			logging.Warn().Str("path", iss.Path).Msg(iss.Message)
		}
	}
	if config.HasErrors(issues) {
		logging.Error().Msg("configuration is invalid")
		return 1
	}
	if *validate {
		logging.Info().Msg("configuration is valid")
		return 0
	}

	flush := setupMetrics(cfg.Job, cfg.Metrics)
	defer flush()

	logging.Info().
		Str("storage", cfg.Storage.Kind).
		Str("songs", cfg.Songs.Root).
		Str("logs", cfg.Logs.Root).
		Msg("run starting")

	gw, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
	if err != nil {
		logging.Error().Err(err).Msg("open warehouse")
		return 1
	}
	defer gw.Close()

	if cfg.Storage.AutoCreateTables {
		if err := gw.EnsureSchema(ctx); err != nil {
			logging.Error().Err(err).Msg("create tables")
			return 1
		}
	}

	_, err = etl.Run(ctx, gw, etl.Options{
		Job:   cfg.Job,
		Songs: etl.Source{Root: cfg.Songs.Root, Ext: cfg.Songs.Ext},
		Logs:  etl.Source{Root: cfg.Logs.Root, Ext: cfg.Logs.Ext},
	})
	if err != nil {
		logging.Error().Err(err).Str("run_id", runID).Msg("run failed")
		return 1
	}
	return 0
}
