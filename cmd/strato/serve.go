package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/strato-web/strato"
	"github.com/strato-web/strato/internal/config"
	"github.com/strato-web/strato/internal/errors"
)

// serveCmd starts an application from the strato.json in the current
// project.
func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		devMode bool
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the application server",
		Long: `Start the application server.

Reads strato.json from the nearest project root, loads the configured
modules, and serves until interrupted. PORT and HOST environment
variables provide defaults when flags are not given; a .env file in the
working directory is loaded first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; a broken one is worth a note.
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				errorMsg("could not load %s: %v", envFile, err)
			}

			cfg, err := config.LoadFromWorkingDir()
			if err != nil {
				fatal(err)
			}

			app, err := buildApp(cfg, devMode)
			if err != nil {
				fatal(err)
			}

			printBanner()
			if cfg.Name != "" {
				info("project: %s", cfg.Name)
			}
			success("starting server")

			var listenOpts []strato.ListenOption
			if cmd.Flags().Changed("port") {
				listenOpts = append(listenOpts, strato.WithPort(port))
			} else if cfg.Dev.Port != 0 {
				listenOpts = append(listenOpts, strato.WithPort(cfg.Dev.Port))
			}
			if cmd.Flags().Changed("host") {
				listenOpts = append(listenOpts, strato.WithHost(host))
			} else if cfg.Dev.Host != "" {
				listenOpts = append(listenOpts, strato.WithHost(cfg.Dev.Host))
			}

			if err := app.Run(context.Background(), listenOpts...); err != nil {
				fatal(err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "port to listen on")
	cmd.Flags().StringVarP(&host, "host", "H", config.DefaultHost, "host to bind to")
	cmd.Flags().BoolVar(&devMode, "dev", false, "enable development mode (hot reload)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "environment file to load")

	return cmd
}

// buildApp maps project configuration onto application options.
func buildApp(cfg *config.Config, devMode bool) (*strato.App, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	modules := append([]string(nil), cfg.Modules...)
	if cfg.Telemetry.Metrics {
		modules = appendUnique(modules, "metrics")
	}
	if cfg.Telemetry.Tracing {
		modules = appendUnique(modules, "tracing")
	}
	if devMode {
		modules = appendUnique(modules, "dev")
	}

	return strato.New(strato.Options{
		RootDir:    cfg.Dir(),
		SrcDir:     cfg.SrcDir,
		Extensions: cfg.Extensions,
		Static: strato.StaticOptions{
			Dir:    cfg.Static.Dir,
			Prefix: cfg.Static.Prefix,
		},
		ModuleNames: modules,
		DevMode:     devMode,
		Logger:      logger,
	})
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

// fatal prints a framework error with full detail and exits non-zero.
func fatal(err error) {
	errors.PrintError(err)
	os.Exit(1)
}
