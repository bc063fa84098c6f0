package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jenkinsapi/jenkins-workbench/internal/api"
	"github.com/jenkinsapi/jenkins-workbench/internal/config"
	"github.com/jenkinsapi/jenkins-workbench/internal/jenkins"
	"github.com/jenkinsapi/jenkins-workbench/internal/logging"
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals shared by every subcommand
var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "jenkins-workbench",
		Short:        "Manage a Jenkins controller: jobs, parameters, views, plugins, nodes and security.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(serveCmd(), versionCmd(), paramsCmd(), jobCmd(), viewCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jenkins-workbench %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// setup loads configuration and opens the facade for commands that talk to
// the controller.
func setup() (*config.Config, *logrus.Logger, *jenkins.Facade, *models.Connection, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, nil, err
	}
	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	conn, err := cfg.Connection()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	opts := []jenkins.Option{jenkins.WithLogger(logrus.NewEntry(log))}
	if cfg.StrictParameters {
		opts = append(opts, jenkins.WithStrictParameters())
	}
	facade, err := jenkins.Open(conn, opts...)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, log, facade, conn, nil
}

func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, facade, conn, err := setup()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			entry := log.WithField("controller", conn.BaseURL())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Verify connectivity early; the API still starts when it fails.
			if v, err := facade.Version(ctx); err != nil {
				entry.WithError(err).Warn("Controller unreachable")
			} else {
				entry.WithField("version", v).Info("Controller reachable")
			}

			server := &api.Server{
				Facade:     facade,
				Connection: conn,
				Operations: models.NewOperationStore(nil),
				Log:        entry,
			}
			srv := &http.Server{Addr: cfg.Listen, Handler: api.NewRouter(server)}

			errCh := make(chan error, 1)
			go func() {
				log.Infof("Jenkins Workbench %s starting on %s", version, cfg.Listen)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}
