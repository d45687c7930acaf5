// Command eprod is a terminal front end for the eprod project dashboard.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/config"
	"github.com/GoSim-25-26J-441/eprod/internal/client/dashboard"
	"github.com/GoSim-25-26J-441/eprod/internal/client/gate"
	"github.com/GoSim-25-26J-441/eprod/internal/client/projectstore"
	"github.com/GoSim-25-26J-441/eprod/internal/client/remote"
	"github.com/GoSim-25-26J-441/eprod/internal/client/session"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
)

var (
	apiURL  string
	verbose bool
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "eprod",
	Short:         "Manage your image generation projects",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $EPROD_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(signUpCmd, signInCmd, signOutCmd, whoamiCmd, profileCmd, projectsCmd, generateCmd)
}

// app is one CLI invocation's dashboard.
type app struct {
	dash   *dashboard.Dashboard
	logger *zap.Logger
}

func (a *app) close() {
	a.dash.Close()
	_ = a.logger.Sync()
}

// open builds the dashboard and runs the initial session check.
func open(ctx context.Context) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = logging.New(cfg.App.Environment, "debug"); err != nil {
			return nil, err
		}
	}
	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	path := cfg.SessionFile
	if path == "" {
		if path, err = remote.DefaultSessionPath(); err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
	}

	client := remote.NewClient(cfg.APIURL, cfg.RequestTimeout, remote.NewFileTokens(path), logger)
	sessions := session.NewManager(remote.NewSessionAPI(client),
		session.WithLogger(logger),
		session.WithTimeout(cfg.RequestTimeout))
	store := projectstore.New(remote.NewProjectsAPI(client),
		projectstore.WithLogger(logger),
		projectstore.WithTimeout(cfg.RequestTimeout))

	dash := dashboard.New(sessions, store, gate.Policy{AllowUnconfirmedWrites: cfg.AllowUnconfirmedWrites}, nil, logger)
	if err := dash.Start(ctx); err != nil {
		logger.Debug("session check failed", zap.Error(err))
	}
	return &app{dash: dash, logger: logger}, nil
}

// withApp runs fn against a started dashboard and closes it afterwards.
func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := open(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, cmd, args)
	}
}
