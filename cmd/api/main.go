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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/eprod/config"
	"github.com/GoSim-25-26J-441/eprod/internal/auth"
	authmw "github.com/GoSim-25-26J-441/eprod/internal/auth/middleware"
	"github.com/GoSim-25-26J-441/eprod/internal/bootstrap"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
	cronjob "github.com/GoSim-25-26J-441/eprod/internal/projects/cron"
	projectsrepo "github.com/GoSim-25-26J-441/eprod/internal/projects/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN, MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := bootstrap.ApplySchema(ctx, db); err != nil {
		return err
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var firebase authmw.IDTokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return err
		}
		firebase = client
		logger.Info("firebase token verification enabled")
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "eprod-api",
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             db,
		Redis:          rdb,
		Auth:           cfg.Auth,
		Firebase:       firebase,
		Logger:         logger,
	})

	purge := cronjob.NewScheduler(projectsrepo.NewProjectRepository(db), cfg.Projects.PurgeSchedule, cfg.Projects.PurgeRetention, logger)
	if err := purge.Start(); err != nil {
		return fmt.Errorf("start purge job: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		purge.Stop(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
