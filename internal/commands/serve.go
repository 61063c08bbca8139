package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"despesas/internal/backend"
	"despesas/internal/cli"
	"despesas/internal/config"
	apphttp "despesas/internal/http"
	applog "despesas/internal/log"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/session"
)

const sessionSweepInterval = time.Minute

func newServeCommand() *cobra.Command {
	var port, logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Inicia o servidor web",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			return runServe(cmd.Context(), func(cfg *config.Config) {
				// Flags win over the environment.
				if port != "" {
					cfg.Port = port
				}
				if logLevel != "" {
					cfg.LogLevel = logLevel
				}
			})
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "porta HTTP (padrão: $PORT ou 8081)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "nível de log (debug, info, warn, error)")
	return cmd
}

func runServe(ctx context.Context, override func(*config.Config)) error {
	cfg := cli.LoadConfig(override)
	logger := cli.SetupLogger(cfg.LogLevel)
	if err := cli.ValidateConfig(logger, cfg); err != nil {
		return err
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid report configuration", "error", err)
		return err
	}
	res, err := backend.NewFactory(logger.Logger).Create(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize report pipeline", "error", err, "sink", cfg.ReportSink)
		return err
	}

	sessions := session.NewRegistry(logger, cfg.MaxSessions, cfg.SessionTTL)
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		CleanupInterval:   5 * time.Minute,
	})

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Sessions: sessions,
		Reports:  res.Reports,
		Limiter:  limiter,
		Logger:   logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	runCtx, done := cli.GracefulShutdown(gctx, logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Report pipeline cleanup failed", "error", err)
			}
		}
	})

	sessions.Start(runCtx, sessionSweepInterval)

	g.Go(func() error {
		logger.Info("Starting despesas server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"sink", cfg.ReportSink,
			"amqp_enabled", res.NotifierEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			return err
		}
		return nil
	})
	g.Go(func() error {
		limiter.Run(runCtx)
		return nil
	})
	g.Go(func() error {
		cli.WaitForShutdown(runCtx, done)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
	return nil
}
