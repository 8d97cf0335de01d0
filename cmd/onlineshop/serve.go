package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	_ "github.com/onlineshop/backend/docs"
	"github.com/onlineshop/backend/internal/app"
	"github.com/onlineshop/backend/internal/config"
	"github.com/onlineshop/backend/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const migrationsPathFlag = "migrations-path"

var serveFlags = map[string]cobraflags.Flag{
	migrationsPathFlag: &cobraflags.StringFlag{
		Name:  migrationsPathFlag,
		Value: "",
		Usage: "Directory with SQL migrations applied on startup (defaults to MIGRATIONS_PATH)",
	},
}

func newServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP API",
		RunE:  serveCommand,
	}

	cobraflags.RegisterMap(serveCmd, serveFlags)
	return serveCmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if path := serveFlags[migrationsPathFlag].GetString(); path != "" {
		cfg.MigrationsPath = path
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Online Shop API")

	// Connect to database
	db, err := app.ConnectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	// Run migrations
	if err := app.RunMigrations(db, cfg.MigrationsPath, app.MigrateUp); err != nil {
		logger.Logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router, err := app.NewRouter(ctx, cfg, db, logger.Logger)
	if err != nil {
		logger.Logger.Error("Failed to build router", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Logger.Error("Server failed to start", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Logger.Info("Server exited")
	return nil
}
