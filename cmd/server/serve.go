package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"itemhub/docs"
	"itemhub/internal/auth"
	"itemhub/internal/config"
	"itemhub/internal/handler"
	"itemhub/internal/logger"
	"itemhub/internal/repository"
	"itemhub/internal/router"
	"itemhub/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

// bootstrap loads config and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Config{
		Level: cfg.LogLevel,
		Dev:   cfg.Debug && !cfg.IsProduction(),
		File:  cfg.LogFile,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.DatabaseURL, repository.Options{
		Debug:       cfg.Debug,
		AutoMigrate: true,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	hasher := auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	jwtService, err := auth.NewJWTService(cfg.SecretKey, cfg.Algorithm, cfg.TokenTTL)
	if err != nil {
		return err
	}

	itemService := service.NewItemService(store.Items)
	userService := service.NewUserService(store.Users, hasher, log)
	authService := service.NewAuthService(store.Users, hasher, jwtService, log)

	docs.SwaggerInfo.Title = cfg.ProjectName
	docs.SwaggerInfo.Version = cfg.Version
	docs.SwaggerInfo.Description = cfg.Description
	docs.SwaggerInfo.BasePath = cfg.APIPrefix
	docs.SwaggerInfo.Host = hostOnly(cfg.SwaggerHost)

	e := echo.New()
	e.HidePort = true
	router.Register(
		e,
		cfg,
		log,
		handler.NewItemHandler(itemService),
		handler.NewUserHandler(userService),
		handler.NewAuthHandler(authService),
		handler.NewHealthHandler(cfg.ProjectName, cfg.Version, store),
	)

	addr := ":" + cfg.ServerPort
	log.Info("starting server",
		zap.String("addr", addr),
		zap.String("backend", store.Backend),
		zap.String("environment", cfg.Environment),
		zap.String("swagger", swaggerURL(cfg)),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// swaggerURL is only used for the startup log line.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}

func hostOnly(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}
