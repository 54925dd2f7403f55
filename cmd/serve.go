package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhttp "backoffice/internal/auth/adapter/http"
	"backoffice/internal/catalog"
	"backoffice/internal/di"
	"backoffice/internal/shared/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

var skipSeed bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and change feed",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Do not load the entity collections at startup")
}

func runServe(cmd *cobra.Command, _ []string) error {
	startCtx, cancelStart := context.WithTimeout(cmd.Context(), 30*time.Second)
	container, err := di.NewContainer(startCtx, cfg, appLog)
	cancelStart()
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			appLog.Errorf("Failed to close container: %v", err)
		}
	}()

	app := newApp(container)

	// Collections load in the background; an entity page shows an empty
	// table until its seed lands.
	seedCtx, cancelSeed := context.WithCancel(context.Background())
	defer cancelSeed()
	if !skipSeed {
		go func() {
			if err := container.Catalog.LoadAll(seedCtx); err != nil {
				appLog.Warnf("Some collections started empty: %v", err)
				return
			}
			appLog.Info("All collections loaded")
		}()
	}

	addr := cfg.Server.Addr()
	appLog.Infof("Starting HTTP server on %s", addr)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			appLog.Errorf("Server failed: %v", err)
			return err
		}
	case sig := <-quit:
		appLog.Infof("Received shutdown signal: %v", sig)
		cancelSeed()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLog.Errorf("Server forced to shutdown: %v", err)
		}
		appLog.Info("HTTP server stopped")
	}
	return nil
}

func newApp(container *di.Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Arome Floral Back Office",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if !errors.As(err, &fiberErr) {
				appLog.WithContext(c.UserContext()).Errorf("HTTP error: %v", err)
			}
			return response.Error(c, err)
		},
	})

	app.Use(recover.New())
	app.Use(authhttp.CORS(cfg.Server.AllowOrigins))
	app.Use(authhttp.RequestID(), authhttp.WithRequestContext())
	app.Use(authhttp.SecurityHeaders())
	app.Use(authhttp.RateLimiter(cfg.Server.RateLimit))
	app.Use(container.LanguageMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(ctx); err != nil {
			appLog.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}

		loaded := fiber.Map{}
		for _, s := range container.Catalog.Screens() {
			loaded[s.Name()] = s.Loaded()
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"store":     cfg.Store.Backend,
			"loaded":    loaded,
			"clients":   container.Hub.Clients(),
			"timestamp": time.Now().UTC(),
		})
	})

	container.RegisterRoutes(app.Group(catalog.BasePath))
	return app
}
