package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"customer-sync/core/loader"
	"customer-sync/core/logger"
	"customer-sync/core/middleware/auth"
	"customer-sync/core/middleware/rayid"
	"customer-sync/feature/customers"
	"customer-sync/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "customer-sync/docs/swagger"
)

// @title Customer Sync API
// @version 1.0
// @description API for reconciling company customers with the accounting directory.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the customer sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		rt, err := bootstrap(ctx, bootstrapOptions{database: true, archive: true})
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer rt.Close()
		zap.ReplaceGlobals(rt.log)
		logg := rt.log
		cfg := rt.cfg

		if err := rt.service.Verify(ctx); err != nil {
			logg.Warn("Customer source is not usable yet", zap.Error(err))
		}

		// Seed the engine so the first pass after a restart is not all Added
		if n, err := rt.service.RestoreBaseline(ctx); err != nil {
			logg.Warn("No baseline restored", zap.Error(err))
		} else {
			logg.Info("Baseline restored", zap.Int("records", n))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(customers.NewFeature(rt.service, cfg.Customers.Enabled))
		mgr.Register(integrity.NewFeature(rt.storage, cfg.Storage.Bucket, logger.WithComponent(logg, "integrity"), rt.db, cfg.Customers, rt.dir))

		// RayID first so every log line can be traced
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(rt.metrics.Handler()))
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
		if !cfg.Server.AuthEnabled() {
			logg.Warn("API key not set, routes are unprotected")
		}

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Shutdown did not complete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
