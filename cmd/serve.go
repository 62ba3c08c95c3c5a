package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corralworks/corral/internal/auth"
	"github.com/corralworks/corral/internal/db/bunx"
	"github.com/corralworks/corral/internal/events"
	"github.com/corralworks/corral/internal/repository"
	"github.com/corralworks/corral/internal/server"
	"github.com/corralworks/corral/internal/services/admin"
	"github.com/corralworks/corral/internal/services/inventory"
	"github.com/corralworks/corral/internal/session"
	"github.com/corralworks/corral/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Corral API server",
	Long:  `Starts the HTTP server with the inventory REST API and websocket event feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		shutdownTelemetry, err := telemetry.Init(cmd.Context(), cfg.Observability)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(ctx); err != nil {
				log.Printf("Warning: telemetry shutdown failed: %v", err)
			}
		}()

		// Initialize repositories
		adminRepo := repository.NewBunAdminRepository(db)
		sessionRepo := repository.NewBunSessionRepository(db)
		nodeRepo := repository.NewBunNodeRepository(db)
		swProfileRepo := repository.NewBunSoftwareProfileRepository(db)
		hwProfileRepo := repository.NewBunHardwareProfileRepository(db)

		// Initialize services
		admins, err := admin.NewStore(adminRepo)
		if err != nil {
			return fmt.Errorf("failed to create admin store: %w", err)
		}
		sessions := session.NewManager(sessionRepo, cfg.Session.TTL, cfg.Session.SecureCookies)
		bus := events.NewBus()
		inv := inventory.NewService(nodeRepo, swProfileRepo, hwProfileRepo, bus)

		// Authentication pipeline: ordered strategies, first definitive
		// answer wins. Session revalidation runs first, then the two
		// credential strategies, then bearer tokens when a verification
		// key is configured.
		strategies := []auth.Strategy{
			auth.NewSessionStrategy(),
			auth.NewBasicStrategy(admins),
			auth.NewFormStrategy(admins),
		}
		if cfg.Auth.BearerEnabled() {
			key, err := auth.LoadVerificationKey(cfg.Auth.JWTHMACSecret, cfg.Auth.JWTRSAPublicKeyPath)
			if err != nil {
				return fmt.Errorf("failed to load JWT verification key: %w", err)
			}
			strategies = append(strategies, auth.NewBearerStrategy(key, admins))
			log.Printf("Bearer token authentication enabled")
		} else {
			log.Printf("Bearer token authentication disabled (no JWT key configured)")
		}

		authMetrics, err := telemetry.NewAuthMetrics()
		if err != nil {
			return fmt.Errorf("failed to create auth metrics: %w", err)
		}
		authenticator := auth.NewAuthenticator(strategies, admins, authMetrics)

		handler, err := server.NewH2CHandler(server.RouterOptions{
			Inventory:     inv,
			Admins:        admins,
			Authenticator: authenticator,
			Sessions:      sessions,
			Bus:           bus,
			Cfg:           cfg,
		})
		if err != nil {
			return fmt.Errorf("failed to build router: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			log.Printf("Server URL: %s", cfg.ServerURL)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
