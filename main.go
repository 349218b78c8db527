package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/config"
	"github.com/junaidrashid-git/storefront/feed"
	"github.com/junaidrashid-git/storefront/logging"
	"github.com/junaidrashid-git/storefront/routes"
	"github.com/junaidrashid-git/storefront/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}

	backend := api.New(api.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
	}, api.WithLogger(logger.Named("api")))

	carts := cart.NewManager(store, logger.Named("cart"), cart.WithGuestIdle(cfg.GuestCartIdle))
	sessions := &auth.Sessions{API: backend, Store: store, Carts: carts, Log: logger.Named("session")}

	sim := feed.NewSimulator(cfg.Feed, feed.WithLogger(logger.Named("feed")))
	hub := feed.NewHub(logger.Named("hub"))
	detach := hub.Attach(sim)
	defer detach()

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logging.Gin(logger.Named("http")))

	// Allow large file uploads for product images and Excel imports
	r.MaxMultipartMemory = 64 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "X-Backend-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !allowsAny(cfg.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "feed": sim.State().String()})
	})

	routes.SetupRoutes(r, routes.Deps{
		API:         backend,
		Sessions:    sessions,
		Carts:       carts,
		Simulator:   sim,
		Hub:         hub,
		JWTSecret:   cfg.JWTSecret,
		GuestTTL:    cfg.GuestTokenTTL,
		SessionTTL:  cfg.SessionTTL,
		AdminAPIKey: cfg.AdminAPIKey,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server running", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := sim.Start(ctx); err != nil {
			return fmt.Errorf("feed simulator: %w", err)
		}
		<-ctx.Done()
		sim.Stop()
		return nil
	})

	if cfg.FeedUpstreamURL != "" {
		g.Go(func() error {
			return relayUpstream(ctx, cfg, hub, logger.Named("upstream"))
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		hub.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// initStorage opens the client-state store named by STORAGE_DRIVER.
func initStorage(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == "memory" {
		return storage.NewMemory(), nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connection failed: %w", err)
	}
	return storage.NewGorm(db)
}

// relayUpstream forwards another feed stream to the hub's clients until ctx
// ends. A failed dial is logged and the relay stays off.
func relayUpstream(ctx context.Context, cfg *config.Config, hub *feed.Hub, logger *zap.Logger) error {
	header := http.Header{}
	if cfg.AdminAPIKey != "" {
		header.Set("X-API-KEY", cfg.AdminAPIKey)
	}
	remote := feed.NewRemote(cfg.FeedUpstreamURL, header, feed.WithRemoteLogger(logger))
	detach := hub.Attach(remote)
	defer detach()

	if err := remote.Start(ctx); err != nil {
		logger.Warn("feed upstream unavailable", zap.Error(err))
		return nil
	}
	<-ctx.Done()
	remote.Stop()
	return nil
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
