package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/averlane/shortener/cmd"
	"github.com/averlane/shortener/internal/api"
	"github.com/averlane/shortener/internal/database"
	"github.com/averlane/shortener/internal/models"
	"github.com/averlane/shortener/internal/monitor"
	"github.com/averlane/shortener/internal/repository"
	"github.com/averlane/shortener/internal/services"
	"github.com/averlane/shortener/internal/workers"
)

// RunServerCmd starts the HTTP API, the async visit workers and the
// destination monitor.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the URL shortener API server and background workers.",
	Long: `Initializes the database, wires the repositories and services,
starts the visit worker pool and the destination monitor, then serves the
HTTP API until interrupted.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.Cfg

		db, err := database.Open(cfg.Database.Name)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		linkRepo := repository.NewLinkRepository(db)
		visitRepo := repository.NewVisitRepository(db)
		userRepo := repository.NewUserRepository(db)
		log.Println("Repositories initialized.")

		visitEvents := make(chan models.VisitEvent, cfg.Analytics.BufferSize)
		workers.StartVisitWorkers(cfg.Analytics.WorkerCount, visitEvents, visitRepo)
		log.Printf("Visit event channel initialized with buffer %d; %d worker(s) started.",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		linkService := services.NewLinkService(linkRepo, visitRepo, cfg.Links.DefaultVisitLimit)
		resolveService := services.NewResolveService(linkRepo, visitEvents)
		authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
		log.Println("Services initialized.")

		monitorCtx, stopMonitor := context.WithCancel(context.Background())
		defer stopMonitor()
		urlMonitor := monitor.NewDestinationMonitor(linkRepo,
			time.Duration(cfg.Monitor.IntervalMinutes)*time.Minute)
		go urlMonitor.Start(monitorCtx)

		// Rate limiting only runs when a Redis address is configured.
		var rateLimiter gin.HandlerFunc
		if cfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
			rateLimiter = api.RedisRateLimiter(rdb, cfg.Redis.RateLimit,
				time.Duration(cfg.Redis.RateWindowSeconds)*time.Second)
			log.Printf("Redis rate limiter enabled (%d req / %ds per IP).",
				cfg.Redis.RateLimit, cfg.Redis.RateWindowSeconds)
		}

		router := gin.Default()
		api.SetupRoutes(router, api.Deps{
			Cfg:         cfg,
			Links:       linkService,
			Resolve:     resolveService,
			Auth:        authService,
			RateLimiter: rateLimiter,
		})
		log.Println("API routes configured.")

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}
		go func() {
			log.Printf("Starting server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutdown signal received. Stopping server...")

		stopMonitor()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		// Let the workers drain what they already received.
		close(visitEvents)
		time.Sleep(2 * time.Second)

		log.Println("Server stopped cleanly.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
