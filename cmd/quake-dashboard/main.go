package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-quake-dashboard/internal/api"
	"github.com/mr1hm/go-quake-dashboard/internal/config"
	internalgrpc "github.com/mr1hm/go-quake-dashboard/internal/grpc"
	"github.com/mr1hm/go-quake-dashboard/internal/ingestion"
	"github.com/mr1hm/go-quake-dashboard/internal/logging"
	"github.com/mr1hm/go-quake-dashboard/internal/observability"
	"github.com/mr1hm/go-quake-dashboard/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "feed", cfg.Feed.URL)

	metrics := observability.NewMetrics()
	client := ingestion.NewClient(cfg.Feed.URL, cfg.Feed.Timeout, cfg.Feed.RateLimit, logger)
	p := pipeline.New(client, cfg.Controls, clockwork.NewRealClock(), metrics, logger)

	// Start gRPC server
	var grpcServer *internalgrpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = internalgrpc.NewServer(p, logger)
		go func() {
			grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
			if err := grpcServer.Start(grpcAddr); err != nil {
				logging.Fatalf("gRPC server error: %v", err)
			}
		}()
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.MetricsMiddleware(metrics))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(p)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	if grpcServer != nil {
		grpcServer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
