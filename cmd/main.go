package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/shuttlenet/racquet-rankings/config"
	"github.com/shuttlenet/racquet-rankings/db"
	"github.com/shuttlenet/racquet-rankings/handlers"
	"github.com/shuttlenet/racquet-rankings/live"
	"github.com/shuttlenet/racquet-rankings/repositories"
	api "github.com/shuttlenet/racquet-rankings/routes"
	"github.com/shuttlenet/racquet-rankings/services"
	"github.com/shuttlenet/racquet-rankings/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Standings export is optional; without R2 credentials recalculations
	// simply skip the upload.
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("standings export enabled", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("standings export disabled")
	}

	rankingsHub := live.NewHub(logger)
	go rankingsHub.Run()
	logger.Info("rankings hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	pointConfigRepo := repositories.NewPostgresPointConfigRepository(dbConn)
	pointsRepo := repositories.NewPostgresTournamentPointsRepository(dbConn)
	rankingRepo := repositories.NewPostgresPlayerRankingRepository(dbConn)
	historyRepo := repositories.NewPostgresRankingHistoryRepository(dbConn)
	logger.Info("repositories initialized")

	rankingService := services.NewRankingService(
		dbConn,
		tournamentRepo,
		matchRepo,
		pointConfigRepo,
		pointsRepo,
		rankingRepo,
		historyRepo,
		uploader,
		rankingsHub,
		logger,
	)
	queryService := services.NewRankingQueryService(
		tournamentRepo,
		pointsRepo,
		rankingRepo,
		historyRepo,
		pointConfigRepo,
	)
	logger.Info("services initialized")

	rankingHandler := handlers.NewRankingHandler(rankingService, queryService)
	webSocketHandler := handlers.NewWebSocketHandler(rankingsHub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, rankingHandler, webSocketHandler, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shut down gracefully")
	}
}
