package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photoshare/internal/activity"
	albumhandler "github.com/aliskhannn/photoshare/internal/api/handlers/album"
	photohandler "github.com/aliskhannn/photoshare/internal/api/handlers/photo"
	"github.com/aliskhannn/photoshare/internal/api/router"
	"github.com/aliskhannn/photoshare/internal/api/server"
	"github.com/aliskhannn/photoshare/internal/config"
	"github.com/aliskhannn/photoshare/internal/deriver"
	albumrepo "github.com/aliskhannn/photoshare/internal/repository/album"
	"github.com/aliskhannn/photoshare/internal/repository/cache"
	photorepo "github.com/aliskhannn/photoshare/internal/repository/photo"
	albumsvc "github.com/aliskhannn/photoshare/internal/service/album"
	photosvc "github.com/aliskhannn/photoshare/internal/service/photo"
	"github.com/aliskhannn/photoshare/internal/storage/blob"
)

const activityQueueSize = 256
const activityRetention = 30 * 24 * time.Hour

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config")

	// Connect to PostgreSQL (master and slaves).
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Initialize blob storage (MinIO).
	storage, err := blob.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	// Redis cache for photo metadata reads.
	photoCache, err := cache.NewPhotoCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Activity log: Kafka producer behind a bounded in-process queue.
	producer := activity.NewKafkaProducer(&cfg.Kafka, strategy)
	activityLog := activity.NewLogger(producer, activityQueueSize, activityRetention)

	var wg sync.WaitGroup
	wg.Add(1)
	go activityLog.Run(ctx, &wg)

	// Thumbnail derivation: in-process by default, remote when configured.
	derOpts := deriver.Options{
		Width:   cfg.Derive.Width,
		Height:  cfg.Derive.Height,
		Quality: cfg.Derive.Quality,
		Format:  cfg.Derive.Format,
	}

	// Repositories and services.
	photoRepo := photorepo.NewRepository(db)
	albumRepo := albumrepo.NewRepository(db)

	var photoService *photosvc.Service
	if cfg.Derive.Mode == "remote" {
		remote := deriver.NewRemote(cfg.Derive.RemoteURL, cfg.Storage.BucketName, cfg.Derive.Timeout)
		photoService = photosvc.NewService(photoRepo, albumRepo, storage, deriver.NewLocal(), remote, photoCache, activityLog, derOpts, cfg.Storage.SignedURLTTL)
	} else {
		photoService = photosvc.NewService(photoRepo, albumRepo, storage, deriver.NewLocal(), nil, photoCache, activityLog, derOpts, cfg.Storage.SignedURLTTL)
	}
	albumService := albumsvc.NewService(albumRepo, photoRepo, activityLog)

	photoHandler := photohandler.NewHandler(photoService)
	albumHandler := albumhandler.NewHandler(albumService)

	// Start HTTP server.
	r := router.Setup(photoHandler, albumHandler, cfg.Auth.JWTSecret)
	s := server.New(cfg.Server.HTTPPort, r)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for the activity worker to drain its queue.
	wg.Wait()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Close master and slave databases.
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	// Close Redis and Kafka clients.
	if err := photoCache.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close redis client")
	}
	if err := producer.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
	}
}
