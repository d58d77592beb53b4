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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/config"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/handler"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/mailer"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/messaging/nats"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/platform/metrics"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/repository"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/repository/cache"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/router"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/session"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/storage/s3"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/usecase"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	sessions, err := session.NewIssuer(cfg.JWTSecret, session.DefaultTTL)
	if err != nil {
		logger.Fatal("Failed to initialize session issuer", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	db := mongoClient.Database(cfg.MongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	m := metrics.New("storefront")

	smtpMailer := mailer.NewSMTPMailer(
		cfg.SMTPHost, cfg.SMTPPort,
		cfg.SMTPUsername, cfg.SMTPPassword,
		cfg.SMTPFromEmail, cfg.SMTPSenderName,
		logger,
	)

	objectStorage, err := s3.NewStorage(
		cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
		cfg.MinioBucket, cfg.MinioUseSSL, logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	var events usecase.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := nats.NewPublisher(cfg.NATSURL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	} else {
		logger.Info("NATS_URL not set, catalog events disabled")
	}

	userRepo := repository.NewUserRepository(db, logger)
	productRepo := repository.NewProductRepository(db, logger)
	productCache := cache.NewProductCache(redisClient)

	authUsecase := usecase.NewAuthUsecase(userRepo, smtpMailer, sessions, m, logger)
	catalogUsecase := usecase.NewCatalogUsecase(productRepo, productCache, events, m, logger)

	termHandlers := make(map[string]*handler.TermHandler)
	for kind, collection := range map[string]string{
		"categories": repository.CollectionCategories,
		"types":      repository.CollectionTypes,
		"tags":       repository.CollectionTags,
		"frameworks": repository.CollectionFrameworks,
	} {
		termRepo := repository.NewTermRepository(db, collection, logger)
		termUsecase := usecase.NewTaxonomyUsecase(kind, termRepo, logger)
		termHandlers[kind] = handler.NewTermHandler(termUsecase, logger)
	}

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authUsecase, sessions, logger),
		Products: handler.NewProductHandler(catalogUsecase, logger),
		Terms:    termHandlers,
		Upload:   handler.NewUploadHandler(objectStorage, logger),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(handlers, sessions, m, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting storefront server", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
