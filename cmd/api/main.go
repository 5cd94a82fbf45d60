package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/storefront/internal/auth"
	c "github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/events"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/poller"
	"github.com/fjod/storefront/internal/repository"
	s "github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger.New(logger.Options{Level: cfg.LogLevel, Console: cfg.IsDev()})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	ctx := context.Background()

	// MongoDB
	if err := repository.RunMigrations(cfg.MongoURI, cfg.MongoDBName, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName, repository.MongoOptions{
		MaxPoolSize:            cfg.MongoMaxPoolSize,
		MinPoolSize:            cfg.MongoMinPoolSize,
		ConnectTimeout:         cfg.MongoConnectTimeout,
		ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("database", cfg.MongoDBName).Msg("connected to MongoDB")

	users := repository.NewUserRepository(mongoDB)
	products := repository.NewProductRepository(mongoDB)
	orders := repository.NewOrderRepository(mongoDB)
	categories := repository.NewCategoryRepository(mongoDB)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("Redis ping succeeded")

	// Image uploads are disabled without a bucket.
	var imageStore storage.ImageStore
	var gcs *storage.GCSStore
	if cfg.GCSBucket != "" {
		gcs, err = storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create GCS client")
		}
		imageStore = gcs
	} else {
		log.Warn().Msg("GCS_BUCKET not set, image uploads are disabled")
	}
	uploader := storage.NewUploader(imageStore)

	publisher := events.NewPublisher(cfg.OrderEventsTopic, cfg.KafkaBrokers...)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpiresIn, cfg.JWTRefreshIn)
	google := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if !google.Enabled() {
		log.Warn().Msg("GOOGLE_APP_CLIENT_ID not set, Google login will fail")
	}

	cartService := s.NewCartService(users, products, c.NewRedisCache(redisClient), cfg.CartWriteRetries)
	productService := s.NewProductService(products, cartService)
	userService := s.NewUserService(users)
	authService := s.NewAuthService(users, tokens, google)
	orderService := s.NewOrderService(orders, products, users, publisher)
	categoryService := s.NewCategoryService(categories)

	router := h.NewRouter(h.Handlers{
		Cart:     h.NewCartHandler(cartService, cfg.RequestTimeout),
		Auth:     h.NewAuthHandler(authService, cfg.RequestTimeout, !cfg.IsDev()),
		User:     h.NewUserHandler(userService, uploader, cfg.RequestTimeout, cfg.MaxUploadBytes),
		Product:  h.NewProductHandler(productService, uploader, cfg.RequestTimeout, cfg.MaxUploadBytes),
		Order:    h.NewOrderHandler(orderService, cfg.RequestTimeout),
		Category: h.NewCategoryHandler(categoryService, uploader, cfg.RequestTimeout, cfg.MaxUploadBytes),
	}, h.RouterOptions{
		Tokens:         tokens,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC health
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	if err := mongoDB.Client().Ping(ctx, nil); err == nil {
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	} else {
		log.Error().Err(err).Msg("MongoDB ping failed")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}

	pollerCtx, stopPoller := context.WithCancel(ctx)
	orderPoller := poller.NewPoller(cartService, cfg.OrderEventsTopic, cfg.KafkaBrokers...)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orderPoller.Run(pollerCtx)
	}()

	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("gRPC health service listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("failed to serve gRPC")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("storefront API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	grpcServer.GracefulStop()

	stopPoller()
	orderPoller.Close()
	wg.Wait()

	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close Kafka writer")
	}
	if gcs != nil {
		if err := gcs.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close GCS client")
		}
	}
	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close Redis client")
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to disconnect MongoDB")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down tracer provider")
	}
	log.Info().Msg("storefront API stopped")
}
