package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"gorm.io/gorm"

	_ "github.com/tair/fashion-checkout/docs"
	cartdomain "github.com/tair/fashion-checkout/internal/cart/domain"
	cartrepo "github.com/tair/fashion-checkout/internal/cart/repository"
	coupondomain "github.com/tair/fashion-checkout/internal/coupon/domain"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/shop"
	"github.com/tair/fashion-checkout/internal/store/gormstore"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/config"
	"github.com/tair/fashion-checkout/pkg/database"
	"github.com/tair/fashion-checkout/pkg/httpx"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/tracing"
)

func main() {
	cfg, err := config.Load("shop-service")
	if err != nil {
		panic(err)
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting shop service")

	if err := cfg.VNPay.Validate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Invalid VNPay configuration")
	}
	if cfg.JWTSecret == "" {
		logger.Logger.Fatal().Msg("JWT_SECRET is required")
	}

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.Tracing())
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	if err := migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	carts, redisClient := connectCarts(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, closePublisher := connectPublisher(cfg)
	defer closePublisher()

	// Initialize handlers with Wire DI
	handlers, err := shop.InitializeHandlers(gormstore.New(db), carts, publisher, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handlers")
	}

	deps := map[string]httpx.Pinger{"database": sqlDB}
	if redisClient != nil {
		deps["redis"] = redisPinger{redisClient}
		if cfg.CheckoutRateLimit > 0 {
			handlers.Limiter = httpx.NewRateLimiter(httpx.NewRedisWindow(redisClient), "checkout", cfg.CheckoutRateLimit, time.Minute)
		}
	}
	server := newHTTPServer(cfg, handlers, deps)

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&inventorydomain.Product{},
		&inventorydomain.Variant{},
		&inventorydomain.InventoryMovement{},
		&coupondomain.Coupon{},
		&customerdomain.Customer{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&paymentdomain.Payment{},
		&paymentdomain.PaymentTransaction{},
	)
}

// connectCarts prefers Redis and falls back to process memory when Redis
// does not answer at startup.
func connectCarts(cfg *config.Config) (cartdomain.Repository, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, carts are kept in memory")
		client.Close()
		return cartrepo.NewMemoryRepository(), nil
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cart store connected")
	return cartrepo.NewRedisRepository(client, cartrepo.DefaultTTL), client
}

func connectPublisher(cfg *config.Config) (kafka.EventPublisher, func()) {
	if !cfg.KafkaEnabled {
		logger.Logger.Info().Msg("Kafka disabled, domain events are dropped")
		return kafka.NopPublisher{}, func() {}
	}

	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers)
	if err != nil {
		logger.Logger.Error().Err(err).Strs("brokers", cfg.KafkaBrokers).Msg("Failed to create Kafka publisher, domain events are dropped")
		return kafka.NopPublisher{}, func() {}
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}
}

func newHTTPServer(cfg *config.Config, handlers *shop.Handlers, deps map[string]httpx.Pinger) *http.Server {
	// Setup router
	router := mux.NewRouter()

	middlewareConfig := httpx.DefaultMiddlewareConfig(cfg.ServiceName)
	httpx.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	handlers.RegisterRoutes(router)

	// Health check endpoint
	httpx.RegisterHealthCheck(router, cfg.ServiceName, deps)

	// Swagger documentation
	httpx.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpx.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
