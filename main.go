package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/controllers"
	"storefront-service/database"
	"storefront-service/kafka"
	"storefront-service/middleware"
	"storefront-service/repository"
	"storefront-service/routes"
	"storefront-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	aws_pkg "storefront-service/pkg/aws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	// --- Database ---
	if err := database.Connect(logger); err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	// --- Redis catalog cache (optional) ---
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal("Redis connection failed", zap.Error(err))
		}
	} else {
		logger.Warn("REDIS_URL not set, catalog cache disabled")
	}

	// --- Kafka order events (optional) ---
	var orderPublisher services.OrderPublisher
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		if err != nil {
			logger.Fatal("Kafka producer init failed", zap.Error(err))
		}
		orderPublisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	// --- AWS setup ---
	var snsClient aws_pkg.SNSPublisher
	if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
	} else {
		logger.Warn("AWS config load failed, SNS notifications disabled", zap.Error(err))
	}

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.RateLimitMiddleware())

	// CloudWatch metrics (non-fatal)
	metricsClient, err := aws_pkg.NewMetricsClient(context.Background())
	if err != nil {
		logger.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	// CloudWatch HTTP metrics middleware
	r.Use(func(c *gin.Context) {
		if metricsClient == nil || !metricsClient.IsEnabled() {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		go func(path, method string, status int, dur time.Duration) {
			mctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			dims := map[string]string{"Service": "storefront-service", "Method": method, "Path": path}
			_ = metricsClient.RecordCount(mctx, aws_pkg.MetricHTTPRequests, dims)
			_ = metricsClient.RecordLatency(mctx, aws_pkg.MetricHTTPLatency, dur, dims)
			if status >= 400 {
				_ = metricsClient.RecordCount(mctx, aws_pkg.MetricHTTPErrors, dims)
			}
		}(c.Request.URL.Path, c.Request.Method, c.Writer.Status(), time.Since(start))
	})

	// Structured HTTP request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	})

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- Dependency injection ---
	productRepo := repository.NewGormProductRepository(database.DB)
	customerRepo := repository.NewGormCustomerRepository(database.DB)
	cartRepo := repository.NewGormCartRepository(database.DB)
	reviewRepo := repository.NewGormReviewRepository(database.DB)
	orderRepo := repository.NewGormOrderRepository(database.DB)

	catalogCache := services.NewCatalogCache(redisClient, logger)

	customerService := services.NewCustomerService(customerRepo, cfg.CustomerDefaults, logger)
	catalogService := services.NewCatalogService(productRepo, catalogCache, logger)
	cartService := services.NewCartService(cartRepo, customerService, logger)
	reviewService := services.NewReviewService(reviewRepo, productRepo, customerService, snsClient, cfg.ReviewSNSTopicARN, metricsClient, logger)
	checkoutService := services.NewCheckoutService(orderRepo, cartRepo, customerService, orderPublisher, metricsClient, logger)

	catalogController := controllers.NewCatalogController(catalogService)
	cartController := controllers.NewCartController(cartService)
	reviewController := controllers.NewReviewController(reviewService)
	checkoutController := controllers.NewCheckoutController(checkoutService)

	routes.RegisterRoutes(r, catalogController, cartController, reviewController, checkoutController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "storefront-service"})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Storefront Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Initiating graceful shutdown...")
	httpShutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(httpShutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("Kafka producer close error", zap.Error(err))
		}
	}

	if err := database.Close(); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	log.Println("Storefront Service stopped gracefully")
}
