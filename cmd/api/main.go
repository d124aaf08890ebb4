package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pannastore/checkout-capture/internal/aws"
	"github.com/pannastore/checkout-capture/internal/cache"
	"github.com/pannastore/checkout-capture/internal/capture"
	"github.com/pannastore/checkout-capture/internal/carts"
	"github.com/pannastore/checkout-capture/internal/completion"
	"github.com/pannastore/checkout-capture/internal/config"
	"github.com/pannastore/checkout-capture/internal/handlers"
	"github.com/pannastore/checkout-capture/internal/logging"
	"github.com/pannastore/checkout-capture/internal/metrics"
	"github.com/pannastore/checkout-capture/internal/nonce"
	"github.com/pannastore/checkout-capture/internal/orders"
	"github.com/pannastore/checkout-capture/internal/validation"
)

func setupRouter(cfg handlers.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.Register(r, cfg)

	return r
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	clients, err := aws.NewClients(ctx)
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	var cacheStore cache.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		cacheStore = cache.NewRedis(redisClient, "capture:")
	} else {
		logger.Warn("redis not configured, using in-memory cache; dedup state is per-instance")
		cacheStore = cache.NewMemory()
	}

	emitter := metrics.NewEmitter(clients.CloudWatch, "CheckoutCapture", logger)
	recordStore := capture.NewStore(clients.DynamoDB, cfg.Tables.Records)
	orderStore := orders.NewStore(clients.DynamoDB, cfg.Tables.Orders)
	cartStore := carts.NewStore(clients.DynamoDB, cfg.Tables.Carts)

	svc := capture.NewService(recordStore, orderStore, cacheStore,
		cfg.Capture.LookupTTL, cfg.Capture.MappingTTL, emitter, logger)
	proc := completion.NewProcessor(orderStore, recordStore, cacheStore, emitter, logger)
	issuer := nonce.New(cfg.Capture.NonceSecret, validation.CaptureAction, cfg.Capture.NonceLifetime)

	var publisher *aws.Publisher
	if cfg.Queue.URL != "" {
		publisher = aws.NewPublisher(clients.SQS, cfg.Queue.URL)
	}

	r := setupRouter(handlers.Config{
		Capture:    svc,
		Completion: proc,
		Records:    recordStore,
		Carts:      cartStore,
		Nonce:      issuer,
		Publisher:  publisher,
		Metrics:    emitter,
		Logger:     logger,
	})

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" || cfg.App.Env == "local" {
		logger.Info("running local server", zap.String("addr", cfg.App.ListenAddr))
		if err := r.Run(cfg.App.ListenAddr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
