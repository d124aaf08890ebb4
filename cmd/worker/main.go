package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/pannastore/checkout-capture/internal/aws"
	"github.com/pannastore/checkout-capture/internal/cache"
	"github.com/pannastore/checkout-capture/internal/capture"
	"github.com/pannastore/checkout-capture/internal/completion"
	"github.com/pannastore/checkout-capture/internal/config"
	"github.com/pannastore/checkout-capture/internal/logging"
	"github.com/pannastore/checkout-capture/internal/metrics"
	"github.com/pannastore/checkout-capture/internal/orders"
)

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

	// The worker must see the same mapping the API wrote, so it requires
	// the shared cache outside local runs.
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
		logger.Warn("redis not configured, cleanup will not find mappings written by other instances")
		cacheStore = cache.NewMemory()
	}

	emitter := metrics.NewEmitter(clients.CloudWatch, "CheckoutCapture", logger)
	recordStore := capture.NewStore(clients.DynamoDB, cfg.Tables.Records)
	orderStore := orders.NewStore(clients.DynamoDB, cfg.Tables.Orders)

	proc := completion.NewProcessor(orderStore, recordStore, cacheStore, emitter, logger)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := proc.Handle(ctx, event); err != nil {
			logger.Fatal("local handler error", zap.Error(err))
		}
		return
	}

	lambda.Start(proc.Handle)
}
