package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/chat"
	"storefront/internal/kv"
	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront")

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx := context.Background()

	// Cart storage and the captured email set
	var (
		cartStorage kv.Store
		emailSet    service.EmailStore
	)
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cartStorage = redisClient
		emailSet = redisclient.NewEmailSet(redisClient, "newsletter")
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	case config.StorageMemory:
		cartStorage = kv.NewMemoryStore()
		emailSet = chat.NewMemoryEmailSet()
	default:
		pebbleStore, err := kv.NewPebbleStore(cfg.Storage.Dir)
		if err != nil {
			logger.Fatal("Failed to open cart storage", zap.String("dir", cfg.Storage.Dir), zap.Error(err))
		}
		cartStorage = pebbleStore
		emailSet = chat.NewMemoryEmailSet()
		logger.Info("Pebble storage opened", zap.String("dir", cfg.Storage.Dir))
	}
	defer cartStorage.Close()

	// Orders
	var orderRepo service.OrderRepository
	if cfg.Database.URL != "" {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare database", zap.Error(err))
		}
		if err := db.SeedOrders(ctx, service.ReferenceOrders()); err != nil {
			logger.Warn("Failed to seed reference orders", zap.Error(err))
		}
		orderRepo = db
		logger.Info("Database connected")
	} else {
		orderRepo = service.NewMemoryOrderRepository()
	}

	// Integration events
	sheetSync := worker.NewSheetSync(nil)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var (
		eventPublisher *broker.EventPublisher
		syncWorker     *worker.SheetSyncWorker
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicIntegrations)
		defer producer.Close()
		eventPublisher = broker.NewEventPublisher(producer, "kafka")
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicIntegrations, cfg.Kafka.ConsumerGroup)
		syncWorker = worker.NewSheetSyncWorker(consumer, sheetSync)
		go func() {
			if err := syncWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Sheet sync worker error", zap.Error(err))
			}
		}()
	} else {
		eventPublisher = broker.NewEventPublisher(broker.NewLocalSink(sheetSync.Handler().HandleMessage), "local")
	}

	// Services
	cartStore := cart.NewStore(cartStorage, cfg.Storage.CartKey)
	orders := service.NewOrderDirectory(orderRepo)
	newsletter := service.NewNewsletterList(emailSet, eventPublisher)
	chatSession := chat.NewSession(orders, newsletter.ForSource(models.SourceChat), cartStore, chat.Options{
		TypedDelay:      cfg.Business.ChatTypedDelay,
		QuickReplyDelay: cfg.Business.ChatQuickReplyDelay,
	})
	defer chatSession.Close()

	checkoutService := service.NewCheckoutService(
		cartStore,
		orders,
		service.NewPaymentService(cfg.Business.PaymentDelay),
		eventPublisher,
		cfg.Business.ShippingFlatFee,
	)
	submissionService := service.NewSubmissionService(cfg.Business.SubmissionDelay, newsletter, eventPublisher)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(cartStore, chatSession, checkoutService, submissionService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if syncWorker != nil {
		syncWorker.Stop()
	}

	logger.Info("Server exited")
}
