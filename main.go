package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/yashrajoria/luxe-storefront/cart"
	"github.com/yashrajoria/luxe-storefront/catalog"
	"github.com/yashrajoria/luxe-storefront/checkout"
	"github.com/yashrajoria/luxe-storefront/common/auth"
	apperrors "github.com/yashrajoria/luxe-storefront/common/errors"
	"github.com/yashrajoria/luxe-storefront/common/logger"
	"github.com/yashrajoria/luxe-storefront/common/middleware"
	"github.com/yashrajoria/luxe-storefront/config"
	"github.com/yashrajoria/luxe-storefront/controllers"
	"github.com/yashrajoria/luxe-storefront/database"
	"github.com/yashrajoria/luxe-storefront/events"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/payment"
	aws_pkg "github.com/yashrajoria/luxe-storefront/pkg/aws"
	ddb "github.com/yashrajoria/luxe-storefront/pkg/dynamodb"
	"github.com/yashrajoria/luxe-storefront/repository"
	"github.com/yashrajoria/luxe-storefront/routes"
	"github.com/yashrajoria/luxe-storefront/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log := logger.Initialize(cfg.Env)
	// log is replaced by the CloudWatch tee below; sync whichever is current at exit
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// --- AWS setup ---
	var awsCfg sdkaws.Config
	if cfg.NeedsAWS() {
		awsCfg, err = aws_pkg.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSEndpoint, aws_pkg.StaticCredentials{
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		if cfg.AWSUseSecrets {
			if err := cfg.ApplySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg)); err != nil {
				log.Fatal("Failed to load secrets", zap.Error(err))
			}
		}
		if cfg.CloudWatchEnabled {
			w, err := aws_pkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.CloudWatchLogGroup, cfg.ServiceName)
			if err != nil {
				log.Warn("CloudWatch Logs writer init failed (non-fatal)", zap.Error(err))
			} else {
				log = logger.InitializeWithWriter(cfg.Env, w)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	var metricsClient *aws_pkg.MetricsClient
	if cfg.CloudWatchEnabled {
		metricsClient = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
	}

	// --- Storage ---
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}
	carts := cart.NewManager(cart.NewRedisStorage(redisClient, cfg.CartTTL), log)

	var db *gorm.DB
	if cfg.NeedsPostgres() {
		var migrate []interface{}
		if cfg.OrderStore == "postgres" {
			migrate = append(migrate, &models.Order{})
		}
		if cfg.CatalogStore == "postgres" {
			migrate = append(migrate, &models.ProductRecord{})
		}
		db, err = database.ConnectPostgres(cfg.PostgresDSN(), log, migrate...)
		if err != nil {
			log.Fatal("DB connection failed", zap.Error(err))
		}
	}

	var mongoClient *mongo.Client
	var orderRepo repository.OrderRepository
	switch cfg.OrderStore {
	case "mongo":
		var mdb *mongo.Database
		mongoClient, mdb, err = database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB, log)
		if err != nil {
			log.Fatal("MongoDB connection failed", zap.Error(err))
		}
		mongoRepo := repository.NewMongoOrderRepository(mdb)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal("MongoDB index setup failed", zap.Error(err))
		}
		orderRepo = mongoRepo
	default:
		orderRepo = repository.NewGormOrderRepository(db)
	}

	// --- Catalog ---
	defaults, err := catalog.Default()
	if err != nil {
		log.Fatal("Embedded catalog is invalid", zap.Error(err))
	}
	var source catalog.Source = defaults
	var productRepo repository.ProductRepository
	switch cfg.CatalogStore {
	case "postgres":
		productRepo = repository.NewGormProductRepository(db)
	case "dynamodb":
		client := ddb.NewClientFromConfig(awsCfg)
		if err := ddb.EnsureTable(ctx, client, cfg.ProductTable, repository.ProductHashKey); err != nil {
			log.Fatal("DynamoDB table setup failed", zap.Error(err))
		}
		productRepo = repository.NewDynamoProductRepository(client, cfg.ProductTable)
	}
	if productRepo != nil {
		seed, _ := defaults.List(ctx)
		if err := catalog.Seed(ctx, productRepo, seed, log); err != nil {
			log.Warn("Catalog seed failed (non-fatal)", zap.Error(err))
		}
		source = catalog.NewRepositorySource(productRepo)
	}

	// --- Payments ---
	var (
		orderCreator payment.OrderCreator
		deliverer    controllers.PaymentDeliverer
		webhooks     controllers.WebhookParser
		widgetSecret string
		branding     = checkout.Branding{
			Provider:    cfg.PaymentProvider,
			Name:        cfg.StoreName,
			Description: cfg.StoreDescription,
		}
	)
	switch cfg.PaymentProvider {
	case payment.ProviderStripe:
		stripeClient := payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.Currency)
		orderCreator = stripeClient
		webhooks = stripeClient
		branding.Key = cfg.StripePublishableKey
	default:
		orderCreator = payment.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret,
			cfg.Currency, cfg.PaymentGatewayTimeout)
		widgetSecret = cfg.RazorpayKeySecret
		branding.Key = cfg.RazorpayKeyID
	}
	widget := payment.NewHostedWidget(widgetSecret, cfg.PaymentWidgetTTL, log).WithMetrics(metricsClient)
	if cfg.PaymentProvider != payment.ProviderStripe {
		deliverer = widget
	}

	// --- Events ---
	var publisher events.Publisher = events.Noop{}
	switch cfg.EventsBackend {
	case "sns":
		publisher = events.NewSNSPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN)
	case "sqs":
		queueURL := cfg.OrderEventsQueueURL
		if queueURL == "" {
			queueURL, err = aws_pkg.GetQueueURL(ctx, awsCfg, cfg.OrderEventsQueue)
			if err != nil {
				log.Fatal("Failed to resolve order events queue", zap.String("queue", cfg.OrderEventsQueue), zap.Error(err))
			}
		}
		publisher = events.NewSQSPublisher(aws_pkg.NewSQSClient(awsCfg, queueURL))
	case "kafka":
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic))
	}

	flows := checkout.NewRegistry(checkout.Deps{
		Payments: orderCreator,
		Widget:   widget,
		Orders:   orderRepo,
		Carts:    carts,
		Events:   publisher,
		Metrics:  metricsClient,
		Log:      log,
		Branding: branding,
	}, cfg.CheckoutIdleTTL)

	bgCtx, stopBackground := context.WithCancel(ctx)
	go widget.Run(bgCtx)
	go flows.Run(bgCtx)

	limiter := middleware.NewRateLimiter(rate.Limit(20), 40, 10*time.Minute)
	go limiter.Run(bgCtx)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware(metricsClient, cfg.ServiceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(limiter))
	r.Use(apperrors.ErrorMiddleware())

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- Dependency injection ---
	tokens := auth.NewTokenParser(cfg.JWTSecret)
	session := middleware.Session(int(cfg.CartTTL.Seconds()), cfg.Env == "production")

	orderService := services.NewOrderService(orderRepo, log)

	routes.RegisterCatalogRoutes(r, controllers.NewCatalogController(source))
	routes.RegisterCartRoutes(r, controllers.NewCartController(carts, source), session)
	routes.RegisterCheckoutRoutes(r,
		controllers.NewCheckoutController(flows, carts, deliverer, cfg.PaymentConfirmTimeout), session, tokens)
	routes.RegisterPaymentRoutes(r, controllers.NewPaymentController(orderCreator, webhooks, widget))
	routes.RegisterOrderRoutes(r, controllers.NewOrderController(orderService), tokens)

	if productRepo != nil {
		var uploader aws_pkg.ObjectUploader
		if cfg.ProductImagesBucket != "" {
			uploader = aws_pkg.NewS3Uploader(awsCfg, cfg.ProductImagesBucket, cfg.ProductImagesBaseURL)
		}
		productService := services.NewProductService(productRepo, uploader, log)
		routes.RegisterProductRoutes(r, controllers.NewProductController(productService), tokens)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": cfg.ServiceName})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Storefront started",
			zap.String("port", cfg.Port),
			zap.String("payment_provider", cfg.PaymentProvider),
			zap.String("catalog_store", cfg.CatalogStore),
			zap.String("order_store", cfg.OrderStore),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	stopBackground()

	if err := publisher.Close(); err != nil {
		log.Error("Event publisher close error", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		log.Error("Redis close error", zap.Error(err))
	}
	if err := database.ClosePostgres(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}
	if err := database.DisconnectMongo(shutdownCtx, mongoClient); err != nil {
		log.Error("MongoDB close error", zap.Error(err))
	}

	log.Info("Storefront stopped gracefully")
}
