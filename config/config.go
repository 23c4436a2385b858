package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	aws_pkg "github.com/yashrajoria/luxe-storefront/pkg/aws"
)

type Config struct {
	Env            string
	ServiceName    string
	Port           string
	AllowedOrigins string

	RedisURL string
	CartTTL  time.Duration

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	OrderStore   string // postgres | mongo
	MongoURI     string
	MongoDB      string
	CatalogStore string // static | postgres | dynamodb
	ProductTable string

	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSUseSecrets      bool
	SecretsName        string

	ProductImagesBucket  string
	ProductImagesBaseURL string

	PaymentProvider      string // razorpay | stripe
	Currency             string
	StoreName            string
	StoreDescription     string
	RazorpayBaseURL      string
	RazorpayKeyID        string
	RazorpayKeySecret    string
	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string

	EventsBackend       string // none | sns | sqs | kafka
	OrderEventsTopicARN string
	OrderEventsQueueURL string
	OrderEventsQueue    string
	KafkaBrokers        string
	KafkaTopic          string

	JWTSecret string

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string

	CheckoutIdleTTL       time.Duration
	PaymentWidgetTTL      time.Duration
	PaymentConfirmTimeout time.Duration
	PaymentGatewayTimeout time.Duration
}

// LoadConfig reads the environment (and a .env file when present) and validates that the
// selected backends have what they need.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		ServiceName:    getEnv("SERVICE_NAME", "storefront"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		CartTTL:  getDuration("CART_TTL", 30*24*time.Hour),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),

		OrderStore:   strings.ToLower(getEnv("ORDER_STORE", "postgres")),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "storefront"),
		CatalogStore: strings.ToLower(getEnv("CATALOG_STORE", "static")),
		ProductTable: getEnv("PRODUCT_TABLE", "products"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpoint:        os.Getenv("AWS_ENDPOINT"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSUseSecrets:      getBool("AWS_USE_SECRETS", false),
		SecretsName:        getEnv("AWS_SECRETS_NAME", "storefront/credentials"),

		ProductImagesBucket:  getEnv("PRODUCT_IMAGES_BUCKET", "products"),
		ProductImagesBaseURL: os.Getenv("PRODUCT_IMAGES_BASE_URL"),

		PaymentProvider:      strings.ToLower(getEnv("PAYMENT_PROVIDER", "razorpay")),
		Currency:             strings.ToUpper(getEnv("PAYMENT_CURRENCY", "INR")),
		StoreName:            getEnv("STORE_NAME", "LUXE STORE"),
		StoreDescription:     getEnv("STORE_DESCRIPTION", "Premium Tech Purchase"),
		RazorpayBaseURL:      getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RazorpayKeyID:        os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:    os.Getenv("RAZORPAY_KEY_SECRET"),
		StripeSecretKey:      os.Getenv("STRIPE_API_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),

		EventsBackend:       strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		OrderEventsQueueURL: os.Getenv("ORDER_EVENTS_QUEUE_URL"),
		OrderEventsQueue:    os.Getenv("ORDER_EVENTS_QUEUE"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "order.completed"),

		JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),

		CloudWatchEnabled:   getBool("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "LuxeStorefront"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/luxe/storefront"),

		CheckoutIdleTTL:       getDuration("CHECKOUT_IDLE_TTL", 2*time.Hour),
		PaymentWidgetTTL:      getDuration("PAYMENT_WIDGET_TTL", time.Hour),
		PaymentConfirmTimeout: getDuration("PAYMENT_CONFIRM_TIMEOUT", 15*time.Second),
		PaymentGatewayTimeout: getDuration("PAYMENT_GATEWAY_TIMEOUT", 15*time.Second),
	}

	return cfg, nil
}

// ApplySecrets overrides credentials with values from an AWS Secrets Manager JSON secret.
// Keys use the same names as the environment variables they replace.
func (c *Config) ApplySecrets(ctx context.Context, sm *aws_pkg.SecretsClient) error {
	m, err := sm.GetSecretMap(ctx, c.SecretsName)
	if err != nil {
		return err
	}
	override := func(dst *string, key string) {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	override(&c.PostgresUser, "POSTGRES_USER")
	override(&c.PostgresPassword, "POSTGRES_PASSWORD")
	override(&c.PostgresDB, "POSTGRES_DB")
	override(&c.PostgresHost, "POSTGRES_HOST")
	override(&c.PostgresPort, "POSTGRES_PORT")
	override(&c.MongoURI, "MONGO_URI")
	override(&c.RazorpayKeyID, "RAZORPAY_KEY_ID")
	override(&c.RazorpayKeySecret, "RAZORPAY_KEY_SECRET")
	override(&c.StripeSecretKey, "STRIPE_API_KEY")
	override(&c.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	override(&c.JWTSecret, "JWT_SECRET")
	return nil
}

// Validate checks that every selected backend is fully configured.
func (c *Config) Validate() error {
	if c.NeedsPostgres() {
		if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "" {
			return fmt.Errorf("database config incomplete")
		}
	}

	switch c.OrderStore {
	case "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported ORDER_STORE %q", c.OrderStore)
	}

	switch c.CatalogStore {
	case "static", "postgres", "dynamodb":
	default:
		return fmt.Errorf("unsupported CATALOG_STORE %q", c.CatalogStore)
	}

	switch c.PaymentProvider {
	case "razorpay":
		if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
		}
	case "stripe":
		if c.StripeSecretKey == "" || c.StripeWebhookSecret == "" || c.StripePublishableKey == "" {
			return fmt.Errorf("STRIPE_API_KEY, STRIPE_PUBLISHABLE_KEY and STRIPE_WEBHOOK_SECRET are required")
		}
	default:
		return fmt.Errorf("unsupported PAYMENT_PROVIDER %q", c.PaymentProvider)
	}

	switch c.EventsBackend {
	case "none", "kafka":
	case "sns":
		if c.OrderEventsTopicARN == "" {
			return fmt.Errorf("ORDER_EVENTS_TOPIC_ARN is required for the sns events backend")
		}
	case "sqs":
		if c.OrderEventsQueueURL == "" && c.OrderEventsQueue == "" {
			return fmt.Errorf("ORDER_EVENTS_QUEUE_URL or ORDER_EVENTS_QUEUE is required for the sqs events backend")
		}
	default:
		return fmt.Errorf("unsupported EVENTS_BACKEND %q", c.EventsBackend)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) NeedsPostgres() bool {
	return c.OrderStore == "postgres" || c.CatalogStore == "postgres"
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.AWSUseSecrets || c.CloudWatchEnabled || c.CatalogStore == "dynamodb" ||
		c.EventsBackend == "sns" || c.EventsBackend == "sqs" || c.ProductImagesBucket != ""
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}
