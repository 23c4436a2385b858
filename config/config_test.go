package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_test_secret")
	t.Setenv("POSTGRES_USER", "luxe")
	t.Setenv("POSTGRES_PASSWORD", "luxe")
	t.Setenv("POSTGRES_DB", "luxe")
	t.Setenv("POSTGRES_HOST", "localhost")
}

func TestLoadConfig_Defaults(t *testing.T) {
	baseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "razorpay", cfg.PaymentProvider)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, "static", cfg.CatalogStore)
	assert.Equal(t, "postgres", cfg.OrderStore)
	assert.Equal(t, "none", cfg.EventsBackend)
	assert.Equal(t, 30*24*time.Hour, cfg.CartTTL)
	assert.Equal(t, 2*time.Hour, cfg.CheckoutIdleTTL)
	assert.True(t, cfg.NeedsPostgres())
}

func TestLoadConfig_Overrides(t *testing.T) {
	baseEnv(t)
	t.Setenv("PAYMENT_CURRENCY", "usd")
	t.Setenv("CART_TTL", "1h")
	t.Setenv("CHECKOUT_IDLE_TTL", "garbage")
	t.Setenv("CATALOG_STORE", "DynamoDB")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, time.Hour, cfg.CartTTL)
	assert.Equal(t, 2*time.Hour, cfg.CheckoutIdleTTL)
	assert.Equal(t, "dynamodb", cfg.CatalogStore)
	assert.True(t, cfg.NeedsAWS())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown provider", map[string]string{"PAYMENT_PROVIDER": "paypal"}},
		{"stripe without keys", map[string]string{"PAYMENT_PROVIDER": "stripe"}},
		{"unknown order store", map[string]string{"ORDER_STORE": "sqlite"}},
		{"sns without topic", map[string]string{"EVENTS_BACKEND": "sns"}},
		{"sqs without queue", map[string]string{"EVENTS_BACKEND": "sqs"}},
		{"postgres without host", map[string]string{"POSTGRES_HOST": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			baseEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_SQSQueueByName(t *testing.T) {
	baseEnv(t)
	t.Setenv("EVENTS_BACKEND", "sqs")
	t.Setenv("ORDER_EVENTS_QUEUE", "order-events")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "order-events", cfg.OrderEventsQueue)
}

func TestPostgresDSN(t *testing.T) {
	baseEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t,
		"host=localhost user=luxe password=luxe dbname=luxe port=5432 sslmode=disable TimeZone=Asia/Kolkata",
		cfg.PostgresDSN())
}
