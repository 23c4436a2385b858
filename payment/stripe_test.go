package payment_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/yashrajoria/luxe-storefront/payment"
)

func signedEvent(t *testing.T, secret, eventType, object string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestStripeParseWebhook_PaymentIntentSucceeded(t *testing.T) {
	client := payment.NewStripeClient("sk_test", "whsec_test", "INR")
	payload, header := signedEvent(t, "whsec_test", "payment_intent.succeeded",
		`{"id":"pi_123","object":"payment_intent","latest_charge":"ch_456"}`)

	success, ok, err := client.ParseWebhook(payload, header)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pi_123", success.OrderID)
	assert.Equal(t, "ch_456", success.PaymentID)
}

func TestStripeParseWebhook_IgnoredType(t *testing.T) {
	client := payment.NewStripeClient("sk_test", "whsec_test", "INR")
	payload, header := signedEvent(t, "whsec_test", "charge.refunded", `{"id":"ch_1","object":"charge"}`)

	_, ok, err := client.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStripeParseWebhook_BadSignature(t *testing.T) {
	client := payment.NewStripeClient("sk_test", "whsec_test", "INR")
	payload, header := signedEvent(t, "whsec_other", "payment_intent.succeeded", `{"id":"pi_1","object":"payment_intent"}`)

	_, _, err := client.ParseWebhook(payload, header)
	assert.Error(t, err)
}
