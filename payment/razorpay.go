package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yashrajoria/luxe-storefront/models"
)

const DefaultRazorpayBaseURL = "https://api.razorpay.com"

// RazorpayClient creates Razorpay orders over the REST API.
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	currency  string
	client    *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret, currency string, timeout time.Duration) *RazorpayClient {
	if baseURL == "" {
		baseURL = DefaultRazorpayBaseURL
	}
	return &RazorpayClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		client:    &http.Client{Timeout: timeout},
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Error    *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder posts the amount in minor units. A response carrying an error object is
// returned as *GatewayError whatever its status code.
func (r *RazorpayClient) CreateOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	payload, err := json.Marshal(razorpayOrderRequest{
		Amount:   ToMinorUnits(amount),
		Currency: r.currency,
		Receipt:  "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20],
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read razorpay response: %w", err)
	}

	var out razorpayOrderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(body))}
	}
	if out.Error != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Code: out.Error.Code, Description: out.Error.Description}
	}
	if resp.StatusCode >= 400 || out.ID == "" {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Description: "unexpected order response"}
	}

	return &models.GatewayOrder{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
	}, nil
}
