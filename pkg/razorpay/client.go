package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopperssay/backend/pkg/config"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.razorpay.com/v1"
	responseBodyReadLimit int64 = 1024
)

var errCredentialsRequired = errors.New("razorpay key id and secret are required")

// Client wraps the Razorpay Orders API used during checkout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Razorpay client from gateway credentials.
func NewClient(cfg config.RazorpayConfig, opts ...Option) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errCredentialsRequired
	}

	client := &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// KeyID returns the public gateway key handed to checkout clients.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// OrderRequest describes the payload sent to the orders API.
type OrderRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order holds the gateway order returned on creation.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder registers a new order with the gateway. Amounts are converted to
// the smallest currency unit, which is what the orders API expects.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "razorpay client not configured")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order currency is required")
	}

	body := struct {
		Amount   int64             `json:"amount"`
		Currency string            `json:"currency"`
		Receipt  string            `json:"receipt,omitempty"`
		Notes    map[string]string `json:"notes,omitempty"`
	}{
		Amount:   req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal order request")
	}

	url := fmt.Sprintf("%s/orders", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build order request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute order request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "order request failed")
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order response")
	}
	if strings.TrimSpace(order.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order response missing id")
	}

	return &order, nil
}

// VerifyPaymentSignature checks the checkout callback signature, an
// HMAC-SHA256 of "orderID|paymentID" keyed with the secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}

// VerifySignature implements the gateway's documented signature scheme.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	orderID = strings.TrimSpace(orderID)
	paymentID = strings.TrimSpace(paymentID)
	signature = strings.TrimSpace(signature)
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
