package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.razorpay.com"

var (
	// ErrSignatureVerification means the callback's signature does not match
	// HMAC-SHA256(order_id|payment_id) under the shared secret.
	ErrSignatureVerification = errors.New("razorpay: signature verification failed")

	// ErrGatewayUnavailable covers network and timeout failures reaching the
	// gateway. Callers surface it generically; there is no automatic retry.
	ErrGatewayUnavailable = errors.New("razorpay: gateway unavailable")
)

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay: api error (%d) %s: %s", e.StatusCode, e.Code, e.Description)
}

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string        // defaults to DefaultBaseURL
	Timeout   time.Duration // defaults to 10s
}

// Client is constructed once at process start from externally supplied
// credentials and passed explicitly to the checkout workflow.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, errors.New("razorpay: key id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   cfg.BaseURL,
		http:      &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// KeyID is needed by clients to open the hosted checkout form.
func (c *Client) KeyID() string { return c.keyID }

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers a payment intent with the gateway and returns its
// opaque order identifier. Amount is in minor units (paise).
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error) {
	if amountPaise <= 0 {
		return "", fmt.Errorf("razorpay: invalid amount %d", amountPaise)
	}
	payload := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	var resp orderResponse
	if err := c.post(ctx, "/v1/orders", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("razorpay: empty order id in response")
	}
	return resp.ID, nil
}

type paymentResponse struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Status string `json:"status"`
	Email  string `json:"email"`
}

// FetchPayment returns the payment method metadata for a captured payment, to
// be stored on the order.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (method string, err error) {
	var resp paymentResponse
	if err := c.get(ctx, "/v1/payments/"+paymentID, &resp); err != nil {
		return "", err
	}
	return resp.Method, nil
}

// VerifySignature checks the callback signature: hex(HMAC-SHA256 of
// "<order_id>|<payment_id>" under the key secret), compared in constant time.
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrSignatureVerification
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Description != "" {
			return &APIError{
				StatusCode:  resp.StatusCode,
				Code:        apiErr.Error.Code,
				Description: apiErr.Error.Description,
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Description: string(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("razorpay: failed to parse response: %v", err)
		}
	}
	return nil
}
