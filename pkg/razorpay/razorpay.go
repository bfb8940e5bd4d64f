package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	rzp "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// Config holds the Razorpay API credentials. The key secret doubles as the
// HMAC key for webhook-less payment verification.
type Config struct {
	KeyID     string
	KeySecret string
}

// Client wraps the Razorpay SDK for the two operations the checkout flow
// needs: creating a provider-side order and verifying a payment signature.
type Client struct {
	api    *rzp.Client
	secret []byte
}

// NewClient creates a Razorpay client from API credentials.
func NewClient(cfg Config) *Client {
	return &Client{
		api:    rzp.NewClient(cfg.KeyID, cfg.KeySecret),
		secret: []byte(cfg.KeySecret),
	}
}

// CreateOrder registers a payment intent with Razorpay and returns the
// provider order id. Amount is in currency units; Razorpay wants the
// smallest denomination, so it is converted to paise here.
func (c *Client) CreateOrder(amount float64, currency, receipt string) (string, error) {
	paise := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	data := map[string]interface{}{
		"amount":   paise,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create failed: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay order create: response has no order id")
	}
	return id, nil
}

// VerifySignature checks the client-asserted payment proof against
// HMAC-SHA256(secret, orderID + "|" + paymentID). Comparison is constant
// time; a mismatch means the payment claim cannot be trusted.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
