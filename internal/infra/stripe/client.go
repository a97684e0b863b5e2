package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Intent is the provider-side payment handle returned for an order.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Client calls the payment provider's REST API. Request signing and webhook
// signature verification live on the provider/edge side; this client only
// creates and reads intents.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateIntent opens a payment intent for amountCents, tagged with the order
// id so webhook events can be correlated back.
func (c *Client) CreateIntent(ctx context.Context, amountCents int64, currency string, orderID uint64) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("metadata[order_id]", strconv.FormatUint(orderID, 10))

	return c.do(ctx, http.MethodPost, "/v1/payment_intents", form)
}

// GetIntent reads the current provider-side state of an intent.
func (c *Client) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	return c.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*Intent, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payment provider returned status %d: %s", resp.StatusCode, string(b))
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
