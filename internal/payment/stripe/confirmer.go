// Package stripe confirms card payment intents directly against the
// provider API, playing the role the browser-side SDK plays in the web
// storefront.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abdelhameed97/bookshare-sub001/internal/payment"
)

const defaultBaseURL = "https://api.stripe.com"

type Confirmer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Confirmer)

func WithBaseURL(u string) Option {
	return func(c *Confirmer) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Confirmer) { c.httpClient = hc }
}

func NewConfirmer(apiKey string, opts ...Option) *Confirmer {
	c := &Confirmer{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConfirmCardPayment confirms the intent behind the client secret. A
// decline comes back as a ProviderError carrying the provider's own
// message, untouched.
func (c *Confirmer) ConfirmCardPayment(ctx context.Context, clientSecret string, details payment.CardDetails) error {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("client_secret", clientSecret)
	form.Set("payment_method_data[type]", "card")
	form.Set("payment_method_data[billing_details][name]", details.Name)
	form.Set("payment_method_data[billing_details][email]", details.Email)

	endpoint := fmt.Sprintf("%s/v1/payment_intents/%s/confirm", c.baseURL, intentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build confirm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Message == "" {
		return &payment.ProviderError{Reason: fmt.Sprintf("card confirmation failed with status %d", resp.StatusCode)}
	}
	return &payment.ProviderError{Reason: body.Error.Message}
}

// intentIDFromSecret extracts the intent id from a client secret of the
// form "pi_123_secret_456".
func intentIDFromSecret(clientSecret string) (string, error) {
	idx := strings.Index(clientSecret, "_secret_")
	if idx <= 0 {
		return "", fmt.Errorf("malformed client secret")
	}
	return clientSecret[:idx], nil
}
