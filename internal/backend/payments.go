package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

// CreatePayment records a payment directly with the backend. Used by the
// cash-on-delivery flow, which has no provider handshake.
func (c *Client) CreatePayment(ctx context.Context, orderID string, method domain.PaymentMethod, amount float64) (domain.Payment, error) {
	body := struct {
		OrderID string  `json:"order_id"`
		Method  string  `json:"method"`
		Amount  float64 `json:"amount"`
		Status  string  `json:"status"`
	}{
		OrderID: orderID,
		Method:  string(method),
		Amount:  amount,
		Status:  string(domain.PaymentStatusPending),
	}

	var payment domain.Payment
	if err := c.do(ctx, http.MethodPost, "/payments", nil, body, &payment); err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

// PaymentByOrder looks up the payment attached to an order. A nil payment
// with nil error means no payment exists yet.
func (c *Client) PaymentByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := c.do(ctx, http.MethodGet, "/orders/"+orderID+"/payment", nil, nil, &payment)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// CreateStripeIntent asks the backend to mint a card payment intent.
func (c *Client) CreateStripeIntent(ctx context.Context, orderID string) (domain.PaymentIntent, error) {
	body := struct {
		OrderID string `json:"order_id"`
	}{OrderID: orderID}

	var resp struct {
		Success      bool   `json:"success"`
		ClientSecret string `json:"clientSecret"`
		PaymentID    string `json:"paymentId"`
	}
	if err := c.do(ctx, http.MethodPost, "/payments/stripe/intent", nil, body, &resp); err != nil {
		return domain.PaymentIntent{}, err
	}
	if !resp.Success || resp.ClientSecret == "" {
		return domain.PaymentIntent{}, fmt.Errorf("%w: intent response missing credential", ErrMalformedResponse)
	}
	return domain.PaymentIntent{ClientSecret: resp.ClientSecret, PaymentID: resp.PaymentID}, nil
}

// ConfirmStripePayment tells the backend to mark the card payment paid.
// Only this acknowledgment is authoritative; provider-side success alone
// never is.
func (c *Client) ConfirmStripePayment(ctx context.Context, paymentIntentID string) (domain.Payment, error) {
	body := struct {
		PaymentIntentID string `json:"payment_intent_id"`
	}{PaymentIntentID: paymentIntentID}

	var payment domain.Payment
	if err := c.do(ctx, http.MethodPost, "/payments/stripe/confirm", nil, body, &payment); err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

// CreatePaypalIntent starts a wallet payment and returns the redirect
// payload the browser is handed off to.
func (c *Client) CreatePaypalIntent(ctx context.Context, orderID string) (domain.WalletRedirect, error) {
	body := struct {
		OrderID string `json:"order_id"`
	}{OrderID: orderID}

	var redirect domain.WalletRedirect
	if err := c.do(ctx, http.MethodPost, "/payments/paypal/intent", nil, body, &redirect); err != nil {
		return domain.WalletRedirect{}, err
	}
	if redirect.ProviderRef == "" {
		return domain.WalletRedirect{}, fmt.Errorf("%w: redirect payload missing provider reference", ErrMalformedResponse)
	}
	return redirect, nil
}

// ConfirmPaypalPayment settles a wallet payment after the browser returned
// from the provider redirect, correlated by provider reference.
func (c *Client) ConfirmPaypalPayment(ctx context.Context, providerRef string) (domain.Payment, error) {
	body := struct {
		ProviderRef string `json:"provider_ref"`
	}{ProviderRef: providerRef}

	var payment domain.Payment
	if err := c.do(ctx, http.MethodPost, "/payments/paypal/confirm", nil, body, &payment); err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

// MyPayments returns the caller's historical payments joined with a
// minimal order projection.
func (c *Client) MyPayments(ctx context.Context) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	if err := c.do(ctx, http.MethodGet, "/payments/mine", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
