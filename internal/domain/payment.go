package domain

import "github.com/Abdelhameed97/bookshare-sub001/internal/money"

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCash   PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Payment struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"order_id"`
	Method      PaymentMethod `json:"method"`
	ProviderRef string        `json:"provider_ref,omitempty"`
	Status      PaymentStatus `json:"status"`
	Amount      money.Money   `json:"amount"`
}

// Active reports whether this payment blocks a new attempt for the same
// order. Only a failed payment may be superseded.
func (p Payment) Active() bool {
	return p.Status != PaymentStatusFailed
}

// PaymentIntent is a short-lived, provider-minted credential consumed
// exactly once by the client-side card confirmation. Never persisted
// beyond the active checkout.
type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
	PaymentID    string `json:"paymentId"`
}
