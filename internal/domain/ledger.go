package domain

import "github.com/Abdelhameed97/bookshare-sub001/internal/money"

// LedgerOrder is the minimal order projection joined onto a historical
// payment for the payments ledger.
type LedgerOrder struct {
	ID     string      `json:"id"`
	Status OrderStatus `json:"status"`
	Total  money.Money `json:"total"`
}

type LedgerEntry struct {
	Payment
	Order LedgerOrder `json:"order"`
}

// WalletRedirect is the provider redirect payload for wallet payments.
// The provider reference survives the browser leaving the page and is the
// correlation key for resuming the flow afterwards.
type WalletRedirect struct {
	ProviderRef string `json:"provider_ref"`
	RedirectURL string `json:"redirect_url"`
}
