package order

import "github.com/Abdelhameed97/bookshare-sub001/internal/money"

// ShippingRule is a pluggable shipping policy evaluated on the
// post-discount-free subtotal.
type ShippingRule interface {
	Fee(subtotal money.Money) money.Money
}

// ThresholdShipping charges a flat fee below the free-shipping threshold
// and nothing at or above it.
type ThresholdShipping struct {
	Threshold money.Money
	FlatFee   money.Money
}

func (r ThresholdShipping) Fee(subtotal money.Money) money.Money {
	if subtotal.LessThan(r.Threshold) {
		return r.FlatFee
	}
	return money.Zero()
}

// FreeShipping never charges. Useful for promotions and tests.
type FreeShipping struct{}

func (FreeShipping) Fee(money.Money) money.Money {
	return money.Zero()
}
