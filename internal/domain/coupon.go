package domain

import "github.com/Abdelhameed97/bookshare-sub001/internal/money"

type CouponKind string

const (
	CouponKindFixed   CouponKind = "fixed"
	CouponKindPercent CouponKind = "percent"
)

// Coupon is a server-validated discount code. The kind and value come from
// the backend; the client never maps a code to a value on its own.
type Coupon struct {
	Code  string     `json:"code"`
	Kind  CouponKind `json:"type"`
	Value float64    `json:"value"`
}

// Discount computes the discount this coupon yields on a subtotal,
// clamped so it never exceeds the subtotal.
func (c Coupon) Discount(subtotal money.Money) money.Money {
	var d money.Money
	switch c.Kind {
	case CouponKindFixed:
		d = money.FromFloat(c.Value)
	case CouponKindPercent:
		d = subtotal.Percent(c.Value)
	default:
		return money.Zero()
	}
	if d.IsNegative() {
		return money.Zero()
	}
	return d.Min(subtotal)
}
