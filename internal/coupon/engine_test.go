package coupon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

type fakeBackend struct {
	coupon domain.Coupon
	err    error
	calls  int
}

func (f *fakeBackend) ApplyCoupon(_ context.Context, code string, _ float64) (domain.Coupon, error) {
	f.calls++
	if f.err != nil {
		return domain.Coupon{}, f.err
	}
	return f.coupon, nil
}

func TestApply_FixedCoupon(t *testing.T) {
	api := &fakeBackend{coupon: domain.Coupon{Code: "SAVE20", Kind: domain.CouponKindFixed, Value: 20}}
	engine := NewEngine(api, zap.NewNop())

	coupon, discount, err := engine.Apply(context.Background(), "SAVE20", money.FromFloat(200))
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", coupon.Code)
	assert.Equal(t, "20.00", discount.String())
	assert.Equal(t, "20.00", engine.Discount().String())
}

func TestApply_PercentCoupon(t *testing.T) {
	api := &fakeBackend{coupon: domain.Coupon{Code: "TEN", Kind: domain.CouponKindPercent, Value: 10}}
	engine := NewEngine(api, zap.NewNop())

	_, discount, err := engine.Apply(context.Background(), "TEN", money.FromFloat(150))
	require.NoError(t, err)
	assert.Equal(t, "15.00", discount.String())
}

func TestApply_FixedCouponClampedToSubtotal(t *testing.T) {
	api := &fakeBackend{coupon: domain.Coupon{Code: "BIG", Kind: domain.CouponKindFixed, Value: 500}}
	engine := NewEngine(api, zap.NewNop())

	_, discount, err := engine.Apply(context.Background(), "BIG", money.FromFloat(80))
	require.NoError(t, err)
	assert.Equal(t, "80.00", discount.String())
}

func TestApply_EmptyCodeRejectedBeforeNetwork(t *testing.T) {
	api := &fakeBackend{}
	engine := NewEngine(api, zap.NewNop())

	_, _, err := engine.Apply(context.Background(), "   ", money.FromFloat(100))
	assert.ErrorIs(t, err, ErrEmptyCode)
	assert.Equal(t, 0, api.calls)
}

func TestApply_ServerRejection(t *testing.T) {
	api := &fakeBackend{err: errors.New("invalid coupon code")}
	engine := NewEngine(api, zap.NewNop())

	_, _, err := engine.Apply(context.Background(), "NOPE", money.FromFloat(100))
	require.Error(t, err)
	assert.Nil(t, engine.Applied())
	assert.True(t, engine.Discount().IsZero())
}

func TestRemove_Idempotent(t *testing.T) {
	api := &fakeBackend{coupon: domain.Coupon{Code: "SAVE20", Kind: domain.CouponKindFixed, Value: 20}}
	engine := NewEngine(api, zap.NewNop())

	_, _, err := engine.Apply(context.Background(), "SAVE20", money.FromFloat(200))
	require.NoError(t, err)

	engine.Remove()
	first := engine.Discount()
	firstApplied := engine.Applied()

	engine.Remove()
	assert.Equal(t, first, engine.Discount())
	assert.Equal(t, firstApplied, engine.Applied())
	assert.True(t, engine.Discount().IsZero())
	assert.Nil(t, engine.Applied())
}
