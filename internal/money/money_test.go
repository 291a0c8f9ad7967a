package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat_RoundsToCents(t *testing.T) {
	m := FromFloat(19.999)
	assert.Equal(t, "20.00", m.String())

	m = FromFloat(19.994)
	assert.Equal(t, "19.99", m.String())
}

func TestArithmetic(t *testing.T) {
	a := FromFloat(100)
	b := FromFloat(50.5)

	assert.Equal(t, "150.50", a.Add(b).String())
	assert.Equal(t, "49.50", a.Sub(b).String())
	assert.Equal(t, "202.00", b.MulInt(4).String())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "20.00", FromFloat(200).Percent(10).String())
	assert.Equal(t, "33.33", FromFloat(99.99).Percent(33.333).String())
	assert.Equal(t, "0.00", FromFloat(100).Percent(0).String())
}

func TestMin(t *testing.T) {
	a := FromFloat(30)
	b := FromFloat(20)
	assert.True(t, a.Min(b).Equal(b))
	assert.True(t, b.Min(a).Equal(b))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1999), FromFloat(19.99).Cents())
	assert.Equal(t, int64(500), FromCents(500).Cents())
}

func TestZeroValueIsUsable(t *testing.T) {
	var m Money
	assert.True(t, m.IsZero())
	assert.Equal(t, "5.00", m.Add(FromFloat(5)).String())
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(FromFloat(75.5))
	require.NoError(t, err)
	assert.Equal(t, "75.50", string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte("12.34"), &m))
	assert.Equal(t, "12.34", m.String())

	// quoted numbers are accepted as well
	require.NoError(t, json.Unmarshal([]byte(`"8.5"`), &m))
	assert.Equal(t, "8.50", m.String())

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}
