package carry

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate_String(t *testing.T) {
	tests := []struct {
		rate   Rate
		want   string
		signed string
	}{
		{Pct(32), "32.00%", "+32.00%"},
		{R(0.325), "32.50%", "+32.50%"},
		{Pct(-1.234), "-1.23%", "-1.23%"},
		{Rate{}, "0.00%", "-"},
		{Pct(0.001), "0.00%", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rate.String())
			assert.Equal(t, tt.signed, tt.rate.SignedString())
		})
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	sum := M(0, "").Add(M(10, ARS))
	assert.Equal(t, ARS, sum.Currency())
	assert.True(t, sum.Equal(M(10, ARS)))

	assert.Equal(t, "1.50", M(1.5, "").String())
	assert.Equal(t, "-", M(0.001, "").SignedString())
	assert.Panics(t, func() { M(1, ARS).Add(M(1, "USD")) })
}

func TestMoney_Ratio(t *testing.T) {
	assert.True(t, M(25, ARS).Ratio(M(100, ARS)).Equal(R(0.25)))
	assert.True(t, M(25, ARS).Ratio(M(0, ARS)).IsZero(), "a zero divisor is a zero ratio")
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(M(decimal.RequireFromString("1006136.99"), ARS))
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"ARS","amount":"1006136.99"}`, string(b))

	var m Money
	require.NoError(t, json.Unmarshal(b, &m))
	assert.True(t, m.Equal(M(1006136.99, ARS)))
}

func TestPow(t *testing.T) {
	r, ok := pow(decimal.NewFromInt(2), decimal.NewFromInt(10))
	require.True(t, ok)
	assert.True(t, r.Equal(decimal.NewFromInt(1024)))

	r, ok = pow(decimal.NewFromInt(4), decimal.RequireFromString("0.5"))
	require.True(t, ok)
	assert.Equal(t, "2.00", r.StringFixed(2))

	_, ok = pow(decimal.NewFromInt(-4), decimal.RequireFromString("0.5"))
	assert.False(t, ok)
}
