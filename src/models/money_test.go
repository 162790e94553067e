package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want Money
	}{
		{in: 0, want: 0},
		{in: 75.90, want: 7590},
		{in: 0.1, want: 10},
		{in: 1412.00, want: 141200},
		{in: 99.99, want: 9999},
		{in: -50.25, want: -5025},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MoneyFromFloat(tt.in), "in=%v", tt.in)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("MulRate rounds to cent", func(t *testing.T) {
		assert.Equal(t, Money(900000), Money(15000000).MulRate(0.06))
		assert.Equal(t, Money(55000), Money(500000).MulRate(0.11))
		assert.Equal(t, Money(33), Money(333).MulRate(0.1))
	})

	t.Run("DivBy guards zero divisor", func(t *testing.T) {
		assert.Equal(t, Money(0), Money(12345).DivBy(0))
		assert.Equal(t, Money(500000), Money(6000000).DivBy(12))
	})

	t.Run("sums stay exact where floats would drift", func(t *testing.T) {
		// 0.10 added a thousand times is exactly 100.00 in cents.
		var total Money
		for i := 0; i < 1000; i++ {
			total += MoneyFromFloat(0.10)
		}
		assert.Equal(t, Money(10000), total)
	})
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshals as plain decimal", func(t *testing.T) {
		out, err := json.Marshal(Money(7590))
		require.NoError(t, err)
		assert.Equal(t, "75.90", string(out))

		out, err = json.Marshal(Money(0))
		require.NoError(t, err)
		assert.Equal(t, "0.00", string(out))
	})

	t.Run("unmarshals numbers and numeric strings", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`150.00`), &m))
		assert.Equal(t, Money(15000), m)

		require.NoError(t, json.Unmarshal([]byte(`"75.90"`), &m))
		assert.Equal(t, Money(7590), m)

		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
	})

	t.Run("round trips", func(t *testing.T) {
		orig := Money(123456789)
		out, err := json.Marshal(orig)
		require.NoError(t, err)
		var back Money
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, orig, back)
	})
}
