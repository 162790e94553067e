package tax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/models"
)

func TestParseRegime(t *testing.T) {
	tests := []struct {
		input   string
		want    Regime
		wantErr bool
	}{
		{input: "mei", want: RegimeMEI},
		{input: "simples", want: RegimeSimples},
		{input: "autonomo", want: RegimeAutonomo},
		{input: "", wantErr: true},
		{input: "MEI", wantErr: true},
		{input: "lucro_presumido", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegime(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownRegime))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateMEIFlatFee(t *testing.T) {
	rules := DefaultRuleSet()

	// The DAS is constant regardless of income.
	for _, net := range []models.Money{0, 80000, 1500000, 8100000, 50000000} {
		estimate, err := Calculate(rules, RegimeMEI, net, net)
		require.NoError(t, err)
		assert.Equal(t, rules.MEIMonthlyDAS, estimate.Total, "net=%s", net)
		assert.Equal(t, rules.MEIMonthlyDAS, estimate.DAS)
		assert.Equal(t, models.Money(0), estimate.INSS)
		assert.Equal(t, models.Money(0), estimate.IRPF)
	}
}

func TestCalculateSimplesBands(t *testing.T) {
	rules := DefaultRuleSet()

	tests := []struct {
		name string
		net  models.Money
		want models.Money
	}{
		{name: "first band 6%", net: 15000000, want: 900000}, // 150,000.00 -> 9,000.00
		{name: "first band upper edge", net: 18000000, want: 1080000},
		{name: "second band 11.2%", net: 18000100, want: 2016011},
		{name: "third band 13.5%", net: 50000000, want: 6750000},
		{name: "fourth band 16%", net: 100000000, want: 16000000},
		{name: "open band 19%", net: 200000000, want: 38000000},
		{name: "zero revenue", net: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimate, err := Calculate(rules, RegimeSimples, tt.net, tt.net)
			require.NoError(t, err)
			assert.Equal(t, tt.want, estimate.Total)
		})
	}
}

func TestCalculateSimplesMonotonicWithinBand(t *testing.T) {
	rules := DefaultRuleSet()

	var prev models.Money = -1
	for net := models.Money(0); net <= 18000000; net += 1500000 {
		estimate, err := Calculate(rules, RegimeSimples, net, net)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, estimate.Total, prev, "net=%s", net)
		prev = estimate.Total
	}
}

func TestCalculateAutonomo(t *testing.T) {
	rules := DefaultRuleSet()

	t.Run("mid bracket", func(t *testing.T) {
		// Annual net 60,000.00 -> monthly 5,000.00. INSS 11% of 5,000 = 550.
		// IRPF base 4,450 falls in the 22.5% bracket with deduction 662.77.
		estimate, err := Calculate(rules, RegimeAutonomo, 6000000, 6000000)
		require.NoError(t, err)
		assert.Equal(t, models.Money(660000), estimate.INSS)  // 550.00 x 12
		assert.Equal(t, models.Money(406176), estimate.IRPF)  // 338.48 x 12
		assert.Equal(t, models.Money(1066176), estimate.Total)
		assert.Equal(t, estimate.INSS+estimate.IRPF, estimate.Total)
	})

	t.Run("below minimum wage clamps contribution base up", func(t *testing.T) {
		// Annual net 6,000.00 -> monthly 500.00, below the wage floor of
		// 1,412.00, so INSS is computed on the floor.
		estimate, err := Calculate(rules, RegimeAutonomo, 600000, 600000)
		require.NoError(t, err)
		wantMonthlyINSS := rules.MinimumWage.MulRate(rules.INSSRate)
		assert.Equal(t, wantMonthlyINSS*12, estimate.INSS)
		// IRPF base is negative after the contribution; tax clamps at zero.
		assert.Equal(t, models.Money(0), estimate.IRPF)
	})

	t.Run("above ceiling clamps contribution base down", func(t *testing.T) {
		// Annual net 240,000.00 -> monthly 20,000.00, above the INSS ceiling.
		estimate, err := Calculate(rules, RegimeAutonomo, 24000000, 24000000)
		require.NoError(t, err)
		wantMonthlyINSS := rules.INSSCeiling.MulRate(rules.INSSRate)
		assert.Equal(t, wantMonthlyINSS*12, estimate.INSS)
		assert.Greater(t, estimate.IRPF, models.Money(0))
	})

	t.Run("irpf never negative", func(t *testing.T) {
		for net := models.Money(0); net <= 4000000; net += 250000 {
			estimate, err := Calculate(rules, RegimeAutonomo, net, net)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, estimate.IRPF, models.Money(0), "net=%s", net)
		}
	})
}

func TestCalculateUnknownRegime(t *testing.T) {
	rules := DefaultRuleSet()
	_, err := Calculate(rules, Regime("presumido"), 100000, 100000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRegime))
}

func TestIRPFBracketBoundaries(t *testing.T) {
	rules := DefaultRuleSet()

	tests := []struct {
		name string
		base models.Money
		want models.Money
	}{
		{name: "exempt", base: 200000, want: 0},
		{name: "exempt upper edge", base: 225920, want: 0},
		{name: "first taxed bracket edge", base: 225921, want: 0}, // 7.5% exactly cancels the deduction here
		{name: "second bracket", base: 300000, want: 300000*0.15 - 38144},
		{name: "top bracket", base: 1000000, want: 1000000*0.275 - 89600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := irpfForBase(rules, tt.base)
			assert.Equal(t, tt.want, got)
		})
	}
}
