package primality

import (
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModPow_ZeroExponent(t *testing.T) {
	for _, m := range []int64{2, 3, 7, 97, 1 << 40} {
		for _, a := range []int64{0, 1, 5, 123456789} {
			r := ModPow(big.NewInt(a), big.NewInt(0), big.NewInt(m))
			assert.Equal(t, int64(1), r.Int64(), "a=%d m=%d", a, m)
		}
	}
}

func TestModPow_ModulusOne(t *testing.T) {
	for _, e := range []int64{0, 1, 2, 1000} {
		r := ModPow(big.NewInt(7), big.NewInt(e), big.NewInt(1))
		assert.Zero(t, r.Sign(), "e=%d", e)
	}
}

func TestModPow_KnownValues(t *testing.T) {
	tests := []struct {
		base, exp, mod, expected int64
	}{
		{3, 5, 13, 9},
		{2, 10, 1000, 24},
		{4, 13, 497, 445},
		{2, 560, 561, 1},
		{7, 0, 13, 1},
		{0, 5, 13, 0},
	}
	for _, tt := range tests {
		r := ModPow(big.NewInt(tt.base), big.NewInt(tt.exp), big.NewInt(tt.mod))
		assert.Equal(t, tt.expected, r.Int64(), "%d^%d mod %d", tt.base, tt.exp, tt.mod)
	}
}

// Random battery against exponentiation at full precision followed by a
// single reduction.
func TestModPow_MatchesFullPrecision(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 300; i++ {
		a := randomBigInt(rng, 1+rng.IntN(40))
		e := big.NewInt(int64(rng.IntN(200)))
		m := randomBigInt(rng, 1+rng.IntN(30))

		full := new(big.Int).Exp(a, e, nil)
		want := full.Mod(full, m)

		got := ModPow(a, e, m)
		require.Zero(t, got.Cmp(want), "a=%s e=%s m=%s", a, e, m)
	}
}

func TestModPow_LargeOperands(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 20; i++ {
		a := randomBigInt(rng, 150)
		e := randomBigInt(rng, 150)
		m := randomBigInt(rng, 200)
		want := new(big.Int).Exp(a, e, m)
		assert.Zero(t, ModPow(a, e, m).Cmp(want))
	}
}

func TestModPow_ResultInRange(t *testing.T) {
	r := ModPow(big.NewInt(-3), big.NewInt(3), big.NewInt(7))
	// (-3)^3 = -27, and -27 mod 7 = 1 in [0, 7).
	assert.Equal(t, int64(1), r.Int64())
}

func TestModPow_DoesNotMutateInputs(t *testing.T) {
	a, e, m := big.NewInt(12345), big.NewInt(678), big.NewInt(91)
	ModPow(a, e, m)
	assert.Equal(t, int64(12345), a.Int64())
	assert.Equal(t, int64(678), e.Int64())
	assert.Equal(t, int64(91), m.Int64())
}

func TestModPow_PanicsOnInvalidArguments(t *testing.T) {
	assert.Panics(t, func() { ModPow(big.NewInt(2), big.NewInt(3), big.NewInt(0)) })
	assert.Panics(t, func() { ModPow(big.NewInt(2), big.NewInt(-1), big.NewInt(5)) })
}
