package primality

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSmallFactors(t *testing.T) {
	primes := DefaultSmallPrimes()

	tests := []struct {
		name    string
		n       int64
		outcome SieveOutcome
		prime   int64
	}{
		{name: "equal to first prime", n: 2, outcome: IsSmallPrime, prime: 2},
		{name: "equal to last prime", n: 31, outcome: IsSmallPrime, prime: 31},
		{name: "multiple of 2", n: 4, outcome: DivisibleBy, prime: 2},
		{name: "carmichael 561 divisible by 3", n: 561, outcome: DivisibleBy, prime: 3},
		{name: "square of last prime", n: 961, outcome: DivisibleBy, prime: 31},
		{name: "prime past the table", n: 97, outcome: NoSmallFactorFound},
		{name: "composite with large factors", n: 37 * 41, outcome: NoSmallFactorFound},
		{name: "one", n: 1, outcome: NoSmallFactorFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckSmallFactors(big.NewInt(tt.n), primes)
			assert.Equal(t, tt.outcome, got.Outcome)
			assert.Equal(t, tt.prime, got.Prime)
		})
	}
}

// Equality must be checked before divisibility, otherwise every tabled prime
// would be reported as divisible by itself.
func TestCheckSmallFactors_EqualityBeforeDivisibility(t *testing.T) {
	for _, p := range DefaultSmallPrimes() {
		got := CheckSmallFactors(big.NewInt(p), DefaultSmallPrimes())
		assert.Equal(t, IsSmallPrime, got.Outcome, "p=%d", p)
		assert.Equal(t, p, got.Prime)
	}
}

func TestCheckSmallFactors_EmptyTable(t *testing.T) {
	got := CheckSmallFactors(big.NewInt(4), nil)
	assert.Equal(t, NoSmallFactorFound, got.Outcome)
}

func TestSieveOutcome_String(t *testing.T) {
	assert.Equal(t, "is_small_prime", IsSmallPrime.String())
	assert.Equal(t, "divisible_by", DivisibleBy.String())
	assert.Equal(t, "no_small_factor_found", NoSmallFactorFound.String())
}
