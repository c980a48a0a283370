package primality

import "math/big"

// ModPow computes base^exponent mod modulus by right-to-left binary
// exponentiation. Every product is taken at full precision before reduction.
// The result lies in [0, modulus). Inputs are not modified.
//
// ModPow panics if modulus < 1 or exponent < 0.
func ModPow(base, exponent, modulus *big.Int) *big.Int {
	if modulus.Sign() <= 0 {
		panic("primality: ModPow modulus must be >= 1")
	}
	if exponent.Sign() < 0 {
		panic("primality: ModPow exponent must be >= 0")
	}

	result := big.NewInt(1)
	b := new(big.Int).Mod(base, modulus)

	// Bits are consumed lowest first; indexing avoids copying and shifting
	// the exponent.
	for i := 0; i < exponent.BitLen(); i++ {
		if exponent.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
	}

	// exponent == 0 leaves result at 1, which must still land in [0, modulus).
	return result.Mod(result, modulus)
}
