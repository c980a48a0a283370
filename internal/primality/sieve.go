package primality

import "math/big"

// SieveOutcome is the result tag of CheckSmallFactors.
type SieveOutcome int

const (
	NoSmallFactorFound SieveOutcome = iota
	IsSmallPrime
	DivisibleBy
)

func (o SieveOutcome) String() string {
	switch o {
	case IsSmallPrime:
		return "is_small_prime"
	case DivisibleBy:
		return "divisible_by"
	default:
		return "no_small_factor_found"
	}
}

// SieveResult carries the matching table entry for IsSmallPrime and
// DivisibleBy. Prime is 0 when no small factor was found.
type SieveResult struct {
	Outcome SieveOutcome
	Prime   int64
}

// CheckSmallFactors walks primes in order. At each step equality is checked
// before divisibility so a tabled prime is never reported as dividing itself.
func CheckSmallFactors(n *big.Int, primes []int64) SieveResult {
	p := new(big.Int)
	rem := new(big.Int)
	for _, v := range primes {
		p.SetInt64(v)
		if n.Cmp(p) == 0 {
			return SieveResult{Outcome: IsSmallPrime, Prime: v}
		}
		if rem.Rem(n, p).Sign() == 0 {
			return SieveResult{Outcome: DivisibleBy, Prime: v}
		}
	}
	return SieveResult{Outcome: NoSmallFactorFound}
}
