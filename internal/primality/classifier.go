package primality

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

var (
	defaultSmallPrimes = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31}
	defaultWitnesses   = []int64{2, 3, 5, 7, 11, 13, 17}

	one = big.NewInt(1)
	two = big.NewInt(2)
)

// DefaultSmallPrimes returns a copy of the built-in trial division table.
func DefaultSmallPrimes() []int64 {
	return slices.Clone(defaultSmallPrimes)
}

// DefaultWitnesses returns a copy of the built-in Fermat bases.
func DefaultWitnesses() []int64 {
	return slices.Clone(defaultWitnesses)
}

// Classifier decides whether a candidate is probably prime. Its tables are
// fixed at construction and never mutated, so one Classifier can be shared
// by any number of goroutines.
type Classifier struct {
	smallPrimes []int64
	witnesses   []int64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSmallPrimes replaces the trial division table.
func WithSmallPrimes(primes []int64) Option {
	return func(c *Classifier) {
		c.smallPrimes = slices.Clone(primes)
	}
}

// WithWitnesses replaces the Fermat bases.
func WithWitnesses(witnesses []int64) Option {
	return func(c *Classifier) {
		c.witnesses = slices.Clone(witnesses)
	}
}

// NewClassifier builds a Classifier, validating any custom tables.
func NewClassifier(opts ...Option) (*Classifier, error) {
	c := &Classifier{
		smallPrimes: DefaultSmallPrimes(),
		witnesses:   DefaultWitnesses(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := validateSmallPrimes(c.smallPrimes); err != nil {
		return nil, err
	}
	if err := validateWitnesses(c.witnesses); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewClassifier is NewClassifier for tables known to be valid.
func MustNewClassifier(opts ...Option) *Classifier {
	c, err := NewClassifier(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// SmallPrimes returns a copy of the trial division table.
func (c *Classifier) SmallPrimes() []int64 {
	return slices.Clone(c.smallPrimes)
}

// Witnesses returns a copy of the Fermat bases.
func (c *Classifier) Witnesses() []int64 {
	return slices.Clone(c.witnesses)
}

// Fingerprint identifies the table configuration. Two classifiers with the
// same fingerprint always return the same verdict for the same candidate.
func (c *Classifier) Fingerprint() string {
	var b strings.Builder
	b.WriteString("p=")
	writeInts(&b, c.smallPrimes)
	b.WriteString(";w=")
	writeInts(&b, c.witnesses)
	return b.String()
}

func writeInts(b *strings.Builder, xs []int64) {
	for i, x := range xs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(x, 10))
	}
}

// Classify applies the rule chain to n. The first matching rule wins:
//  1. n < 2 is composite
//  2. trial division against the small-prime table
//  3. even numbers past the table are composite
//  4. any Fermat witness a < n with a^(n-1) mod n != 1 proves compositeness
//  5. otherwise n is probably prime
func (c *Classifier) Classify(cand Candidate) Verdict {
	v, _ := c.ClassifyContext(context.Background(), cand)
	return v
}

// ClassifyContext is Classify with cancellation. ctx is checked before each
// Fermat witness, so a cancelled check stops once the modpow in flight
// returns. It then reports ctx.Err() with a zero Verdict.
func (c *Classifier) ClassifyContext(ctx context.Context, cand Candidate) (Verdict, error) {
	n := cand.value()

	// Rule 1: below the smallest prime
	if n.Cmp(two) < 0 {
		return composite(Evidence{Reason: ReasonBelowMinimum}), nil
	}

	// Rule 2: small-prime table
	switch sr := CheckSmallFactors(n, c.smallPrimes); sr.Outcome {
	case IsSmallPrime:
		return primeLikely(Evidence{Reason: ReasonSmallPrime, SmallPrime: sr.Prime}), nil
	case DivisibleBy:
		return composite(Evidence{Reason: ReasonDivisible, Divisor: sr.Prime}), nil
	}

	// Rule 3: even and past 2
	if n.Bit(0) == 0 && n.Cmp(two) != 0 {
		return composite(Evidence{Reason: ReasonEven}), nil
	}

	// Rule 4: Fermat witnesses, short-circuiting on the first failure
	nMinus1 := new(big.Int).Sub(n, one)
	a := new(big.Int)
	var tested, skipped []int64
	for _, w := range c.witnesses {
		a.SetInt64(w)
		if a.Cmp(n) >= 0 {
			skipped = append(skipped, w)
			continue
		}
		if err := ctx.Err(); err != nil {
			return Verdict{}, err
		}
		tested = append(tested, w)
		if r := ModPow(a, nMinus1, n); r.Cmp(one) != 0 {
			return composite(Evidence{
				Reason:  ReasonFermatWitness,
				Witness: w,
				Residue: r,
				Tested:  tested,
				Skipped: skipped,
			}), nil
		}
	}

	// Rule 5: every applicable witness passed
	return primeLikely(Evidence{
		Reason:  ReasonPassedWitnesses,
		Tested:  tested,
		Skipped: skipped,
	}), nil
}

func validateSmallPrimes(primes []int64) error {
	if len(primes) == 0 {
		return errors.New("small prime table is empty")
	}
	for i, p := range primes {
		if p < 2 || !big.NewInt(p).ProbablyPrime(0) {
			return fmt.Errorf("small prime table: %d is not prime", p)
		}
		if i > 0 && p <= primes[i-1] {
			return fmt.Errorf("small prime table must be strictly increasing: %d follows %d", p, primes[i-1])
		}
	}
	return nil
}

func validateWitnesses(witnesses []int64) error {
	if len(witnesses) == 0 {
		return errors.New("witness table is empty")
	}
	for _, w := range witnesses {
		if w < 2 {
			return fmt.Errorf("witness table: base %d must be >= 2", w)
		}
	}
	return nil
}
