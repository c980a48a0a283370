package primality

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// ErrorKind classifies why a text token could not be parsed.
type ErrorKind string

const (
	ErrorKindEmpty        ErrorKind = "empty"
	ErrorKindNotAnInteger ErrorKind = "not_an_integer"
	ErrorKindTooLarge     ErrorKind = "too_large"
)

// ParseError is returned by Parse for every rejected input.
type ParseError struct {
	Kind  ErrorKind
	Input string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrorKindEmpty:
		return "parse integer: empty input"
	case ErrorKindTooLarge:
		return "parse integer: value cannot be represented"
	default:
		return fmt.Sprintf("parse integer: %q is not a decimal integer", truncate(e.Input, 32))
	}
}

// KindOf extracts the ErrorKind from an error chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

var integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)

// Candidate is an immutable arbitrary-precision integer taken from user input.
// The zero value is 0.
type Candidate struct {
	v *big.Int
}

// NewCandidate copies x into a Candidate.
func NewCandidate(x *big.Int) Candidate {
	if x == nil {
		return Candidate{}
	}
	return Candidate{v: new(big.Int).Set(x)}
}

// CandidateFromInt64 is a convenience constructor for small values.
func CandidateFromInt64(x int64) Candidate {
	return Candidate{v: big.NewInt(x)}
}

// Parse validates a decimal token and converts it without loss of precision.
// Surrounding whitespace is ignored; everything else must be an optional sign
// followed by ASCII digits.
func Parse(text string) (Candidate, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Candidate{}, &ParseError{Kind: ErrorKindEmpty, Input: text}
	}
	if !integerPattern.MatchString(trimmed) {
		return Candidate{}, &ParseError{Kind: ErrorKindNotAnInteger, Input: text}
	}
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return Candidate{}, &ParseError{Kind: ErrorKindTooLarge, Input: text}
	}
	return Candidate{v: n}, nil
}

// Int returns a copy of the underlying value.
func (c Candidate) Int() *big.Int {
	return new(big.Int).Set(c.value())
}

// Sign returns -1, 0 or +1.
func (c Candidate) Sign() int {
	return c.value().Sign()
}

// Digits returns the number of decimal digits in |n|.
func (c Candidate) Digits() int {
	s := c.value().String()
	if strings.HasPrefix(s, "-") {
		return len(s) - 1
	}
	return len(s)
}

// BitLen returns the bit length of |n|.
func (c Candidate) BitLen() int {
	return c.value().BitLen()
}

// String returns the canonical decimal form: no '+' sign, no leading zeros.
func (c Candidate) String() string {
	return c.value().String()
}

// Cmp compares two candidates.
func (c Candidate) Cmp(other Candidate) int {
	return c.value().Cmp(other.value())
}

var zero = new(big.Int)

func (c Candidate) value() *big.Int {
	if c.v == nil {
		return zero
	}
	return c.v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
