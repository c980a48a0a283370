// Package primality classifies arbitrary-precision integers as probably prime
// or composite and records the evidence behind each verdict.
//
// The classifier is a fixed rule chain: a lower bound, trial division against
// a small-prime table, an even check, and Fermat tests with a fixed set of
// witnesses. Composite verdicts are certain; a probably-prime verdict from the
// Fermat rule is not, since Carmichael numbers pass every coprime witness.
//
// Everything in this package is pure and safe for concurrent use. Human
// readable text is produced elsewhere from the structured Evidence.
package primality
