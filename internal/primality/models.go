package primality

import (
	"math/big"
	"slices"
)

// Outcome enumerates the possible classifier verdicts.
type Outcome string

const (
	OutcomePrimeLikely Outcome = "probably_prime"
	OutcomeComposite   Outcome = "composite"
)

// Reason identifies which rule of the classifier produced a verdict.
type Reason string

const (
	ReasonBelowMinimum    Reason = "below_minimum"
	ReasonSmallPrime      Reason = "small_prime"
	ReasonDivisible       Reason = "divisible"
	ReasonEven            Reason = "even"
	ReasonFermatWitness   Reason = "fermat_witness"
	ReasonPassedWitnesses Reason = "passed_witnesses"
)

// ParseReason maps a stored reason string back to a Reason.
func ParseReason(s string) (Reason, bool) {
	switch r := Reason(s); r {
	case ReasonBelowMinimum, ReasonSmallPrime, ReasonDivisible, ReasonEven,
		ReasonFermatWitness, ReasonPassedWitnesses:
		return r, true
	}
	return "", false
}

// Outcome returns the verdict a reason always leads to.
func (r Reason) Outcome() Outcome {
	switch r {
	case ReasonSmallPrime, ReasonPassedWitnesses:
		return OutcomePrimeLikely
	default:
		return OutcomeComposite
	}
}

// Evidence is the structured justification behind a verdict. It carries no
// prose; rendering it for humans is left to the caller.
type Evidence struct {
	Reason Reason

	// SmallPrime is the table entry n matched (ReasonSmallPrime).
	SmallPrime int64
	// Divisor is the table entry that divides n (ReasonDivisible).
	Divisor int64

	// Witness and Residue describe the failing Fermat base (ReasonFermatWitness).
	Witness int64
	Residue *big.Int

	// Tested lists the witnesses evaluated, in order. Skipped lists the
	// witnesses that were not applicable because they were >= n.
	Tested  []int64
	Skipped []int64
}

// Verdict pairs the outcome with the evidence that produced it.
type Verdict struct {
	Outcome  Outcome
	Evidence Evidence
}

// IsPrimeLikely reports whether the candidate was classified as probably prime.
func (v Verdict) IsPrimeLikely() bool {
	return v.Outcome == OutcomePrimeLikely
}

// Guaranteed reports whether the verdict is certain. Only a candidate that
// merely passed every Fermat witness is uncertain.
func (v Verdict) Guaranteed() bool {
	return v.Evidence.Reason != ReasonPassedWitnesses
}

// Clone returns a deep copy so callers can hand verdicts across goroutines
// without sharing the residue or witness slices.
func (v Verdict) Clone() Verdict {
	out := v
	if v.Evidence.Residue != nil {
		out.Evidence.Residue = new(big.Int).Set(v.Evidence.Residue)
	}
	out.Evidence.Tested = slices.Clone(v.Evidence.Tested)
	out.Evidence.Skipped = slices.Clone(v.Evidence.Skipped)
	return out
}

func primeLikely(e Evidence) Verdict {
	return Verdict{Outcome: OutcomePrimeLikely, Evidence: e}
}

func composite(e Evidence) Verdict {
	return Verdict{Outcome: OutcomeComposite, Evidence: e}
}
