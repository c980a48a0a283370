package models

import (
	"fmt"
	"math/big"
	"time"

	"primelab/internal/primality"
)

// VerdictRecord is the serialized form of a verdict, shared by the cache and
// history stores. Residue is a decimal string since it can be arbitrarily large.
type VerdictRecord struct {
	Outcome    string  `json:"outcome"`
	Reason     string  `json:"reason"`
	SmallPrime int64   `json:"small_prime,omitempty"`
	Divisor    int64   `json:"divisor,omitempty"`
	Witness    int64   `json:"witness,omitempty"`
	Residue    string  `json:"residue,omitempty"`
	Tested     []int64 `json:"tested,omitempty"`
	Skipped    []int64 `json:"skipped,omitempty"`
}

// CheckRecord is one completed check as kept in history.
type CheckRecord struct {
	ID        string        `json:"id"`
	Input     string        `json:"input"`
	Canonical string        `json:"canonical"`
	Digits    int           `json:"digits"`
	Verdict   VerdictRecord `json:"verdict"`
	CheckedAt time.Time     `json:"checked_at"`
}

// FromVerdict converts a classifier verdict into its record form.
func FromVerdict(v primality.Verdict) VerdictRecord {
	rec := VerdictRecord{
		Outcome:    string(v.Outcome),
		Reason:     string(v.Evidence.Reason),
		SmallPrime: v.Evidence.SmallPrime,
		Divisor:    v.Evidence.Divisor,
		Witness:    v.Evidence.Witness,
		Tested:     append([]int64(nil), v.Evidence.Tested...),
		Skipped:    append([]int64(nil), v.Evidence.Skipped...),
	}
	if v.Evidence.Residue != nil {
		rec.Residue = v.Evidence.Residue.String()
	}
	return rec
}

// ToVerdict rebuilds a verdict, rejecting records that could not have been
// produced by the classifier.
func (r VerdictRecord) ToVerdict() (primality.Verdict, error) {
	reason, ok := primality.ParseReason(r.Reason)
	if !ok {
		return primality.Verdict{}, fmt.Errorf("verdict record: unknown reason %q", r.Reason)
	}
	if outcome := reason.Outcome(); string(outcome) != r.Outcome {
		return primality.Verdict{}, fmt.Errorf("verdict record: outcome %q does not match reason %q", r.Outcome, r.Reason)
	}

	ev := primality.Evidence{
		Reason:     reason,
		SmallPrime: r.SmallPrime,
		Divisor:    r.Divisor,
		Witness:    r.Witness,
		Tested:     append([]int64(nil), r.Tested...),
		Skipped:    append([]int64(nil), r.Skipped...),
	}
	if r.Residue != "" {
		residue, ok := new(big.Int).SetString(r.Residue, 10)
		if !ok {
			return primality.Verdict{}, fmt.Errorf("verdict record: invalid residue %q", r.Residue)
		}
		ev.Residue = residue
	}
	if reason == primality.ReasonFermatWitness && ev.Residue == nil {
		return primality.Verdict{}, fmt.Errorf("verdict record: fermat_witness without residue")
	}

	return primality.Verdict{Outcome: reason.Outcome(), Evidence: ev}, nil
}
