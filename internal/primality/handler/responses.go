package handler

import (
	"strconv"
	"time"

	"primelab/internal/locale"
	"primelab/internal/primality"
	"primelab/internal/primality/models"
	"primelab/internal/primality/service"
)

// ErrorKindTooLong is reported when input exceeds the configured length,
// alongside the parser's own error kinds.
const ErrorKindTooLong = "too_long"

// InputErrorResponse is returned for input the service cannot classify.
type InputErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorKind        string `json:"error_kind"`
	Title            string `json:"title"`
}

// CheckResponse is the HTTP response for /primality/check.
type CheckResponse struct {
	ID          string           `json:"id"`
	Input       string           `json:"input"`
	Canonical   string           `json:"canonical"`
	Digits      int              `json:"digits"`
	Verdict     string           `json:"verdict"`
	Guaranteed  bool             `json:"guaranteed"`
	Reason      string           `json:"reason"`
	Evidence    EvidenceResponse `json:"evidence"`
	Headline    string           `json:"headline"`
	Explanation string           `json:"explanation"`
	Lang        string           `json:"lang"`
	Cached      bool             `json:"cached"`
	CheckedAt   time.Time        `json:"checked_at"`
}

// EvidenceResponse is the evidence portion of the response. Numbers are
// decimal strings because residues can be arbitrarily large.
type EvidenceResponse struct {
	SmallPrime string   `json:"small_prime,omitempty"`
	Divisor    string   `json:"divisor,omitempty"`
	Witness    string   `json:"witness,omitempty"`
	Residue    string   `json:"residue,omitempty"`
	Tested     []string `json:"tested"`
	Skipped    []string `json:"skipped,omitempty"`
}

// HistoryResponse is the HTTP response for GET /primality/history.
type HistoryResponse struct {
	Checks []HistoryItem `json:"checks"`
}

// HistoryItem is one entry of the history listing.
type HistoryItem struct {
	ID          string    `json:"id"`
	Input       string    `json:"input"`
	Canonical   string    `json:"canonical"`
	Digits      int       `json:"digits"`
	Verdict     string    `json:"verdict"`
	Reason      string    `json:"reason"`
	Headline    string    `json:"headline"`
	Explanation string    `json:"explanation"`
	CheckedAt   time.Time `json:"checked_at"`
}

// FromResult converts a service result to an HTTP response.
func FromResult(result *service.Result, lang locale.Language) *CheckResponse {
	v := result.Verdict
	return &CheckResponse{
		ID:          result.ID,
		Input:       result.Input,
		Canonical:   result.Candidate.String(),
		Digits:      result.Candidate.Digits(),
		Verdict:     string(v.Outcome),
		Guaranteed:  v.Guaranteed(),
		Reason:      string(v.Evidence.Reason),
		Evidence:    fromEvidence(v.Evidence),
		Headline:    locale.Headline(v, lang),
		Explanation: locale.Explain(result.Candidate, v.Evidence, lang),
		Lang:        string(lang),
		Cached:      result.Cached,
		CheckedAt:   result.CheckedAt,
	}
}

// FromRecord converts a stored check to a history item.
func FromRecord(rec *models.CheckRecord, lang locale.Language) (HistoryItem, error) {
	v, err := rec.Verdict.ToVerdict()
	if err != nil {
		return HistoryItem{}, err
	}
	cand, err := primality.Parse(rec.Canonical)
	if err != nil {
		return HistoryItem{}, err
	}
	return HistoryItem{
		ID:          rec.ID,
		Input:       rec.Input,
		Canonical:   rec.Canonical,
		Digits:      rec.Digits,
		Verdict:     string(v.Outcome),
		Reason:      string(v.Evidence.Reason),
		Headline:    locale.Headline(v, lang),
		Explanation: locale.Explain(cand, v.Evidence, lang),
		CheckedAt:   rec.CheckedAt,
	}, nil
}

func fromEvidence(ev primality.Evidence) EvidenceResponse {
	resp := EvidenceResponse{
		SmallPrime: formatNonZero(ev.SmallPrime),
		Divisor:    formatNonZero(ev.Divisor),
		Witness:    formatNonZero(ev.Witness),
		Tested:     formatInts(ev.Tested),
	}
	if ev.Residue != nil {
		resp.Residue = ev.Residue.String()
	}
	if len(ev.Skipped) > 0 {
		resp.Skipped = formatInts(ev.Skipped)
	}
	return resp
}

func formatNonZero(x int64) string {
	if x == 0 {
		return ""
	}
	return strconv.FormatInt(x, 10)
}

func formatInts(xs []int64) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = strconv.FormatInt(x, 10)
	}
	return out
}
