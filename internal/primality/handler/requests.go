package handler

import (
	"strings"

	"primelab/internal/locale"
	dErrors "primelab/pkg/domain-errors"
)

// CheckRequest is the HTTP request body for POST /primality/check.
// N is passed to the parser untouched; the parser owns whitespace handling.
type CheckRequest struct {
	N    string `json:"n"`
	Lang string `json:"lang,omitempty"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Lang = strings.TrimSpace(r.Lang)
	if r.Lang != "" {
		if _, ok := locale.Parse(r.Lang); !ok {
			return dErrors.New(dErrors.CodeValidation, "lang must be one of: en, zh")
		}
	}
	return nil
}
