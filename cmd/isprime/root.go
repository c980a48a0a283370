package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"primelab/internal/locale"
	"primelab/internal/platform/config"
	"primelab/internal/platform/logger"
	"primelab/internal/primality"
	"primelab/internal/primality/handler"
	"primelab/internal/primality/service"
)

// errInvalidInput is returned after all inputs were reported and at least
// one of them failed to parse. The message has already been printed.
var errInvalidInput = errors.New("invalid input")

type rootOptions struct {
	lang      string
	json      bool
	witnesses []int64
	maxDigits int
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "isprime [flags] <n>... | -",
		Short: "Classify integers as composite or probably prime",
		Long: `Runs trial division against small primes followed by Fermat tests.
A "probably prime" verdict is not a proof: Carmichael numbers such as
252601 pass every coprime base. Pass "-" to read one integer per line
from stdin.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.lang, "lang", string(locale.Default), "output language (en, zh)")
	flags.BoolVar(&opts.json, "json", false, "print one JSON object per input")
	flags.Int64SliceVar(&opts.witnesses, "witnesses", nil, "override the Fermat bases")
	flags.IntVar(&opts.maxDigits, "max-digits", config.DefaultMaxDigits, "reject inputs longer than this")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log each check to stderr")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *rootOptions) error {
	lang, ok := locale.Parse(opts.lang)
	if !ok {
		return fmt.Errorf("unsupported language %q", opts.lang)
	}

	var classifierOpts []primality.Option
	if len(opts.witnesses) > 0 {
		classifierOpts = append(classifierOpts, primality.WithWitnesses(opts.witnesses))
	}
	classifier, err := primality.NewClassifier(classifierOpts...)
	if err != nil {
		return err
	}

	level := "error"
	if opts.verbose {
		level = "debug"
	}
	svc, err := service.New(
		service.WithClassifier(classifier),
		service.WithLogger(logger.New(cmd.ErrOrStderr(), level)),
	)
	if err != nil {
		return err
	}

	p := &printer{
		svc:       svc,
		out:       cmd.OutOrStdout(),
		lang:      lang,
		json:      opts.json,
		maxDigits: opts.maxDigits,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, arg := range args {
		if arg == "-" {
			if err := p.checkLines(ctx, cmd.InOrStdin()); err != nil {
				return err
			}
			continue
		}
		if err := p.check(ctx, arg); err != nil {
			return err
		}
	}
	if p.invalid > 0 {
		return errInvalidInput
	}
	return nil
}

type printer struct {
	svc       *service.Service
	out       io.Writer
	lang      locale.Language
	json      bool
	maxDigits int
	invalid   int
}

func (p *printer) checkLines(ctx context.Context, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, overlong, readErr := readLine(br, p.lineLimit())
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read stdin: %w", readErr)
		}

		var err error
		switch raw := strings.TrimSpace(line); {
		case overlong:
			p.invalid++
			err = p.inputError(raw, handler.ErrorKindTooLong, locale.FormatTooLong(p.maxDigits, p.lang))
		case raw != "":
			err = p.check(ctx, raw)
		}
		if err != nil {
			return err
		}
		if readErr != nil {
			return nil
		}
	}
}

// lineLimit bounds how much of a stdin line is buffered. Surrounding
// whitespace is trimmed later, so some slack is allowed past maxDigits.
func (p *printer) lineLimit() int {
	if p.maxDigits <= 0 {
		return 0
	}
	return p.maxDigits + 1024
}

// readLine reads up to and including the next newline. Once the line grows
// past limit the rest of it is discarded and overlong is set; only a prefix
// is kept for the error report. A limit of zero keeps the whole line.
func readLine(br *bufio.Reader, limit int) (line string, overlong bool, err error) {
	var buf []byte
	for {
		chunk, readErr := br.ReadSlice('\n')
		if !overlong {
			buf = append(buf, chunk...)
			if limit > 0 && len(buf) > limit {
				overlong = true
				buf = buf[:previewLen+1]
			}
		}
		if errors.Is(readErr, bufio.ErrBufferFull) {
			continue
		}
		return string(buf), overlong, readErr
	}
}

func (p *printer) check(ctx context.Context, raw string) error {
	if p.maxDigits > 0 && len(raw) > p.maxDigits {
		p.invalid++
		return p.inputError(raw, handler.ErrorKindTooLong, locale.FormatTooLong(p.maxDigits, p.lang))
	}

	result, err := p.svc.Check(ctx, raw)
	if err != nil {
		kind, ok := primality.KindOf(err)
		if !ok {
			return err
		}
		p.invalid++
		return p.inputError(raw, string(kind), locale.FormatParseError(kind, p.lang))
	}

	if p.json {
		return p.writeJSON(handler.FromResult(result, p.lang))
	}
	_, err = fmt.Fprintf(p.out, "%s: %s. %s\n",
		result.Candidate,
		locale.Headline(result.Verdict, p.lang),
		locale.Explain(result.Candidate, result.Verdict.Evidence, p.lang),
	)
	return err
}

// previewLen caps how much of a rejected input is echoed back.
const previewLen = 64

func (p *printer) inputError(raw, kind, description string) error {
	if len(raw) > previewLen {
		raw = raw[:previewLen] + "..."
	}
	if p.json {
		return p.writeJSON(&inputErrorLine{Input: raw, ErrorKind: kind, ErrorDescription: description})
	}
	_, err := fmt.Fprintf(p.out, "%q: %s: %s\n", raw, locale.InputErrorTitle(p.lang), description)
	return err
}

func (p *printer) writeJSON(v any) error {
	return json.NewEncoder(p.out).Encode(v)
}

type inputErrorLine struct {
	Input            string `json:"input"`
	ErrorKind        string `json:"error_kind"`
	ErrorDescription string `json:"error_description"`
}

