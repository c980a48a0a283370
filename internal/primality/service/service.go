package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"primelab/internal/primality"
	"primelab/internal/primality/metrics"
	"primelab/internal/primality/models"
	"primelab/internal/primality/ports"
	dErrors "primelab/pkg/domain-errors"
	"primelab/pkg/platform/sentinel"
	"primelab/pkg/requestcontext"
)

// Type aliases for interfaces from ports package.
type (
	VerdictCache = ports.VerdictCache
	HistoryStore = ports.HistoryStore
)

// Result is one completed check.
type Result struct {
	ID        string
	Input     string
	Candidate primality.Candidate
	Verdict   primality.Verdict
	CheckedAt time.Time
	// Cached is true when the verdict came from the cache instead of the classifier.
	Cached bool
}

// Record converts the result into its history form.
func (r *Result) Record() *models.CheckRecord {
	return &models.CheckRecord{
		ID:        r.ID,
		Input:     r.Input,
		Canonical: r.Candidate.String(),
		Digits:    r.Candidate.Digits(),
		Verdict:   models.FromVerdict(r.Verdict),
		CheckedAt: r.CheckedAt,
	}
}

// Service parses and classifies candidates. Cache and history are optional;
// when they fail the classifier's answer is still returned.
type Service struct {
	classifier *primality.Classifier
	cache      VerdictCache
	history    HistoryStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	clock      func() time.Time
	group      singleflight.Group
}

type Option func(*Service)

func WithClassifier(c *primality.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

func WithCache(cache VerdictCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithHistory(history HistoryStore) Option {
	return func(s *Service) {
		s.history = history
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the request time; by default the time stored by the
// request time middleware is used.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func New(opts ...Option) (*Service, error) {
	svc := &Service{
		logger: slog.Default(),
		tracer: otel.Tracer("primelab/primality"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.classifier == nil {
		c, err := primality.NewClassifier()
		if err != nil {
			return nil, err
		}
		svc.classifier = c
	}
	return svc, nil
}

// Classifier returns the classifier the service was built with.
func (s *Service) Classifier() *primality.Classifier {
	return s.classifier
}

// resolution is what concurrent callers for the same candidate share.
type resolution struct {
	verdict primality.Verdict
	cached  bool
}

// Check parses raw and classifies it. Invalid input is reported as a
// CodeValidation domain error wrapping the *primality.ParseError.
func (s *Service) Check(ctx context.Context, raw string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "primality.check")
	defer span.End()

	start := time.Now()
	requestID := requestcontext.RequestID(ctx)

	cand, err := primality.Parse(raw)
	if err != nil {
		kind, _ := primality.KindOf(err)
		s.metrics.IncrementInvalidInput(string(kind))
		span.SetStatus(codes.Error, string(kind))
		s.logger.InfoContext(ctx, "primality input rejected",
			"request_id", requestID,
			"error_kind", kind,
			"input_length", len(raw),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}

	digits := cand.Digits()
	s.metrics.ObserveDigits(digits)
	span.SetAttributes(attribute.Int("primality.digits", digits))

	key := s.classifier.Fingerprint() + ":" + cand.String()
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.resolve(ctx, key, cand)
	})
	if err != nil {
		span.SetStatus(codes.Error, "cancelled")
		s.metrics.IncrementCancelled()
		s.logger.WarnContext(ctx, "primality check abandoned",
			"request_id", requestID,
			"digits", digits,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "primality check did not finish in time")
	}
	res := v.(resolution)

	result := &Result{
		ID:        uuid.NewString(),
		Input:     raw,
		Candidate: cand,
		Verdict:   res.verdict.Clone(),
		CheckedAt: s.now(ctx),
		Cached:    res.cached,
	}

	if s.history != nil {
		if err := s.history.Append(ctx, result.Record()); err != nil {
			s.metrics.IncrementHistoryError()
			s.logger.WarnContext(ctx, "failed to record check history",
				"request_id", requestID,
				"check_id", result.ID,
				"error", err,
			)
		}
	}

	outcome, reason := string(result.Verdict.Outcome), string(result.Verdict.Evidence.Reason)
	s.metrics.IncrementCheck(outcome, reason)
	span.SetAttributes(
		attribute.String("primality.verdict", outcome),
		attribute.String("primality.reason", reason),
		attribute.Bool("primality.cached", result.Cached),
	)
	s.logger.InfoContext(ctx, "primality checked",
		"request_id", requestID,
		"check_id", result.ID,
		"digits", digits,
		"verdict", outcome,
		"reason", reason,
		"cached", result.Cached,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// resolve consults the cache and falls back to the classifier. Concurrent
// callers share the first caller's ctx, so its cancellation fails them all.
// Nothing is cached for an abandoned check.
func (s *Service) resolve(ctx context.Context, key string, cand primality.Candidate) (resolution, error) {
	if verdict, ok := s.lookup(ctx, key); ok {
		return resolution{verdict: verdict, cached: true}, nil
	}

	start := time.Now()
	verdict, err := s.classifier.ClassifyContext(ctx, cand)
	if err != nil {
		return resolution{}, err
	}
	s.metrics.ObserveClassify(time.Since(start))

	if s.cache != nil {
		rec := models.FromVerdict(verdict)
		if err := s.cache.Set(ctx, key, &rec); err != nil {
			s.logger.WarnContext(ctx, "failed to cache verdict",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	return resolution{verdict: verdict}, nil
}

func (s *Service) lookup(ctx context.Context, key string) (primality.Verdict, bool) {
	if s.cache == nil {
		return primality.Verdict{}, false
	}
	rec, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.RecordCacheMiss()
		return primality.Verdict{}, false
	case err != nil:
		s.metrics.RecordCacheError()
		s.logger.WarnContext(ctx, "verdict cache lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return primality.Verdict{}, false
	}

	verdict, err := rec.ToVerdict()
	if err != nil {
		s.metrics.RecordCacheError()
		s.logger.WarnContext(ctx, "discarding undecodable cached verdict",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return primality.Verdict{}, false
	}
	s.metrics.RecordCacheHit()
	return verdict, true
}

// History lists recent checks, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	if s.history == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "check history is not enabled")
	}
	recs, err := s.history.Recent(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list check history",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list check history")
	}
	return recs, nil
}

func (s *Service) now(ctx context.Context) time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return requestcontext.Now(ctx)
}
