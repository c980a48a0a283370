package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"primelab/internal/locale"
	"primelab/internal/primality"
	"primelab/internal/primality/models"
	"primelab/internal/primality/service"
	dErrors "primelab/pkg/domain-errors"
	"primelab/pkg/platform/httputil"
	"primelab/pkg/requestcontext"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service defines the interface for primality operations.
type Service interface {
	Check(ctx context.Context, raw string) (*service.Result, error)
	History(ctx context.Context, limit int) ([]*models.CheckRecord, error)
}

// Handler wires primality endpoints to the primality service.
type Handler struct {
	service   Service
	logger    *slog.Logger
	maxDigits int
}

// New constructs a primality handler. maxDigits caps the length of the raw
// input accepted before it reaches the parser.
func New(service Service, logger *slog.Logger, maxDigits int) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		maxDigits: maxDigits,
	}
}

// Register mounts primality endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/primality/check", h.HandleCheck)
	r.Get("/primality/check", h.HandleCheckQuery)
	r.Get("/primality/history", h.HandleHistory)
}

// HandleCheck handles POST /primality/check requests.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.check(w, r, req)
}

// HandleCheckQuery handles GET /primality/check?n=...&lang=... requests.
func (h *Handler) HandleCheckQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &CheckRequest{N: q.Get("n"), Lang: q.Get("lang")}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.check(w, r, req)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request, req *CheckRequest) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	lang := locale.Negotiate(r.Header.Get("Accept-Language"), req.Lang)
	start := time.Now()

	// Bound the work a single request can cause before parsing.
	if h.maxDigits > 0 && len(req.N) > h.maxDigits {
		h.logger.InfoContext(ctx, "primality input too long",
			"request_id", requestID,
			"input_length", len(req.N),
			"max_digits", h.maxDigits,
		)
		httputil.WriteJSON(w, http.StatusBadRequest, &InputErrorResponse{
			Error:            string(dErrors.CodeValidation),
			ErrorDescription: locale.FormatTooLong(h.maxDigits, lang),
			ErrorKind:        ErrorKindTooLong,
			Title:            locale.InputErrorTitle(lang),
		})
		return
	}

	result, err := h.service.Check(ctx, req.N)
	if err != nil {
		if kind, ok := primality.KindOf(err); ok {
			httputil.WriteJSON(w, http.StatusBadRequest, &InputErrorResponse{
				Error:            string(dErrors.CodeValidation),
				ErrorDescription: locale.FormatParseError(kind, lang),
				ErrorKind:        string(kind),
				Title:            locale.InputErrorTitle(lang),
			})
			return
		}
		h.logger.ErrorContext(ctx, "primality check failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "primality check served",
		"request_id", requestID,
		"check_id", result.ID,
		"lang", lang,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result, lang))
}

// HandleHistory handles GET /primality/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	q := r.URL.Query()
	lang := locale.Negotiate(r.Header.Get("Accept-Language"), q.Get("lang"))

	limit := defaultHistoryLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be an integer between 1 and 100"))
			return
		}
		limit = n
	}

	recs, err := h.service.History(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "primality history unavailable",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := &HistoryResponse{Checks: make([]HistoryItem, 0, len(recs))}
	for _, rec := range recs {
		item, err := FromRecord(rec, lang)
		if err != nil {
			h.logger.WarnContext(ctx, "skipping unreadable history record",
				"request_id", requestID,
				"check_id", rec.ID,
				"error", err,
			)
			continue
		}
		resp.Checks = append(resp.Checks, item)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
