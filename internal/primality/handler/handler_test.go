package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"primelab/internal/primality"
	"primelab/internal/primality/handler/mocks"
	"primelab/internal/primality/models"
	"primelab/internal/primality/service"
	dErrors "primelab/pkg/domain-errors"
	"primelab/pkg/requestcontext"
	"primelab/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
	now     time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.now = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), 40)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) result(n string) *service.Result {
	c, err := primality.Parse(n)
	s.Require().NoError(err)
	return &service.Result{
		ID:        "check-1",
		Input:     n,
		Candidate: c,
		Verdict:   primality.MustNewClassifier().Classify(c),
		CheckedAt: s.now,
	}
}

func parseErr(input string) error {
	_, err := primality.Parse(input)
	return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
}

func (s *HandlerSuite) TestCheckProbablePrime() {
	s.service.EXPECT().Check(gomock.Any(), "97").Return(s.result("97"), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: "97"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[CheckResponse](s.T(), rr)
	s.Equal("check-1", resp.ID)
	s.Equal("probably_prime", resp.Verdict)
	s.Equal("passed_witnesses", resp.Reason)
	s.False(resp.Guaranteed)
	s.Equal([]string{"2", "3", "5", "7", "11", "13", "17"}, resp.Evidence.Tested)
	s.Equal("Probably prime", resp.Headline)
	s.Contains(resp.Explanation, "probably prime, but not guaranteed")
	s.Equal("en", resp.Lang)
	s.True(resp.CheckedAt.Equal(s.now))
}

func (s *HandlerSuite) TestCheckFermatWitnessEvidence() {
	s.service.EXPECT().Check(gomock.Any(), "2701").Return(s.result("2701"), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: "2701", Lang: "zh"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[CheckResponse](s.T(), rr)
	residue := new(big.Int).Exp(big.NewInt(5), big.NewInt(2700), big.NewInt(2701)).String()
	s.Equal("composite", resp.Verdict)
	s.True(resp.Guaranteed)
	s.Equal("5", resp.Evidence.Witness)
	s.Equal(residue, resp.Evidence.Residue)
	s.Equal([]string{"2", "3", "5"}, resp.Evidence.Tested)
	s.Equal("不是素数", resp.Headline)
	s.Equal("zh", resp.Lang)
}

func (s *HandlerSuite) TestCheckNegotiatesAcceptLanguage() {
	s.service.EXPECT().Check(gomock.Any(), "561").Return(s.result("561"), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: "561"})
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[CheckResponse](s.T(), rr)
	s.Equal("561 能被 3 整除，是合数。", resp.Explanation)
	s.Equal("3", resp.Evidence.Divisor)
	s.Empty(resp.Evidence.Tested)
}

func (s *HandlerSuite) TestCheckQueryForm() {
	s.service.EXPECT().Check(gomock.Any(), "13").Return(s.result("13"), nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/primality/check?n=13&lang=en"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "reason", "small_prime")
}

func (s *HandlerSuite) TestCheckParseErrors() {
	tests := []struct {
		name, input, lang, kind, description string
	}{
		{"empty", "", "en", "empty", "Please enter an integer."},
		{"decimal", "12.5", "en", "not_an_integer", "Integers only (no decimals or symbols)."},
		{"empty zh", "  ", "zh", "empty", "请输入一个整数。"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.EXPECT().Check(gomock.Any(), tt.input).Return(nil, parseErr(tt.input))

			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: tt.input, Lang: tt.lang})
			rr := testutil.DoRequest(s.router, req)

			testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
			body := testutil.UnmarshalErrorResponse(s.T(), rr)
			s.Equal("validation_error", body["error"])
			s.Equal(tt.kind, body["error_kind"])
			s.Equal(tt.description, body["error_description"])
		})
	}
}

func (s *HandlerSuite) TestCheckRejectsOverlongInputWithoutCallingService() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: strings.Repeat("7", 41)})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	body := testutil.UnmarshalErrorResponse(s.T(), rr)
	s.Equal(ErrorKindTooLong, body["error_kind"])
	s.Equal("Input is longer than 40 characters.", body["error_description"])
}

func (s *HandlerSuite) TestCheckInvalidBody() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/primality/check", "{not json"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestCheckUnsupportedLang() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: "7", Lang: "fr"})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *HandlerSuite) TestCheckServiceFailureHidesDetails() {
	s.service.EXPECT().Check(gomock.Any(), "7").Return(nil, errors.New("boom"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: "7"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	s.NotContains(rr.Body.String(), "boom")
}

func (s *HandlerSuite) TestCheckTimeout() {
	s.service.EXPECT().Check(gomock.Any(), "7").
		Return(nil, dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeTimeout, "primality check did not finish in time"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: "7"})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusGatewayTimeout, "timeout")
}

func (s *HandlerSuite) TestHistory() {
	rec := s.result("1517").Record()
	s.service.EXPECT().History(gomock.Any(), 5).Return([]*models.CheckRecord{
		rec,
		{ID: "corrupt", Canonical: "9", Verdict: models.VerdictRecord{Outcome: "composite", Reason: "???"}},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/primality/history?limit=5"))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[HistoryResponse](s.T(), rr)
	s.Require().Len(resp.Checks, 1, "unreadable records are skipped")
	s.Equal("1517", resp.Checks[0].Canonical)
	s.Equal("fermat_witness", resp.Checks[0].Reason)
	s.Contains(resp.Checks[0].Explanation, "base a=2")
}

func (s *HandlerSuite) TestHistoryDefaultLimit() {
	s.service.EXPECT().History(gomock.Any(), defaultHistoryLimit).Return([]*models.CheckRecord{}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/primality/history"))

	testutil.AssertStatusOK(s.T(), rr)
	var body map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.JSONEq(`[]`, string(body["checks"]))
}

func (s *HandlerSuite) TestHistoryInvalidLimit() {
	for _, limit := range []string{"0", "101", "ten", "-3"} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/primality/history?limit="+limit))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	}
}

func (s *HandlerSuite) TestHistoryDisabled() {
	s.service.EXPECT().History(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnavailable, "check history is not enabled"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/primality/history"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "unavailable")
}

func (s *HandlerSuite) TestRequestIDReachesService() {
	s.service.EXPECT().Check(gomock.Any(), "7").
		DoAndReturn(func(ctx context.Context, _ string) (*service.Result, error) {
			s.Equal("req-42", requestcontext.RequestID(ctx))
			return s.result("7"), nil
		})

	req := testutil.WithRequestID(testutil.NewJSONRequest(s.T(), http.MethodPost, "/primality/check", CheckRequest{N: "7"}), "req-42")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
}
