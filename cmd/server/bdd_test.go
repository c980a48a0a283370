package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/prometheus/client_golang/prometheus"

	"primelab/internal/platform/metrics"
	"primelab/internal/primality/handler"
	primalitymetrics "primelab/internal/primality/metrics"
	"primelab/internal/primality/service"
	"primelab/internal/primality/store/cache"
	"primelab/internal/primality/store/history"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "primelab",
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature tests failed")
	}
}

type apiFeature struct {
	server *httptest.Server
	lang   string
	status int
	body   map[string]any
}

func initializeScenario(sc *godog.ScenarioContext) {
	f := &apiFeature{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		reg := prometheus.NewRegistry()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc, err := service.New(
			service.WithCache(cache.NewInMemoryCache(time.Minute, 64)),
			service.WithHistory(history.NewInMemoryStore(64)),
			service.WithLogger(logger),
			service.WithMetrics(primalitymetrics.New(reg)),
		)
		if err != nil {
			return ctx, err
		}
		f.server = httptest.NewServer(newRouter(handler.New(svc, logger, 1000), nil, false, metrics.New(reg), reg, nil, logger))
		f.lang = ""
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		f.server.Close()
		return ctx, nil
	})

	sc.Step(`^I prefer the language "([^"]*)"$`, f.preferLanguage)
	sc.Step(`^I check "([^"]*)"$`, f.check)
	sc.Step(`^the response status should be (\d+)$`, f.statusShouldBe)
	sc.Step(`^the verdict should be "([^"]*)" because of "([^"]*)"$`, f.verdictShouldBe)
	sc.Step(`^the explanation should be "([^"]*)"$`, f.explanationShouldBe)
	sc.Step(`^the evidence field "([^"]*)" should be "([^"]*)"$`, f.evidenceFieldShouldBe)
	sc.Step(`^the error kind should be "([^"]*)"$`, f.errorKindShouldBe)
	sc.Step(`^the response should be served from cache$`, f.servedFromCache)
	sc.Step(`^the history should list "([^"]*)" before "([^"]*)"$`, f.historyOrder)
}

func (f *apiFeature) preferLanguage(lang string) error {
	f.lang = lang
	return nil
}

func (f *apiFeature) check(n string) error {
	return f.get("/primality/check?n=" + url.QueryEscape(n))
}

func (f *apiFeature) get(path string) error {
	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	if err != nil {
		return err
	}
	if f.lang != "" {
		req.Header.Set("Accept-Language", f.lang)
	}
	resp, err := f.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	f.status = resp.StatusCode
	f.body = map[string]any{}
	return json.NewDecoder(resp.Body).Decode(&f.body)
}

func (f *apiFeature) statusShouldBe(status int) error {
	if f.status != status {
		return fmt.Errorf("expected status %d, got %d: %v", status, f.status, f.body)
	}
	return nil
}

func (f *apiFeature) verdictShouldBe(verdict, reason string) error {
	if f.body["verdict"] != verdict || f.body["reason"] != reason {
		return fmt.Errorf("expected %s/%s, got %v/%v", verdict, reason, f.body["verdict"], f.body["reason"])
	}
	return nil
}

func (f *apiFeature) explanationShouldBe(text string) error {
	if f.body["explanation"] != text {
		return fmt.Errorf("expected explanation %q, got %q", text, f.body["explanation"])
	}
	return nil
}

func (f *apiFeature) evidenceFieldShouldBe(field, value string) error {
	ev, ok := f.body["evidence"].(map[string]any)
	if !ok {
		return fmt.Errorf("response has no evidence: %v", f.body)
	}
	if ev[field] != value {
		return fmt.Errorf("expected evidence %s=%q, got %v", field, value, ev[field])
	}
	return nil
}

func (f *apiFeature) errorKindShouldBe(kind string) error {
	if f.body["error_kind"] != kind {
		return fmt.Errorf("expected error kind %q, got %v", kind, f.body["error_kind"])
	}
	return nil
}

func (f *apiFeature) servedFromCache() error {
	if f.body["cached"] != true {
		return fmt.Errorf("expected a cached response, got %v", f.body)
	}
	return nil
}

func (f *apiFeature) historyOrder(newer, older string) error {
	if err := f.get("/primality/history"); err != nil {
		return err
	}
	checks, _ := f.body["checks"].([]any)
	if len(checks) < 2 {
		return fmt.Errorf("expected at least two checks, got %v", f.body)
	}
	first, _ := checks[0].(map[string]any)
	second, _ := checks[1].(map[string]any)
	if first["input"] != newer || second["input"] != older {
		return fmt.Errorf("expected %q then %q, got %v then %v", newer, older, first["input"], second["input"])
	}
	return nil
}
