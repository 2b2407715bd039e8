package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
)

// Option configures how scenarios run.
type Option func(*runConfig)

type runConfig struct {
	notifier *notifier.Notifier
}

// WithNotifier lets scenarios observe and fail events on n.
func WithNotifier(n *notifier.Notifier) Option {
	return func(c *runConfig) { c.notifier = n }
}

func newRunConfig(opts []Option) *runConfig {
	c := &runConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes a single scenario file against handler.
//
// Lifecycle per scenario:
//  1. Read the request body from requestFileName (if set).
//  2. Attach a step listener to the notifier (if one was given).
//  3. Fire the request through httptest.
//  4. Assert status code, response body and events.
//  5. Detach the listener.
func Run(t *testing.T, handler http.Handler, scenarioPath string, opts ...Option) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	cfg := newRunConfig(opts)
	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, handler, s, cfg)
	})
}

// RunDir runs every scenario file in dir, in file name order, as a subtest.
// Scenarios share handler, so later files see the state earlier ones left.
func RunDir(t *testing.T, handler http.Handler, dir string, opts ...Option) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Errorf("%v", err)
	}
	if len(scenarios) == 0 {
		t.FailNow()
	}

	cfg := newRunConfig(opts)
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s, cfg)
		})
	}
}

// ─── Internal execution ───────────────────────────────────────────────────────

func runScenario(t *testing.T, handler http.Handler, s *Scenario, cfg *runConfig) {
	t.Helper()

	var reqBody io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		reqBody = bytes.NewReader(data)
	}

	var listener *MockListener
	if s.ExpectedEvents != nil || len(s.ListenerSteps) > 0 {
		if cfg.notifier == nil {
			t.Fatalf("[%s] scenario checks events but no notifier was given", s.Name)
		}
		listener = NewStepListener(s.ListenerSteps)
		h := cfg.notifier.AddListener(listener)
		defer cfg.notifier.RemoveListener(h)
	}

	method := strings.ToUpper(s.RequestMethod)
	if method == "" {
		method = http.MethodGet
	}

	req := httptest.NewRequest(method, s.RequestURL, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
		} else {
			AssertJSONBody(t, s, expected, rec.Body.Bytes())
		}
	}

	if listener != nil {
		AssertEvents(t, s, listener)
	}
}
