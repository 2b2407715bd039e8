package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/bgfixture/pkg/metrics"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
)

func TestNotifierHook(t *testing.T) {
	n := notifier.New(notifier.WithTriggerHook(metrics.NotifierHook()))
	n.AddListener(notifier.Func(func(notifier.Event) error { return errors.New("boom") }))

	before := testutil.ToFloat64(metrics.EventsTriggered.WithLabelValues("metrics.test"))
	failed := testutil.ToFloat64(metrics.ListenerFailures.WithLabelValues("metrics.test"))

	assert.Error(t, n.TriggerListeners("metrics.test"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsTriggered.WithLabelValues("metrics.test")))
	assert.Equal(t, failed+1, testutil.ToFloat64(metrics.ListenerFailures.WithLabelValues("metrics.test")))
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/doclink/{link}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.RequestTotal.WithLabelValues(http.MethodGet, "/api/doclink/{link}", "418")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/doclink/faq", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/doclink/help", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestHandlerServesRegistry(t *testing.T) {
	metrics.StreamClients.WithLabelValues("sse").Set(0)

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bgfixture_stream_clients")
}
