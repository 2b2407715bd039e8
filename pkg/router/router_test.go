package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/bgfixture/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupRoutesAndMiddleware(t *testing.T) {
	r := router.New()
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Group", "api")
			next.ServeHTTP(w, req)
		})
	}

	api := r.Group("/api/", tag)
	api.Get("filters", "filters.index", ok)
	api.Delete("/filters", "filters.destroy", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/filters", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "api", rec.Header().Get("X-Group"))

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/filters", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoutesSorted(t *testing.T) {
	r := router.New()
	r.Post("/b", "b.store", ok)
	r.Get("/b", "b.index", ok)
	r.Get("/a", "a.index", ok)
	r.Get("/unnamed", "", ok)

	assert.Equal(t, []router.RouteInfo{
		{Method: http.MethodGet, Path: "/a", Name: "a.index"},
		{Method: http.MethodGet, Path: "/b", Name: "b.index"},
		{Method: http.MethodPost, Path: "/b", Name: "b.store"},
	}, r.Routes())
}

func TestParamRoute(t *testing.T) {
	r := router.New()
	r.Get("/api/doclink/{link}", "doclink", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(chi.URLParam(req, "link"))) //nolint:errcheck
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/doclink/faq", nil))
	assert.Equal(t, "faq", rec.Body.String())
	assert.Equal(t, []router.RouteInfo{{Method: http.MethodGet, Path: "/api/doclink/{link}", Name: "doclink"}}, r.Routes())
}

func TestHandleFunc(t *testing.T) {
	r := router.New()
	r.HandleFunc("/metrics", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
