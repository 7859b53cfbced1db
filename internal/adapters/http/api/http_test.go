package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/handin/internal/adapters/http/api"
	"github.com/okian/handin/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newRouter() *mux.Router {
	router := mux.NewRouter()
	api.Instrument(router)
	api.NewServer().Register(context.Background(), router)
	return router
}

func TestHealthEndpoints(t *testing.T) {
	Convey("Given the API routes", t, func() {
		router := newRouter()

		Convey("When GET /readyz", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			Convey("Then it should report ok as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["status"], ShouldEqual, "ok")
			})
		})

		Convey("When GET /healthz after some traffic", func() {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it should expose the request metrics by route name", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "handin_form_http_requests_total")
				So(body, ShouldContainSubstring, `endpoint="readyz"`)
			})

			Convey("And unmatched paths should be counted as not found", func() {
				So(w.Body.String(), ShouldContainSubstring, `handin_form_http_requests_total{endpoint="unmatched",method="GET",status_code="404"}`)
			})
		})

		Convey("When a wrong method is used and the metrics are read", func() {
			bad := httptest.NewRecorder()
			router.ServeHTTP(bad, httptest.NewRequest(http.MethodDelete, "/healthz", nil))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then the 405 should be counted as unmatched and carry a request id", func() {
				So(bad.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(bad.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
				So(w.Body.String(), ShouldContainSubstring, `handin_form_http_requests_total{endpoint="unmatched",method="DELETE",status_code="405"}`)
			})
		})

		Convey("When POST /readyz", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/readyz", nil))

			Convey("Then the method should not be allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given a handler behind the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = logger.RequestID(r.Context())
		}))

		Convey("When the caller sends no id", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then a new one should be assigned and echoed", func() {
				So(seen, ShouldNotBeEmpty)
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, seen)
			})
		})

		Convey("When the caller sends an id", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(api.HeaderRequestID, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			Convey("Then it should be reused", func() {
				So(seen, ShouldEqual, "abc-123")
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestMetricsMiddlewareStreaming(t *testing.T) {
	Convey("Given a streaming handler behind the metrics middleware", t, func() {
		router := mux.NewRouter()
		router.Use(api.MetricsMiddleware)
		router.HandleFunc("/stream", func(w http.ResponseWriter, _ *http.Request) {
			rc := http.NewResponseController(w)
			_ = rc.SetWriteDeadline(time.Time{})
			_, _ = w.Write([]byte("data: x\n\n"))
			if err := rc.Flush(); err != nil {
				_, _ = w.Write([]byte("flush failed"))
			}
		}).Name("stream")

		srv := httptest.NewServer(router)
		defer srv.Close()

		Convey("When the client reads the stream", func() {
			resp, err := http.Get(srv.URL + "/stream")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)

			Convey("Then flushing should reach the underlying writer", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldEqual, "data: x\n\n")
			})
		})
	})
}
