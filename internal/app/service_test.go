package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	service "github.com/okian/pagewatch/internal/app"
	"github.com/okian/pagewatch/internal/config"
	"github.com/okian/pagewatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// newBackend fakes the monitor API with an empty check list.
func newBackend() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/checks":
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/checks":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"c1","url":"https://example.com","interval":5,"status":"active"}`))
		case r.URL.Path == "/api/system-status":
			_, _ = w.Write([]byte(`{"scheduler_status":"running","app_version":"1.0.0"}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func testConfig(baseURL string) *config.Config {
	cfg := config.New()
	cfg.APIBaseURL = baseURL
	cfg.APITimeout = 2 * time.Second
	return cfg
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["formVariant"], ShouldEqual, config.FormStrict)
			So(svc.GetStats()["listPolicy"], ShouldEqual, config.PolicyCollapse)
		})

		Convey("Then it has no handler before Start", func() {
			_, err := svc.Handler()
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service pointed at a backend", t, func() {
		backend := newBackend()
		defer backend.Close()

		svc := service.New(service.WithConfig(testConfig(backend.URL)))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And every route family is served", func() {
				h, err := svc.Handler()
				So(err, ShouldBeNil)

				for _, target := range []string{"/", "/add", "/fragments/checks", "/static/pagewatch.css", "/openapi.yaml", "/api-docs", "/healthz", "/metrics"} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
					So(w.Code, ShouldEqual, http.StatusOK)
				}
			})

			Convey("And a submitted form is remembered", func() {
				h, _ := svc.Handler()
				body := url.Values{"submission_token": {"t-1"}, "url": {"https://example.com"}, "interval": {"5"}}
				req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(body.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Check added successfully!")
				So(svc.GetStats()["trackedSubmissions"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given a service with an unknown form variant", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.FormVariant = "loose"
		svc := service.New(service.WithConfig(cfg))

		Convey("Then Start reports invalid configuration", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a service with an unknown list policy", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.ListPolicy = "queue"
		svc := service.New(service.WithConfig(cfg))

		Convey("Then Start reports invalid configuration", func() {
			So(errors.Is(svc.Start(context.Background()), config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		backend := newBackend()
		defer backend.Close()

		svc := service.New(service.WithConfig(testConfig(backend.URL)))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
				_, err := svc.Handler()
				So(err, ShouldEqual, service.ErrNotStarted)
			})

			Convey("And stopping twice is harmless", func() {
				So(svc.Stop, ShouldNotPanic)
			})
		})
	})
}
