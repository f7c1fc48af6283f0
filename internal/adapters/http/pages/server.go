// Package pages serves the dashboard: HTML pages, panel fragments and the
// form and action endpoints that write through to the monitor API.
package pages

import (
	"context"
	"errors"
	"html/template"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/internal/domain/dedupe"
	"github.com/okian/pagewatch/internal/domain/form"
	"github.com/okian/pagewatch/internal/domain/loader"
	"github.com/okian/pagewatch/internal/domain/model"
	"github.com/okian/pagewatch/pkg/logger"
	"github.com/okian/pagewatch/pkg/metrics"
)

// API is the part of the monitor backend the dashboard uses.
type API interface {
	ListChecks(ctx context.Context) ([]model.Check, error)
	GetCheck(ctx context.Context, id string) (*model.Check, error)
	CreateCheck(ctx context.Context, in model.NewCheck) (*model.Check, error)
	UpdateCheck(ctx context.Context, id string, in model.NewCheck) (*model.Check, error)
	SystemStatus(ctx context.Context) (*model.SystemStatus, error)
	SchedulerDiagnostics(ctx context.Context) (*model.SchedulerDiagnostics, error)
	ForceSchedulerCheck(ctx context.Context) (model.ForceCheckResult, error)
	ManualCheck(ctx context.Context, id string) (*model.ManualCheckResult, error)
	ToggleStatus(ctx context.Context, id string) (*model.ToggleResult, error)
	DeleteCheck(ctx context.Context, id string) (*model.DeleteResult, error)
}

// Server renders the dashboard.
type Server struct {
	api     API
	deduper dedupe.Deduper
	list    *loader.Loader[template.HTML]
	views   *renderer
	build   viewBuilder
	msgs    catalog
	locale  string
	variant form.Variant

	redirectDelay time.Duration
	origins       []string
	log           logger.Logger
}

// NewServer builds a Server around api.
func NewServer(api API, opts ...Option) (*Server, error) {
	if api == nil {
		return nil, ErrNilAPI
	}
	o := options{
		log:           logger.Nop(),
		variant:       form.Strict,
		policy:        loader.Collapse,
		locale:        defaultLocale,
		loc:           time.Local,
		redirectDelay: 2 * time.Second,
		previewLen:    100,
		urlLen:        50,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.deduper == nil {
		o.deduper = dedupe.NewInMemoryDeduper()
	}

	msgs := catalogFor(o.locale)
	views, err := newRenderer(msgs, o.log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		api:     api,
		deduper: o.deduper,
		views:   views,
		build: viewBuilder{
			msgs:       msgs,
			loc:        o.loc,
			now:        o.now,
			previewLen: o.previewLen,
			urlLen:     o.urlLen,
		},
		msgs:          msgs,
		locale:        o.locale,
		variant:       o.variant,
		redirectDelay: o.redirectDelay,
		origins:       o.origins,
		log:           o.log.Named("pages"),
	}
	s.list = loader.New(o.policy, s.renderCheckList,
		loader.WithOnStart(metrics.RecordListLoadStarted),
		loader.WithOnCollapsed(metrics.RecordListLoadCollapsed),
		loader.WithOnSuperseded(metrics.RecordListLoadSuperseded),
	)
	return s, nil
}

// Routes returns the router with every page, fragment, action and ops route.
// Callers may mount more routes on it.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/", s.handleIndex)
	r.Get("/add", s.handleAddForm)
	r.Post("/add", s.handleAddSubmit)

	r.Get("/check", s.handleDetails)
	r.Get("/check/", s.handleDetails)
	r.Get("/check/{id}", s.handleDetails)
	r.Get("/check/{id}/edit", s.handleEditForm)
	r.Post("/check/{id}/edit", s.handleEditSubmit)
	r.Post("/check/{id}/manual-check", s.handleManualCheck)
	r.Post("/check/{id}/toggle-status", s.handleToggleStatus)
	r.Post("/check/{id}/delete", s.handleDelete)

	r.Get("/status/diagnostics", s.handleDiagnosticsPage)
	r.Post("/status/force-check", s.handleForceCheck)

	r.With(s.CORS()).Route("/fragments", func(r chi.Router) {
		r.Get("/checks", s.handleChecksFragment)
		r.Get("/status", s.handleStatusFragment)
		r.Get("/diagnostics", s.handleDiagnosticsFragment)
	})

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	return r
}

// CORS allows configured origins to read fragments and docs. Without
// configured origins it does nothing.
func (s *Server) CORS() func(http.Handler) http.Handler {
	if len(s.origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", fragmentHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})
}

// ListLoading reports whether a check list load is running.
func (s *Server) ListLoading() bool {
	return s.list.Loading()
}

func (s *Server) layout(title string, notice *NoticeView) layoutView {
	return layoutView{
		Title:  title,
		Lang:   s.locale,
		Notice: notice,
	}
}

// errorText is the server's own message when it sent one, else a localized fallback.
func (s *Server) errorText(err error) string {
	if msg, ok := monitorapi.ServerMessage(err); ok {
		return msg
	}
	return s.msgs.T("error.unreachable")
}

// upstreamFailed counts and logs a failed call. Calls cut short by a
// cancelled or superseded request are only noted at debug.
func (s *Server) upstreamFailed(ctx context.Context, op string, err error) {
	if ctx.Err() != nil {
		logger.FromContext(ctx, s.log).Debug(ctx, "monitor api call abandoned",
			logger.String("op", op),
			logger.Error(err),
		)
		return
	}
	errType := monitorapi.ErrorType(err)
	metrics.RecordErrorByComponent("pages", errType)
	logger.FromContext(ctx, s.log).Warn(ctx, "monitor api call failed",
		logger.String("op", op),
		logger.String("error_type", errType),
		logger.Error(err),
	)
}

func (s *Server) redirectSeconds() int {
	return int(math.Ceil(s.redirectDelay.Seconds()))
}

func isSuperseded(err error) bool {
	return errors.Is(err, loader.ErrSuperseded)
}
