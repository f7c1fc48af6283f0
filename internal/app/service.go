// Package service wires configuration, the monitor API client and the
// dashboard into one HTTP handler.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/okian/pagewatch/internal/adapters/http/pages"
	"github.com/okian/pagewatch/internal/adapters/http/site"
	"github.com/okian/pagewatch/internal/adapters/http/swagger"
	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/internal/config"
	"github.com/okian/pagewatch/internal/domain/dedupe"
	"github.com/okian/pagewatch/internal/domain/form"
	"github.com/okian/pagewatch/internal/domain/loader"
	"github.com/okian/pagewatch/internal/obs"
	"github.com/okian/pagewatch/pkg/logger"
	"github.com/okian/pagewatch/pkg/metrics"
)

// ErrNotStarted is returned by Handler before Start.
var ErrNotStarted = errors.New("service not started")

// Service owns the dashboard's long-lived components.
type Service struct {
	mu sync.RWMutex

	// Core components
	api     pages.API
	deduper dedupe.Deduper
	pages   *pages.Server
	handler http.Handler

	// Configuration
	cfg *config.Config

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration the service is built from.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAPI replaces the HTTP monitor API client, e.g. with an in-process fake.
func WithAPI(api pages.API) Option {
	return func(s *Service) {
		if api != nil {
			s.api = api
		}
	}
}

// New constructs a Service. Nothing is built until Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:    config.New(),
		logger: nil, // Will be replaced when service starts
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the client, the dashboard and the router.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	cfg := s.cfg

	s.logger.Info(ctx, "starting dashboard service...")

	variant, err := form.ParseVariant(cfg.FormVariant)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	policy, err := loader.ParsePolicy(cfg.ListPolicy)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("%w: display_timezone: %w", config.ErrInvalidConfig, err)
	}

	api := s.api
	if api == nil {
		client, err := monitorapi.New(cfg.APIBaseURL,
			monitorapi.WithTimeout(cfg.APITimeout),
			monitorapi.WithLogger(s.logger.Named("monitorapi")),
		)
		if err != nil {
			return err
		}
		api = client
		s.logger.Info(ctx, "using monitor api", logger.String("base_url", client.BaseURL()))
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))

	srv, err := pages.NewServer(api,
		pages.WithLogger(s.logger),
		pages.WithDeduper(s.deduper),
		pages.WithFormVariant(variant),
		pages.WithListPolicy(policy),
		pages.WithLocale(cfg.Locale),
		pages.WithLocation(loc),
		pages.WithRedirectDelay(cfg.RedirectDelay),
		pages.WithPreviewLength(cfg.PreviewLength),
		pages.WithURLDisplayLength(cfg.URLDisplayLength),
		pages.WithCORSOrigins(cfg.AllowedOrigins()),
	)
	if err != nil {
		return err
	}

	r := srv.Routes()
	site.Register(ctx, r)
	swagger.Register(ctx, r.With(srv.CORS()))

	s.api = api
	s.pages = srv
	s.handler = obs.HTTPHandler(r, "pagewatch")
	s.started = true

	s.logger.Info(ctx, "dashboard service started",
		logger.String("form_variant", string(variant)),
		logger.String("list_policy", string(policy)),
		logger.String("locale", cfg.Locale),
		logger.Int("dedupeSize", cfg.DedupeSize),
	)
	return nil
}

// Stop releases the service. The HTTP server is shut down by the caller.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping dashboard service...")
	s.handler = nil
	s.pages = nil
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Handler returns the root HTTP handler.
func (s *Service) Handler() (http.Handler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.handler, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"apiBaseURL":  s.cfg.APIBaseURL,
		"formVariant": s.cfg.FormVariant,
		"listPolicy":  s.cfg.ListPolicy,
		"dedupeSize":  s.cfg.DedupeSize,
	}

	if s.started {
		tracked := s.deduper.Size()
		stats["trackedSubmissions"] = tracked
		stats["listLoading"] = s.pages.ListLoading()

		metrics.UpdateTrackedSubmissions(tracked)
	}

	return stats
}
