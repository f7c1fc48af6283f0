// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"strings"
	"time"
)

// Form variants for the add-check page.
const (
	// FormStrict validates change_threshold into [0,100] (form id checkForm).
	FormStrict = "strict"
	// FormLenient passes change_threshold through unchecked (form id addCheckForm).
	FormLenient = "lenient"
)

// List loader policies.
const (
	PolicyCollapse  = "collapse"
	PolicySupersede = "supersede"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// APIBaseURL is the monitor backend, e.g. "http://127.0.0.1:5000".
	APIBaseURL string `koanf:"api_base_url"`
	// APITimeout bounds every upstream call.
	APITimeout time.Duration `koanf:"api_timeout"`

	// RedirectDelay is how long the "check created" page waits before going back to the list.
	RedirectDelay time.Duration `koanf:"redirect_delay"`
	// FormVariant picks the add-check validation rules: strict or lenient.
	FormVariant string `koanf:"form_variant"`
	// ListPolicy decides what happens to overlapping list loads: collapse or supersede.
	ListPolicy string `koanf:"list_policy"`
	// DisplayTimezone is an IANA zone name for rendered times; empty means local.
	DisplayTimezone string `koanf:"display_timezone"`
	// Locale selects the message catalog: en or uk.
	Locale string `koanf:"locale"`
	// PreviewLength caps the content preview in the check list.
	PreviewLength int `koanf:"preview_length"`
	// URLDisplayLength caps the URL text shown in the check list.
	URLDisplayLength int `koanf:"url_display_length"`
	// CORSOrigins is a comma separated allow-list for fragment requests.
	CORSOrigins string `koanf:"cors_origins"`
	// DedupeSize bounds the remembered submission tokens.
	DedupeSize int `koanf:"dedupe_size"`

	OTelEnabled     bool    `koanf:"otel_enabled"`
	OTelEndpoint    string  `koanf:"otel_endpoint"`
	OTelSampleRatio float64 `koanf:"otel_sample_ratio"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":8090",
		APIBaseURL:       "http://127.0.0.1:5000",
		APITimeout:       10 * time.Second,
		RedirectDelay:    2 * time.Second,
		FormVariant:      FormStrict,
		ListPolicy:       PolicyCollapse,
		DisplayTimezone:  "",
		Locale:           "en",
		PreviewLength:    100,
		URLDisplayLength: 50,
		CORSOrigins:      "",
		DedupeSize:       10_000,
		OTelEnabled:      false,
		OTelEndpoint:     "localhost:4317",
		OTelSampleRatio:  1.0,
	}
}

// AllowedOrigins splits CORSOrigins into a trimmed, non-empty list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Location resolves DisplayTimezone.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.DisplayTimezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.DisplayTimezone)
}
