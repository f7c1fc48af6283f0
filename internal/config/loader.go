package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PAGEWATCH_CONFIG is set
//  3. env (prefix PAGEWATCH_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv("PAGEWATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// PAGEWATCH_API_BASE_URL -> api_base_url (flat keys, underscores kept).
	envProvider := env.Provider("PAGEWATCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pagewatch_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields Load cannot fix up on its own.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}

	u, err := url.Parse(strings.TrimSpace(c.APIBaseURL))
	if err != nil {
		return fmt.Errorf("%w: api_base_url: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: api_base_url must use http or https", ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: api_base_url must include a host", ErrInvalidConfig)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("%w: api_timeout must be positive", ErrInvalidConfig)
	}

	switch c.FormVariant {
	case FormStrict, FormLenient:
	default:
		return fmt.Errorf("%w: unknown form_variant %q", ErrInvalidConfig, c.FormVariant)
	}
	switch c.ListPolicy {
	case PolicyCollapse, PolicySupersede:
	default:
		return fmt.Errorf("%w: unknown list_policy %q", ErrInvalidConfig, c.ListPolicy)
	}
	switch c.Locale {
	case "en", "uk":
	default:
		return fmt.Errorf("%w: unknown locale %q", ErrInvalidConfig, c.Locale)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: display_timezone: %w", ErrInvalidConfig, err)
	}
	if c.PreviewLength < 1 || c.URLDisplayLength < 1 {
		return fmt.Errorf("%w: preview_length and url_display_length must be positive", ErrInvalidConfig)
	}
	return nil
}
