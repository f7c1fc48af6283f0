package pages

import (
	"time"

	"github.com/okian/pagewatch/internal/domain/dedupe"
	"github.com/okian/pagewatch/internal/domain/form"
	"github.com/okian/pagewatch/internal/domain/loader"
	"github.com/okian/pagewatch/pkg/logger"
)

type options struct {
	log           logger.Logger
	deduper       dedupe.Deduper
	variant       form.Variant
	policy        loader.Policy
	locale        string
	loc           *time.Location
	redirectDelay time.Duration
	previewLen    int
	urlLen        int
	origins       []string
	now           func() time.Time
}

// Option configures a Server.
type Option func(*options)

// WithLogger sets the base logger; requests add their own fields to it.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithDeduper sets the submission token store.
func WithDeduper(d dedupe.Deduper) Option {
	return func(o *options) {
		if d != nil {
			o.deduper = d
		}
	}
}

// WithFormVariant picks the add-check validation rules.
func WithFormVariant(v form.Variant) Option {
	return func(o *options) {
		if v != "" {
			o.variant = v
		}
	}
}

// WithListPolicy picks how overlapping check list loads behave.
func WithListPolicy(p loader.Policy) Option {
	return func(o *options) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithLocale selects the message catalog ("en" or "uk").
func WithLocale(locale string) Option {
	return func(o *options) {
		if locale != "" {
			o.locale = locale
		}
	}
}

// WithLocation sets the zone times are displayed in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithRedirectDelay sets how long the "check added" page waits before going back to the list.
func WithRedirectDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.redirectDelay = d
		}
	}
}

// WithPreviewLength caps the content preview in the check list.
func WithPreviewLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.previewLen = n
		}
	}
}

// WithURLDisplayLength caps the URL text in the check list.
func WithURLDisplayLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.urlLen = n
		}
	}
}

// WithCORSOrigins allows cross-origin reads of the fragment routes.
func WithCORSOrigins(origins []string) Option {
	return func(o *options) {
		o.origins = origins
	}
}

// WithClock replaces time.Now for relative times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
