// Package form turns a submitted new-check form into an API request body.
//
// Numbers are read the way a browser form script reads them: the longest
// numeric prefix counts and trailing junk is ignored ("5min" is 5).
package form

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/pagewatch/internal/domain/model"
)

// Variant selects which validation rules apply.
type Variant string

const (
	// Strict range-checks change_threshold. Rendered as form#checkForm.
	Strict Variant = "strict"
	// Lenient passes change_threshold through. Rendered as form#addCheckForm.
	Lenient Variant = "lenient"
)

// ParseVariant maps a config value to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case Strict, Lenient:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// FormID is the DOM id of the form element for this variant.
func (v Variant) FormID() string {
	if v == Lenient {
		return "addCheckForm"
	}
	return "checkForm"
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Parse validates values and builds the POST /api/checks body.
// A non-nil ValidationError means nothing may be sent upstream.
func Parse(values url.Values, variant Variant) (model.NewCheck, *ValidationError) {
	out := model.NewCheck{
		Name:     optionalString(values.Get(FieldName)),
		URL:      strings.TrimSpace(values.Get(FieldURL)),
		Selector: optionalString(values.Get(FieldSelector)),
	}

	interval, ok := leadingInt(values.Get(FieldInterval))
	if out.URL == "" {
		return out, &ValidationError{Field: FieldURL, Err: ErrRequired}
	}
	if !ok || interval == 0 {
		return out, &ValidationError{Field: FieldInterval, Err: ErrRequired}
	}
	if interval < 1 {
		return out, &ValidationError{Field: FieldInterval, Err: ErrIntervalTooSmall}
	}
	out.Interval = interval

	raw := strings.TrimSpace(values.Get(FieldThreshold))
	if raw == "" {
		return out, nil
	}
	threshold, ok := leadingFloat(raw)
	if !ok {
		return out, nil
	}
	if variant != Lenient && (threshold < 0 || threshold > 100) {
		return out, &ValidationError{Field: FieldThreshold, Err: ErrThresholdRange}
	}
	out.ChangeThreshold = &threshold
	return out, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func leadingInt(s string) (int, bool) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func leadingFloat(s string) (float64, bool) {
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
