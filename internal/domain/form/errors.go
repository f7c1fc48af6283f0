package form

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrRequired         = errors.New("url and interval are required")
	ErrIntervalTooSmall = errors.New("interval must be at least 1 minute")
	ErrThresholdRange   = errors.New("change threshold must be between 0 and 100")
	ErrUnknownVariant   = errors.New("unknown form variant")
)

// Field names as they appear in the submitted form.
const (
	FieldURL       = "url"
	FieldInterval  = "interval"
	FieldThreshold = "change_threshold"
	FieldName      = "name"
	FieldSelector  = "selector"
)

// ValidationError names the offending field and the rule it broke.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
