// Package model contains the monitor API shapes passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LastResult is the outcome of the most recent run of a check.
type LastResult string

// Known results reported by the monitor backend.
const (
	ResultChanged  LastResult = "changed"
	ResultNoChange LastResult = "no_change"
	ResultError    LastResult = "error"
	ResultUnknown  LastResult = "unknown"
)

// Normalize maps empty or unrecognised values to ResultUnknown.
func (r LastResult) Normalize() LastResult {
	switch LastResult(strings.ToLower(strings.TrimSpace(string(r)))) {
	case ResultChanged:
		return ResultChanged
	case ResultNoChange:
		return ResultNoChange
	case ResultError:
		return ResultError
	default:
		return ResultUnknown
	}
}

// Check statuses.
const (
	StatusActive = "active"
	StatusPaused = "paused"
)

// Check is a configured monitored URL as returned by the monitor API.
type Check struct {
	ID                 string     `json:"id"`
	Name               *string    `json:"name"`
	URL                string     `json:"url"`
	Selector           *string    `json:"selector"`
	Interval           int        `json:"interval"`
	ChangeThreshold    *float64   `json:"change_threshold"`
	Status             string     `json:"status"`
	LastResult         LastResult `json:"last_result"`
	LastCheckedAt      *Timestamp `json:"last_checked_at"`
	NextCheckAt        *Timestamp `json:"next_check_at"`
	LastExtractedValue *string    `json:"last_extracted_value"`
	LastErrorMessage   *string    `json:"last_error_message,omitempty"`
	CreatedAt          *Timestamp `json:"created_at,omitempty"`

	// Attached by GET /api/checks from the newest history entry.
	CurrentContent   *string    `json:"current_content,omitempty"`
	CurrentTimestamp *Timestamp `json:"current_timestamp,omitempty"`
}

// UnmarshalJSON decodes a check. change_threshold and interval may arrive as
// numbers or numeric strings; anything else leaves them unset.
func (c *Check) UnmarshalJSON(b []byte) error {
	type plain Check
	aux := struct {
		*plain
		ChangeThreshold json.RawMessage `json:"change_threshold"`
		Interval        json.RawMessage `json:"interval"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	c.ChangeThreshold = nil
	if f, ok := looseNumber(aux.ChangeThreshold); ok {
		c.ChangeThreshold = &f
	}
	c.Interval = 0
	if f, ok := looseNumber(aux.Interval); ok {
		c.Interval = int(f)
	}
	return nil
}

// looseNumber reads a JSON number or a string holding one ("10", " 7.5 ", "5%").
func looseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// DisplayName returns the trimmed name, or "" when the check is unnamed.
func (c *Check) DisplayName() string {
	if c.Name == nil {
		return ""
	}
	return strings.TrimSpace(*c.Name)
}

// SelectorText returns the selector, or "" when the whole page is watched.
func (c *Check) SelectorText() string {
	if c.Selector == nil {
		return ""
	}
	return strings.TrimSpace(*c.Selector)
}

// CurrentValue prefers the list endpoint's current content and falls back to
// the last extracted value.
func (c *Check) CurrentValue() string {
	if c.CurrentContent != nil && *c.CurrentContent != "" {
		return *c.CurrentContent
	}
	if c.LastExtractedValue != nil {
		return *c.LastExtractedValue
	}
	return ""
}

// IsPaused reports whether the check was paused by the user.
func (c *Check) IsPaused() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), StatusPaused)
}

// NewCheck is the POST /api/checks body. Nil pointers are sent as JSON null.
type NewCheck struct {
	Name            *string  `json:"name"`
	URL             string   `json:"url"`
	Selector        *string  `json:"selector"`
	ChangeThreshold *float64 `json:"change_threshold"`
	Interval        int      `json:"interval"`
}
