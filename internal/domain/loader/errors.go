package loader

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	// ErrSuperseded is returned to a caller whose load was replaced by a newer one.
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("unknown load policy")
	// ErrPanicked is returned to every caller of a collapsed load whose function panicked.
	ErrPanicked = errors.New("load panicked")
)
