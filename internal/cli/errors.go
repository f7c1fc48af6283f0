package cli

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUsage          = errors.New("usage")
	ErrUnknownCommand = errors.New("unknown command")
)
