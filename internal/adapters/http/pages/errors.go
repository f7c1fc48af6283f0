package pages

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	ErrRender     = errors.New("template render failed")
	ErrTemplates  = errors.New("template parse failed")
	ErrNilAPI     = errors.New("monitor api client is required")
	ErrBadCheckID = errors.New("cannot determine check id")
)
