package cli

import "time"

// Config holds the global flags of pagewatch-ctl.
type Config struct {
	BaseURL string        // Monitor API root
	Timeout time.Duration // Per-request timeout
	LogFile string        // Optional file that receives a copy of the log
	Verbose bool          // Log at debug level
}
