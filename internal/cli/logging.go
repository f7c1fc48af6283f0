package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/pagewatch/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging sends the log to stderr and, when logFile is set, to that file
// as well. The returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}

	if err := logger.InitWithFormat(logger.FormatText, w); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)
	if logFile != "" {
		logger.Get().Debug(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closer, nil
}

// ShowHelp prints usage information for pagewatch-ctl.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `pagewatch-ctl
=============

Terminal client for the web monitor API.

Usage:
  pagewatch-ctl [options] <command> [arguments]

Options:
  -url string
        Base URL of the monitor API (default "http://127.0.0.1:5000")
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Also write the log to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Commands:
  list                 List every check
  show <id>            Show one check
  status               Show the scheduler summary
  diag                 Show per-job scheduler diagnostics
  force                Ask the scheduler to run due checks now
  add -url URL -interval MIN [-name NAME] [-selector CSS] [-threshold PCT]
                       Create a check

Examples:
  pagewatch-ctl list
  pagewatch-ctl -url http://monitor:5000 show 42
  pagewatch-ctl add -url https://example.com -interval 15 -selector "#price" -threshold 5
`)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
