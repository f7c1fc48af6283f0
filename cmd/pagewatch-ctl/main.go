package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pagewatch/internal/cli"
)

// Default configuration constants.
const (
	defaultBaseURL = "http://127.0.0.1:5000"
	defaultTimeout = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL = flag.String("url", defaultBaseURL, "Base URL of the monitor API")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Also write the log to this file")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Usage = func() { cli.ShowHelp(os.Stderr) }
	flag.Parse()

	if *help {
		cli.ShowHelp(os.Stdout)
		return 0
	}

	closer, err := cli.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := &cli.Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
		LogFile: *logFile,
		Verbose: *verbose,
	}

	if err := cli.Run(ctx, config, flag.Args(), os.Stdout); err != nil {
		os.Stderr.WriteString("Error: " + cli.Message(err) + "\n")
		if errors.Is(err, cli.ErrUsage) || errors.Is(err, cli.ErrUnknownCommand) {
			cli.ShowHelp(os.Stderr)
		}
		return 1
	}
	return 0
}
