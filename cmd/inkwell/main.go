// Package main is the entry point for the Inkwell document engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/inkwell/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// Handle signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var stdio bool
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.WorkspacePath, "workspace", "", "Workspace directory")
	flag.StringVar(&opts.WorkspacePath, "w", "", "Workspace directory (shorthand)")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&stdio, "stdio", true, "Serve JSON-RPC over stdio")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Inkwell - document engine for editor frontends\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwell [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Inkwell speaks JSON-RPC 2.0 over stdio; a frontend holds the\n")
		fmt.Fprintf(os.Stderr, "other end of the pipe.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  inkwell                     Serve with an empty document slot\n")
		fmt.Fprintf(os.Stderr, "  inkwell file.go             Queue a file for ingestion at startup\n")
		fmt.Fprintf(os.Stderr, "  inkwell -w ./project        Serve with workspace overrides\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Inkwell %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if !stdio {
		fmt.Fprintln(os.Stderr, "Error: stdio is the only transport; -stdio=false is not supported")
		os.Exit(1)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
		// Valid; empty defers to the config file.
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	// Remaining arguments are files to queue for ingestion.
	opts.Files = flag.Args()

	return opts
}
