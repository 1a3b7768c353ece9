/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Command oidcprecheck validates that an OpenID Connect provider is ready
// for the OpenID Connect conformance suite: it probes the provider's discovery,
// JWKS and dynamic client registration endpoints and prints a validation report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/acronis/go-appkit/config"
	"github.com/acronis/go-appkit/log"

	oidcprecheck "github.com/acronis/go-oidcprecheck"
	"github.com/acronis/go-oidcprecheck/report"
)

const envVarPrefix = "OIDCPRECHECK"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("oidcprecheck", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	reqTimeout := fs.Duration("timeout", 0, "per-request timeout, overrides the configuration value")
	checksArg := fs.String("checks", "",
		"comma-separated glob patterns of check names to run (the Discovery check always runs)")
	logLevel := fs.String("log-level", "error", "logging level: error, warn, info or debug")
	if err := fs.Parse(args); err != nil {
		return report.ExitCodeFailure
	}
	if fs.NArg() < 1 {
		printUsage(out, fs)
		return report.ExitCodeFailure
	}
	baseURL := fs.Arg(0)

	cfg := oidcprecheck.NewDefaultConfig()
	if *configPath != "" {
		if err := config.NewDefaultLoader(envVarPrefix).LoadFromFile(*configPath, config.DataTypeYAML, cfg); err != nil {
			fmt.Fprintf(out, "Error loading configuration from %s: %v\n", *configPath, err)
			return report.ExitCodeFailure
		}
	}
	if *reqTimeout != 0 {
		cfg.HTTPClient.RequestTimeout = config.TimeDuration(*reqTimeout)
	}
	if *checksArg != "" {
		cfg.Checks.Include = strings.Split(*checksArg, ",")
	}

	logger, closeLogger := log.NewLogger(&log.Config{
		Output: log.OutputStderr,
		Level:  parseLogLevel(*logLevel),
		Format: log.FormatText,
	})
	defer closeLogger()

	chk := oidcprecheck.NewChecker(baseURL, cfg, logger)

	fmt.Fprintf(out, "\nValidating OIDC provider at: %s\n", chk.BaseURL())
	results := chk.Run(context.Background())

	return report.NewReporter(out).Write(results)
}

func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.LevelDebug
	case "info":
		return log.LevelInfo
	case "warn":
		return log.LevelWarn
	default:
		return log.LevelError
	}
}

func printUsage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: oidcprecheck [flags] <provider-url>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Example:")
	fmt.Fprintln(out, "  oidcprecheck https://op.example.com")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fs.PrintDefaults()
}
