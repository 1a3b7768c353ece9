/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package oidcprecheck validates that a running OpenID Connect provider exposes
// the discovery, key-publishing and dynamic client registration surface required
// before submitting the provider to the OpenID Connect conformance suite.
// The heavy lifting is done by the checker package; this package ties it to the
// library configuration.
package oidcprecheck

import (
	"time"

	"github.com/acronis/go-appkit/log"
	"github.com/vasayxtx/go-glob"

	"github.com/acronis/go-oidcprecheck/checker"
	"github.com/acronis/go-oidcprecheck/internal/idputil"
)

// NewChecker creates a checker.Checker for the provider at baseURL using the passed configuration.
// If cfg is nil, the default configuration is used.
func NewChecker(baseURL string, cfg *Config, logger log.FieldLogger) *checker.Checker {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	return checker.NewWithOpts(baseURL, checker.Opts{
		HTTPClient:  idputil.MakeDefaultHTTPClient(time.Duration(cfg.HTTPClient.RequestTimeout)),
		Logger:      logger,
		CheckFilter: MakeCheckFilter(cfg.Checks.Include),
	})
}

// MakeCheckFilter compiles glob patterns over check names (e.g. "Registration*")
// into a filter usable as checker.Opts.CheckFilter. An empty pattern list means
// no filtering and yields a nil filter.
func MakeCheckFilter(patterns []string) func(checkName string) bool {
	if len(patterns) == 0 {
		return nil
	}
	matchers := make([]func(s string) bool, 0, len(patterns))
	for i := range patterns {
		matchers = append(matchers, glob.Compile(patterns[i]))
	}
	return func(checkName string) bool {
		for _, match := range matchers {
			if match(checkName) {
				return true
			}
		}
		return false
	}
}
