/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package checker

import (
	"context"
	"net/http"
	"strings"

	"github.com/acronis/go-appkit/log"

	"github.com/acronis/go-oidcprecheck/internal/idputil"
	"github.com/acronis/go-oidcprecheck/internal/metrics"
)

// OpenIDConfigurationPath is the well-known path of the provider's discovery document.
const OpenIDConfigurationPath = "/.well-known/openid-configuration"

// Opts contains options for the Checker.
type Opts struct {
	// HTTPClient is an HTTP client for making requests.
	HTTPClient *http.Client

	// Logger is a logger for the checker.
	Logger log.FieldLogger

	// PrometheusLibInstanceLabel is a label for Prometheus metrics.
	// It allows distinguishing metrics from different instances of the same library.
	PrometheusLibInstanceLabel string

	// CheckFilter decides whether a post-gate check should run, by check name.
	// The Discovery check always runs since every other check depends on its result.
	// Nil means all checks run.
	CheckFilter func(checkName string) bool
}

// Checker validates the discovery, key-publishing and dynamic client registration
// surface of an OpenID Connect provider. Checks run strictly one at a time
// in a fixed order; the Discovery check gates all the others.
type Checker struct {
	baseURL      string
	discoveryURL string
	httpClient   *http.Client
	logger       log.FieldLogger
	promMetrics  *metrics.PrometheusMetrics
	checkFilter  func(checkName string) bool

	// metadata caches the provider's discovery document.
	// It's written once by the Discovery check and read-only afterwards.
	metadata map[string]interface{}
}

// New returns a new Checker for the provider at baseURL. A trailing slash is tolerated and stripped.
func New(baseURL string) *Checker {
	return NewWithOpts(baseURL, Opts{})
}

// NewWithOpts returns a new Checker with options.
func NewWithOpts(baseURL string, opts Opts) *Checker {
	promMetrics := metrics.GetPrometheusMetrics(opts.PrometheusLibInstanceLabel, "checker")
	opts.Logger = idputil.PrepareLogger(opts.Logger)
	if opts.HTTPClient == nil {
		opts.HTTPClient = idputil.MakeDefaultHTTPClient(idputil.DefaultHTTPRequestTimeout)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Checker{
		baseURL:      baseURL,
		discoveryURL: baseURL + OpenIDConfigurationPath,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		promMetrics:  promMetrics,
		checkFilter:  opts.CheckFilter,
	}
}

// BaseURL returns the normalized provider base URL the checker validates.
func (c *Checker) BaseURL() string {
	return c.baseURL
}

// Run executes the pipeline: Discovery, JWKS, Registration, Registration CRUD, Metadata Compliance.
// If Discovery fails, nothing else runs and the returned slice contains its result only.
// All later checks run regardless of each other's outcome.
func (c *Checker) Run(ctx context.Context) []Result {
	results := make([]Result, 0, 5)

	results = append(results, c.checkDiscovery(ctx))
	if !results[0].Passed {
		return results
	}

	followUps := []struct {
		name string
		fn   func(ctx context.Context) Result
	}{
		{CheckNameJWKS, c.checkJWKS},
		{CheckNameRegistration, c.checkRegistration},
		{CheckNameRegistrationCRUD, c.checkRegistrationCRUD},
		{CheckNameMetadataCompliance, c.checkMetadataCompliance},
	}
	for _, followUp := range followUps {
		if c.checkFilter != nil && !c.checkFilter(followUp.name) {
			c.logger.Info("check skipped by filter: " + followUp.name)
			continue
		}
		results = append(results, followUp.fn(ctx))
	}
	return results
}

func failedResult(name, message string) Result {
	return Result{Name: name, Passed: false, Message: message}
}

// missingFields returns the required field names absent from doc, preserving the required order.
func missingFields(doc map[string]interface{}, required []string) []string {
	var missing []string
	for _, field := range required {
		if _, ok := doc[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}
