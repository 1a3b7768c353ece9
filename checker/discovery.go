/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package checker

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/acronis/go-appkit/log"

	"github.com/acronis/go-oidcprecheck/internal/idputil"
)

// discoveryRequiredFields are required by OpenID Connect Discovery 1.0.
var discoveryRequiredFields = []string{
	"issuer",
	"authorization_endpoint",
	"token_endpoint",
	"jwks_uri",
	"response_types_supported",
	"subject_types_supported",
	"id_token_signing_alg_values_supported",
}

// checkDiscovery fetches the provider's discovery document, verifies the required fields
// and that the advertised issuer equals the requested base URL. On success the document
// is cached for all subsequent checks.
func (c *Checker) checkDiscovery(ctx context.Context) Result {
	doc, err := idputil.GetJSONDocument(ctx, c.httpClient,
		idputil.JSONRequest{Method: http.MethodGet, URL: c.discoveryURL}, c.logger, c.promMetrics)
	if err != nil {
		c.logger.Error("getting discovery document failed (url: "+c.discoveryURL+")", log.Error(err))
		return failedResult(CheckNameDiscovery, fmt.Sprintf("Failed: %s", err))
	}

	if missing := missingFields(doc, discoveryRequiredFields); len(missing) != 0 {
		return Result{
			Name:    CheckNameDiscovery,
			Passed:  false,
			Message: fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")),
			Details: detailsFromDocument(doc),
		}
	}

	if issuer, _ := doc["issuer"].(string); issuer != c.baseURL {
		return Result{
			Name:    CheckNameDiscovery,
			Passed:  false,
			Message: fmt.Sprintf("Issuer mismatch: %v != %s", doc["issuer"], c.baseURL),
			Details: detailsFromDocument(doc),
		}
	}

	c.metadata = doc
	c.logger.Info(fmt.Sprintf("discovery document fetched and cached (url: %s)", c.discoveryURL))

	// registration_endpoint is optional in the discovery protocol (though the
	// registration checks need it), so its absence is reported, not failed.
	registrationEndpoint := DetailValue(DetailString("N/A"))
	if endpoint, ok := doc["registration_endpoint"]; ok {
		registrationEndpoint = detailFromJSON(endpoint)
	}
	return Result{
		Name:    CheckNameDiscovery,
		Passed:  true,
		Message: "All required fields present",
		Details: Details{
			{Key: "issuer", Value: detailFromJSON(doc["issuer"])},
			{Key: "endpoints", Value: DetailMapping{
				{Key: "authorization", Value: detailFromJSON(doc["authorization_endpoint"])},
				{Key: "token", Value: detailFromJSON(doc["token_endpoint"])},
				{Key: "jwks", Value: detailFromJSON(doc["jwks_uri"])},
				{Key: "registration", Value: registrationEndpoint},
			}},
		},
	}
}
