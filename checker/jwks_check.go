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

// jwksRequiredKeyFields must be present on every published key.
// "alg" is optional per key and is only reported.
var jwksRequiredKeyFields = []string{"kty", "use", "kid"}

// checkJWKS fetches the document behind jwks_uri and validates the structure of every
// published key. Unlike the metadata compliance check, it fails fast on the first
// malformed key instead of accumulating violations.
func (c *Checker) checkJWKS(ctx context.Context) Result {
	if c.metadata == nil {
		return failedResult(CheckNameJWKS, "Discovery must pass first")
	}
	jwksURI, _ := c.metadata["jwks_uri"].(string)
	if jwksURI == "" {
		return failedResult(CheckNameJWKS, "No jwks_uri in discovery")
	}

	doc, err := idputil.GetJSONDocument(ctx, c.httpClient,
		idputil.JSONRequest{Method: http.MethodGet, URL: jwksURI}, c.logger, c.promMetrics)
	if err != nil {
		c.logger.Error("getting JWKS failed (url: "+jwksURI+")", log.Error(err))
		return failedResult(CheckNameJWKS, fmt.Sprintf("Failed: %s", err))
	}

	keysRaw, ok := doc["keys"]
	if !ok {
		return failedResult(CheckNameJWKS, "JWKS missing 'keys' field")
	}
	keys, ok := keysRaw.([]interface{})
	if !ok {
		return failedResult(CheckNameJWKS, "JWKS 'keys' field is not a list")
	}
	if len(keys) == 0 {
		return failedResult(CheckNameJWKS, "JWKS has no keys")
	}

	keyTypes := make(DetailSeq, 0, len(keys))
	algorithms := make(DetailSeq, 0, len(keys))
	for i, keyRaw := range keys {
		key, keyOk := keyRaw.(map[string]interface{})
		if !keyOk {
			return failedResult(CheckNameJWKS,
				fmt.Sprintf("Key %d missing fields: %s", i, strings.Join(jwksRequiredKeyFields, ", ")))
		}
		if missing := missingFields(key, jwksRequiredKeyFields); len(missing) != 0 {
			return failedResult(CheckNameJWKS,
				fmt.Sprintf("Key %d missing fields: %s", i, strings.Join(missing, ", ")))
		}
		keyTypes = append(keyTypes, detailFromJSON(key["kty"]))
		algorithms = append(algorithms, detailFromJSON(key["alg"]))
	}

	c.logger.Info(fmt.Sprintf("%d keys fetched (jwks_url: %s)", len(keys), jwksURI))
	return Result{
		Name:    CheckNameJWKS,
		Passed:  true,
		Message: fmt.Sprintf("Valid JWKS with %d key(s)", len(keys)),
		Details: Details{
			{Key: "key_count", Value: DetailInt(len(keys))},
			{Key: "key_types", Value: keyTypes},
			{Key: "algorithms", Value: algorithms},
		},
	}
}
