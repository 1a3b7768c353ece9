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
	"github.com/mitchellh/mapstructure"

	"github.com/acronis/go-oidcprecheck/internal/idputil"
)

// RegisteredClient is the typed view of a dynamic client registration response (RFC 7591).
// Presence checks are still done on the raw document since absent and empty
// fields are not distinguishable after decoding.
type RegisteredClient struct {
	ClientID                string   `mapstructure:"client_id"`
	ClientSecret            string   `mapstructure:"client_secret"`
	RegistrationAccessToken string   `mapstructure:"registration_access_token"`
	RegistrationClientURI   string   `mapstructure:"registration_client_uri"`
	TokenEndpointAuthMethod string   `mapstructure:"token_endpoint_auth_method"`
	RedirectURIs            []string `mapstructure:"redirect_uris"`
	ClientName              string   `mapstructure:"client_name"`
}

func decodeRegisteredClient(doc map[string]interface{}) (RegisteredClient, error) {
	var client RegisteredClient
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &client})
	if err != nil {
		return RegisteredClient{}, fmt.Errorf("construct decoder: %w", err)
	}
	if err = decoder.Decode(doc); err != nil {
		return RegisteredClient{}, fmt.Errorf("decode client registration response: %w", err)
	}
	return client, nil
}

// truncateClientID shortens a provider-assigned client identifier for reporting
// so that full identifiers don't leak into logs and reports.
func truncateClientID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return id + "..."
}

// checkRegistration registers a confidential client and validates the response
// per RFC 7591: client_id must be assigned, and a client whose token endpoint
// auth method is not "none" must be given a client_secret.
func (c *Checker) checkRegistration(ctx context.Context) Result {
	if c.metadata == nil {
		return failedResult(CheckNameRegistration, "Discovery must pass first")
	}
	regEndpoint, _ := c.metadata["registration_endpoint"].(string)
	if regEndpoint == "" {
		return failedResult(CheckNameRegistration, "No registration_endpoint in discovery")
	}

	clientMetadata := map[string]interface{}{
		"redirect_uris":              []string{"https://example.com/callback"},
		"client_name":                "Conformance Validator Test Client",
		"grant_types":                []string{"authorization_code"},
		"response_types":             []string{"code"},
		"token_endpoint_auth_method": "client_secret_basic",
	}
	doc, err := idputil.GetJSONDocument(ctx, c.httpClient,
		idputil.JSONRequest{Method: http.MethodPost, URL: regEndpoint, Body: clientMetadata}, c.logger, c.promMetrics)
	if err != nil {
		c.logger.Error("client registration failed (url: "+regEndpoint+")", log.Error(err))
		return failedResult(CheckNameRegistration, fmt.Sprintf("Failed: %s", err))
	}

	if missing := missingFields(doc, []string{"client_id"}); len(missing) != 0 {
		return Result{
			Name:    CheckNameRegistration,
			Passed:  false,
			Message: fmt.Sprintf("Response missing fields: %s", strings.Join(missing, ", ")),
			Details: detailsFromDocument(doc),
		}
	}
	client, err := decodeRegisteredClient(doc)
	if err != nil {
		return failedResult(CheckNameRegistration, fmt.Sprintf("Failed: %s", err))
	}

	_, hasSecret := doc["client_secret"]
	_, hasRegistrationToken := doc["registration_access_token"]

	// A response omitting token_endpoint_auth_method is treated as confidential here,
	// i.e. the secret is still required.
	if client.TokenEndpointAuthMethod != "none" && !hasSecret {
		return Result{
			Name:    CheckNameRegistration,
			Passed:  false,
			Message: "Missing client_secret for confidential client",
			Details: detailsFromDocument(doc),
		}
	}

	c.logger.Info(fmt.Sprintf("client registered (client_id: %s)", truncateClientID(client.ClientID)))
	return Result{
		Name:    CheckNameRegistration,
		Passed:  true,
		Message: "Client registered successfully",
		Details: Details{
			{Key: "client_id", Value: DetailString(truncateClientID(client.ClientID))},
			{Key: "has_secret", Value: DetailBool(hasSecret)},
			{Key: "has_registration_token", Value: DetailBool(hasRegistrationToken)},
		},
	}
}
