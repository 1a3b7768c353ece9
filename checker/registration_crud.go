/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package checker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/acronis/go-appkit/log"

	"github.com/acronis/go-oidcprecheck/internal/idputil"
)

// checkRegistrationCRUD exercises the complete lifecycle of a registered client:
// create, read, update and delete, reusing the registration_access_token issued
// at creation for every follow-up operation. Any failed sub-step aborts the rest.
// The client it creates is its own, independent of the one made by checkRegistration.
func (c *Checker) checkRegistrationCRUD(ctx context.Context) Result {
	if c.metadata == nil {
		return failedResult(CheckNameRegistrationCRUD, "Discovery must pass first")
	}
	regEndpoint, _ := c.metadata["registration_endpoint"].(string)
	if regEndpoint == "" {
		return failedResult(CheckNameRegistrationCRUD, "No registration_endpoint in discovery")
	}

	// Create.
	clientMetadata := map[string]interface{}{
		"redirect_uris":  []string{"https://example.com/callback"},
		"client_name":    "CRUD Test Client",
		"grant_types":    []string{"authorization_code"},
		"response_types": []string{"code"},
	}
	createDoc, err := idputil.GetJSONDocument(ctx, c.httpClient,
		idputil.JSONRequest{Method: http.MethodPost, URL: regEndpoint, Body: clientMetadata}, c.logger, c.promMetrics)
	if err != nil {
		c.logger.Error("client creation failed (url: "+regEndpoint+")", log.Error(err))
		return failedResult(CheckNameRegistrationCRUD, fmt.Sprintf("Failed: %s", err))
	}
	client, err := decodeRegisteredClient(createDoc)
	if err != nil {
		return failedResult(CheckNameRegistrationCRUD, fmt.Sprintf("Failed: %s", err))
	}
	if client.ClientID == "" {
		return failedResult(CheckNameRegistrationCRUD, "Response missing fields: client_id")
	}
	if client.RegistrationAccessToken == "" {
		return failedResult(CheckNameRegistrationCRUD, "No registration_access_token in response")
	}
	clientURL := regEndpoint + "/" + client.ClientID

	// Read.
	readDoc, err := idputil.GetJSONDocument(ctx, c.httpClient,
		idputil.JSONRequest{Method: http.MethodGet, URL: clientURL, BearerToken: client.RegistrationAccessToken},
		c.logger, c.promMetrics)
	if err != nil {
		c.logger.Error("reading registered client failed (url: "+clientURL+")", log.Error(err))
		return failedResult(CheckNameRegistrationCRUD, fmt.Sprintf("Failed: %s", err))
	}
	retrieved, err := decodeRegisteredClient(readDoc)
	if err != nil {
		return failedResult(CheckNameRegistrationCRUD, fmt.Sprintf("Failed: %s", err))
	}
	if retrieved.ClientID != client.ClientID {
		return failedResult(CheckNameRegistrationCRUD, "Retrieved client_id mismatch")
	}

	// Update.
	updateMetadata := map[string]interface{}{
		"redirect_uris": []string{"https://example.com/callback", "https://example.com/cb2"},
		"client_name":   "Updated CRUD Test Client",
	}
	updateDoc, err := idputil.GetJSONDocument(ctx, c.httpClient,
		idputil.JSONRequest{
			Method: http.MethodPut, URL: clientURL, Body: updateMetadata, BearerToken: client.RegistrationAccessToken,
		}, c.logger, c.promMetrics)
	if err != nil {
		c.logger.Error("updating registered client failed (url: "+clientURL+")", log.Error(err))
		return failedResult(CheckNameRegistrationCRUD, fmt.Sprintf("Failed: %s", err))
	}
	updated, err := decodeRegisteredClient(updateDoc)
	if err != nil {
		return failedResult(CheckNameRegistrationCRUD, fmt.Sprintf("Failed: %s", err))
	}
	if len(updated.RedirectURIs) != 2 {
		return failedResult(CheckNameRegistrationCRUD, "Client update failed")
	}

	// Delete. The status code is inspected directly: RFC 7592 requires exactly 204.
	deleteResp, err := idputil.DoJSONRequest(ctx, c.httpClient,
		idputil.JSONRequest{Method: http.MethodDelete, URL: clientURL, BearerToken: client.RegistrationAccessToken},
		c.logger, c.promMetrics)
	if err != nil {
		c.logger.Error("deleting registered client failed (url: "+clientURL+")", log.Error(err))
		return failedResult(CheckNameRegistrationCRUD, fmt.Sprintf("Failed: %s", err))
	}
	if deleteResp.StatusCode != http.StatusNoContent {
		return failedResult(CheckNameRegistrationCRUD,
			fmt.Sprintf("Delete returned %d, expected 204", deleteResp.StatusCode))
	}

	c.logger.Info(fmt.Sprintf("client lifecycle verified (client_id: %s)", truncateClientID(client.ClientID)))
	return Result{
		Name:    CheckNameRegistrationCRUD,
		Passed:  true,
		Message: "All CRUD operations successful",
		Details: Details{
			{Key: "create", Value: DetailString("✓")},
			{Key: "read", Value: DetailString("✓")},
			{Key: "update", Value: DetailString("✓")},
			{Key: "delete", Value: DetailString("✓")},
		},
	}
}
