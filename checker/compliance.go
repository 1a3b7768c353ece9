/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package checker

import (
	"context"
	"fmt"
)

// checkMetadataCompliance runs a battery of semantic checks against the cached
// discovery document. All violations are accumulated before deciding pass/fail,
// in contrast with the fail-fast JWKS check, so that one report lists everything
// that needs fixing.
func (c *Checker) checkMetadataCompliance(_ context.Context) Result {
	if c.metadata == nil {
		return failedResult(CheckNameMetadataCompliance, "Discovery must pass first")
	}

	var issues []string

	if !metadataListContains(c.metadata, "response_types_supported", "code") {
		issues = append(issues, "Missing 'code' in response_types_supported")
	}
	if !metadataListContains(c.metadata, "grant_types_supported", "authorization_code") {
		issues = append(issues, "Missing 'authorization_code' in grant_types_supported")
	}
	if len(metadataList(c.metadata, "token_endpoint_auth_methods_supported")) == 0 {
		issues = append(issues, "No token_endpoint_auth_methods_supported")
	}
	if scopes := metadataList(c.metadata, "scopes_supported"); len(scopes) == 0 {
		issues = append(issues, "No scopes_supported")
	} else if !listContains(scopes, "openid") {
		issues = append(issues, "Missing 'openid' scope")
	}
	if len(metadataList(c.metadata, "subject_types_supported")) == 0 {
		issues = append(issues, "No subject_types_supported")
	}
	if !metadataListContains(c.metadata, "id_token_signing_alg_values_supported", "RS256") {
		issues = append(issues, "Missing 'RS256' in id_token_signing_alg_values_supported")
	}

	if len(issues) != 0 {
		issuesSeq := make(DetailSeq, 0, len(issues))
		for _, issue := range issues {
			issuesSeq = append(issuesSeq, DetailString(issue))
		}
		return Result{
			Name:    CheckNameMetadataCompliance,
			Passed:  false,
			Message: fmt.Sprintf("Found %d compliance issue(s)", len(issues)),
			Details: Details{{Key: "issues", Value: issuesSeq}},
		}
	}

	return Result{
		Name:    CheckNameMetadataCompliance,
		Passed:  true,
		Message: "Metadata is OpenID Connect compliant",
		Details: Details{
			{Key: "response_types", Value: detailFromJSON(c.metadata["response_types_supported"])},
			{Key: "grant_types", Value: detailFromJSON(c.metadata["grant_types_supported"])},
			{Key: "scopes", Value: detailFromJSON(c.metadata["scopes_supported"])},
			{Key: "subject_types", Value: detailFromJSON(c.metadata["subject_types_supported"])},
		},
	}
}

// metadataList returns the metadata value under key as a list,
// or nil when the value is absent or not a list.
func metadataList(metadata map[string]interface{}, key string) []interface{} {
	list, _ := metadata[key].([]interface{})
	return list
}

func metadataListContains(metadata map[string]interface{}, key, want string) bool {
	return listContains(metadataList(metadata, key), want)
}

func listContains(list []interface{}, want string) bool {
	for _, item := range list {
		if s, ok := item.(string); ok && s == want {
			return true
		}
	}
	return false
}
