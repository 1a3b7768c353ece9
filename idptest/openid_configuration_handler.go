/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package idptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
)

// OpenIDConfigurationHandler is an HTTP handler that responds with the provider's
// OpenID configuration. The rendered document can be shaped for negative tests
// via OmitFields and OverrideFields.
type OpenIDConfigurationHandler struct {
	servedCount atomic.Uint64

	Issuer                   string
	AuthorizationEndpointURL string
	TokenEndpointURL         string
	JWKSURL                  string
	RegistrationEndpointURL  string

	// OmitFields lists document fields removed before rendering.
	OmitFields []string

	// OverrideFields replaces or adds document fields after defaults are applied.
	OverrideFields map[string]interface{}
}

// Document builds the discovery document the handler serves.
func (h *OpenIDConfigurationHandler) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"issuer":                                h.Issuer,
		"authorization_endpoint":                h.AuthorizationEndpointURL,
		"token_endpoint":                        h.TokenEndpointURL,
		"jwks_uri":                              h.JWKSURL,
		"registration_endpoint":                 h.RegistrationEndpointURL,
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"scopes_supported":                      []string{"openid", "profile"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_basic", "none"},
	}
	for _, field := range h.OmitFields {
		delete(doc, field)
	}
	for field, value := range h.OverrideFields {
		doc[field] = value
	}
	return doc
}

func (h *OpenIDConfigurationHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "Only GET method is allowed", http.StatusMethodNotAllowed)
		return
	}

	h.servedCount.Add(1)

	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(h.Document()); err != nil {
		http.Error(rw, fmt.Sprintf("Error encoding response: %v", err), http.StatusInternalServerError)
		return
	}
}

// ServedCount returns the number of times the handler has been served.
func (h *OpenIDConfigurationHandler) ServedCount() uint64 {
	return h.servedCount.Load()
}

// ResetServedCount resets the number of times the handler has been served.
func (h *OpenIDConfigurationHandler) ResetServedCount() {
	h.servedCount.Store(0)
}
