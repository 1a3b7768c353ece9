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

// TestKeyID is a key ID of the pre-defined key for testing.
const TestKeyID = "fac01c070cd08ba08809762da6e4f74af14e4790"

// PublicJWK is a public key as published in a JWKS document.
type PublicJWK struct {
	Alg string `json:"alg,omitempty"`
	E   string `json:"e"`
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	Use string `json:"use"`
}

// GetTestPublicJWKS returns the pre-defined public keys served by default.
func GetTestPublicJWKS() []PublicJWK {
	return []PublicJWK{
		{
			Alg: "RS256",
			E:   "AQAB",
			Kid: TestKeyID,
			Kty: "RSA",
			N:   "mWeDDhcnVdKWbYGubOB7v1rZ395noYk-MFV0Ik78nLsJc1Ni3-GaWpJOTfCFivDP6DcS68Q04olx6_CleaDWU2KHeZE9PuJcW1_Xot3w1U2WZYpzl5_E5jqHjq1-nnOfe5Mq5SbpoZi3o3-QjktiSgaZ6w-575anM-6VhfxyS0s_DKGJHzyka1hJIoGb8vBstKS6oVLcgjQO3JR_Uy4XMdO9s3z-t3_4sO7qtHuEmqFUnaUx5MuLmZnV0hWyLHoNtEQZrf6X5lcnSj-6QerRihJdQeFDm494D96UwjKt70xgbAMvY-H2RcCJ5IqB2jvumqACt70twX7VCeS8FDMP_w", // nolint:lll
			Use: "sig",
		},
		{
			Alg: "RS256",
			E:   "AQAB",
			Kid: "737c5114f09b5ed05276bd4b520245982f7fb29f",
			Kty: "RSA",
			N:   "51gGypRFvhTziiCLW3emsFx80G3ljpoYdDdieYM-yfvv6cfpkiEnxRRig5JdJ62vrENgbZi1GZpvTs3B7ly7Z4FI6EM-5e8vIkQSYuE3sXU7QsxEFjtMUm31kao4179gmIIrycHl5M1HE2FU2Ssgf7VuKIVmLvDypNHgBb8cV2XKu_PiGHk2turbKZXxegJTiMBYrgKSaEuBUi3WC3j-onHmQriThchQujmXVMFQ-5syNkUX7hM8PKKONkFUhKANnh0Om8_Sc3bcYZAIoFA2cD-PXopJUQa8GLRfWLExVHRvp-4_vtDYbEAeipPYz2cRmEoMKiLRk8ZpLI6M71ugLQ", // nolint:lll
			Use: "sig",
		},
	}
}

// JWKSHandler is an HTTP handler that responds with a JWKS document.
// RawDocument, when non-nil, is served verbatim so tests can publish
// malformed key sets (missing fields, empty lists, wrong shapes).
type JWKSHandler struct {
	servedCount atomic.Uint64

	PublicJWKS  []PublicJWK
	RawDocument map[string]interface{}
}

func (h *JWKSHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "Only GET method is allowed", http.StatusMethodNotAllowed)
		return
	}

	h.servedCount.Add(1)

	rw.Header().Set("Content-Type", "application/json")
	if h.RawDocument != nil {
		if err := json.NewEncoder(rw).Encode(h.RawDocument); err != nil {
			http.Error(rw, fmt.Sprintf("Error encoding response: %v", err), http.StatusInternalServerError)
		}
		return
	}
	publicJWKS := h.PublicJWKS
	if len(publicJWKS) == 0 {
		publicJWKS = GetTestPublicJWKS()
	}
	if err := json.NewEncoder(rw).Encode(PublicJWKSResponse{Keys: publicJWKS}); err != nil {
		http.Error(rw, fmt.Sprintf("Error encoding response: %v", err), http.StatusInternalServerError)
		return
	}
}

// ServedCount returns the number of times JWKS handler has been served.
func (h *JWKSHandler) ServedCount() uint64 {
	return h.servedCount.Load()
}

// PublicJWKSResponse is a response for the JWKS endpoint.
type PublicJWKSResponse struct {
	Keys []PublicJWK `json:"keys"`
}
