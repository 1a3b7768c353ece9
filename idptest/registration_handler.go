/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package idptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ClientRegistrationRequest is the subset of RFC 7591 client metadata the stub accepts.
type ClientRegistrationRequest struct {
	RedirectURIs            []string `json:"redirect_uris,omitempty"`
	ClientName              string   `json:"client_name,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	ResponseTypes           []string `json:"response_types,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
}

// ClientRegistrationResponse is an RFC 7591 client registration response.
type ClientRegistrationResponse struct {
	ClientID                string   `json:"client_id"`
	ClientSecret            string   `json:"client_secret,omitempty"`
	ClientSecretExpiresAt   int64    `json:"client_secret_expires_at"`
	RedirectURIs            []string `json:"redirect_uris,omitempty"`
	ClientName              string   `json:"client_name,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	ResponseTypes           []string `json:"response_types,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
	RegistrationAccessToken string   `json:"registration_access_token,omitempty"`
	RegistrationClientURI   string   `json:"registration_client_uri,omitempty"`
}

type clientRecord struct {
	id            string
	secretHash    []byte
	name          string
	redirectURIs  []string
	grantTypes    []string
	responseTypes []string
	authMethod    string
}

// RegistrationHandler is an HTTP handler implementing dynamic client registration
// with full CRUD support (RFC 7591/7592). Created clients are kept in memory,
// client secrets are stored bcrypt-hashed, and registration access tokens are
// signed JWTs bound to a single client. The Omit*/override fields simulate
// non-compliant provider behavior for tests.
type RegistrationHandler struct {
	servedCount atomic.Uint64

	mu         sync.RWMutex
	clients    map[string]*clientRecord
	signingKey []byte

	// BaseURL is the absolute URL the handler is mounted at,
	// used to build registration_client_uri values.
	BaseURL string

	// OmitRegistrationAccessToken drops registration_access_token from creation responses.
	OmitRegistrationAccessToken bool

	// OmitClientSecret drops client_secret from creation responses even for confidential clients.
	OmitClientSecret bool

	// DeleteStatusCode overrides the status code of successful deletions (default 204).
	DeleteStatusCode int

	// UpdateRedirectURIsOverride, when non-nil, replaces redirect_uris in update responses.
	UpdateRedirectURIsOverride []string
}

// NewRegistrationHandler returns a RegistrationHandler with an empty client store
// and a fresh token signing key.
func NewRegistrationHandler() *RegistrationHandler {
	return &RegistrationHandler{
		clients:    make(map[string]*clientRecord),
		signingKey: []byte(uuid.NewString()),
	}
}

func (h *RegistrationHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	h.servedCount.Add(1)

	clientID := strings.Trim(strings.TrimPrefix(r.URL.Path, RegistrationEndpointPath), "/")
	if clientID == "" {
		if r.Method != http.MethodPost {
			http.Error(rw, "Only POST method is allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleCreate(rw, r)
		return
	}

	if !h.authorize(r, clientID) {
		http.Error(rw, "Invalid registration access token", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(rw, clientID)
	case http.MethodPut:
		h.handleUpdate(rw, r, clientID)
	case http.MethodDelete:
		h.handleDelete(rw, clientID)
	default:
		http.Error(rw, "Method is not allowed", http.StatusMethodNotAllowed)
	}
}

// ServedCount returns the number of requests the handler has served.
func (h *RegistrationHandler) ServedCount() uint64 {
	return h.servedCount.Load()
}

func (h *RegistrationHandler) handleCreate(rw http.ResponseWriter, r *http.Request) {
	var req ClientRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(rw, fmt.Sprintf("Error decoding request: %v", err), http.StatusBadRequest)
		return
	}

	authMethod := req.TokenEndpointAuthMethod
	if authMethod == "" {
		authMethod = "client_secret_basic"
	}

	record := &clientRecord{
		id:            uuid.NewString(),
		name:          req.ClientName,
		redirectURIs:  req.RedirectURIs,
		grantTypes:    req.GrantTypes,
		responseTypes: req.ResponseTypes,
		authMethod:    authMethod,
	}

	var secret string
	if authMethod != "none" {
		secret = uuid.NewString()
		secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
		if err != nil {
			http.Error(rw, fmt.Sprintf("Error hashing client secret: %v", err), http.StatusInternalServerError)
			return
		}
		record.secretHash = secretHash
	}

	regToken, err := h.issueRegistrationToken(record.id)
	if err != nil {
		http.Error(rw, fmt.Sprintf("Error issuing registration access token: %v", err), http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.clients[record.id] = record
	h.mu.Unlock()

	resp := h.makeClientResponse(record)
	if !h.OmitClientSecret {
		resp.ClientSecret = secret
	}
	if !h.OmitRegistrationAccessToken {
		resp.RegistrationAccessToken = regToken
	}
	writeJSONResponse(rw, http.StatusCreated, resp)
}

func (h *RegistrationHandler) handleRead(rw http.ResponseWriter, clientID string) {
	h.mu.RLock()
	record, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		http.Error(rw, "Client not found", http.StatusNotFound)
		return
	}
	writeJSONResponse(rw, http.StatusOK, h.makeClientResponse(record))
}

func (h *RegistrationHandler) handleUpdate(rw http.ResponseWriter, r *http.Request, clientID string) {
	var req ClientRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(rw, fmt.Sprintf("Error decoding request: %v", err), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	record, ok := h.clients[clientID]
	if ok {
		record.redirectURIs = req.RedirectURIs
		record.name = req.ClientName
	}
	h.mu.Unlock()
	if !ok {
		http.Error(rw, "Client not found", http.StatusNotFound)
		return
	}

	resp := h.makeClientResponse(record)
	if h.UpdateRedirectURIsOverride != nil {
		resp.RedirectURIs = h.UpdateRedirectURIsOverride
	}
	writeJSONResponse(rw, http.StatusOK, resp)
}

func (h *RegistrationHandler) handleDelete(rw http.ResponseWriter, clientID string) {
	h.mu.Lock()
	_, ok := h.clients[clientID]
	delete(h.clients, clientID)
	h.mu.Unlock()
	if !ok {
		http.Error(rw, "Client not found", http.StatusNotFound)
		return
	}

	statusCode := h.DeleteStatusCode
	if statusCode == 0 {
		statusCode = http.StatusNoContent
	}
	rw.WriteHeader(statusCode)
}

func (h *RegistrationHandler) issueRegistrationToken(clientID string) (string, error) {
	claims := jwtgo.RegisteredClaims{
		Subject:  clientID,
		Issuer:   h.BaseURL,
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
	}
	return jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, claims).SignedString(h.signingKey)
}

// authorize checks the bearer registration access token: it must be a valid JWT
// signed by the handler and bound (via subject) to the addressed client.
func (h *RegistrationHandler) authorize(r *http.Request, clientID string) bool {
	authHeader := r.Header.Get("Authorization")
	bearerToken := strings.TrimPrefix(authHeader, "Bearer ")
	if bearerToken == authHeader || bearerToken == "" {
		return false
	}
	var claims jwtgo.RegisteredClaims
	_, err := jwtgo.ParseWithClaims(bearerToken, &claims,
		func(*jwtgo.Token) (interface{}, error) { return h.signingKey, nil },
		jwtgo.WithValidMethods([]string{jwtgo.SigningMethodHS256.Alg()}))
	return err == nil && claims.Subject == clientID
}

func (h *RegistrationHandler) makeClientResponse(record *clientRecord) ClientRegistrationResponse {
	return ClientRegistrationResponse{
		ClientID:                record.id,
		RedirectURIs:            record.redirectURIs,
		ClientName:              record.name,
		GrantTypes:              record.grantTypes,
		ResponseTypes:           record.responseTypes,
		TokenEndpointAuthMethod: record.authMethod,
		RegistrationClientURI:   h.BaseURL + "/" + record.id,
	}
}

func writeJSONResponse(rw http.ResponseWriter, statusCode int, body interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		http.Error(rw, fmt.Sprintf("Error encoding response: %v", err), http.StatusInternalServerError)
	}
}
