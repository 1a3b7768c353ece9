/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package idptest

import (
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/acronis/go-appkit/testutil"
)

const (
	OpenIDConfigurationPath   = "/.well-known/openid-configuration"
	JWKSEndpointPath          = "/idp/keys"
	AuthorizationEndpointPath = "/idp/authorize"
	TokenEndpointPath         = "/idp/token"
	RegistrationEndpointPath  = "/idp/register"
)

const localhostWithDynamicPortAddr = "127.0.0.1:0"

// HTTPServerOption is an option for HTTPServer.
type HTTPServerOption func(s *HTTPServer)

// WithHTTPAddress is an option to set HTTP server address.
func WithHTTPAddress(addr string) HTTPServerOption {
	return func(s *HTTPServer) {
		s.addr.Store(addr)
	}
}

// WithHTTPKeysHandler is an option to set a custom handler for the JWKS endpoint.
// Otherwise, JWKSHandler will be used.
func WithHTTPKeysHandler(handler http.Handler) HTTPServerOption {
	return func(s *HTTPServer) {
		s.KeysHandler = handler
	}
}

// WithHTTPPublicJWKS is an option to set public JWKS served by the JWKS endpoint.
func WithHTTPPublicJWKS(keys []PublicJWK) HTTPServerOption {
	return func(s *HTTPServer) {
		s.KeysHandler = &JWKSHandler{PublicJWKS: keys}
	}
}

// WithHTTPRegistrationHandler is an option to set a custom handler for the client registration endpoint.
// Otherwise, a fresh RegistrationHandler will be used.
func WithHTTPRegistrationHandler(handler *RegistrationHandler) HTTPServerOption {
	return func(s *HTTPServer) {
		s.RegistrationHandler = handler
	}
}

// WithHTTPOpenIDConfigurationHandler is an option to set a custom handler
// for the OpenID configuration endpoint. Endpoint URLs pointing at the server
// itself are filled in after the server starts listening.
func WithHTTPOpenIDConfigurationHandler(handler *OpenIDConfigurationHandler) HTTPServerOption {
	return func(s *HTTPServer) {
		s.OpenIDConfigurationHandler = handler
	}
}

// WithHTTPMiddleware is an option to wrap the whole server router with a middleware.
func WithHTTPMiddleware(mw func(http.Handler) http.Handler) HTTPServerOption {
	return func(s *HTTPServer) {
		s.middleware = mw
	}
}

// HTTPServer is a stub OpenID provider for testing purposes.
// Its discovery document advertises the server's own endpoints,
// so the issuer always matches the URL the server listens on.
type HTTPServer struct {
	*http.Server
	addr                       atomic.Value
	middleware                 func(http.Handler) http.Handler
	KeysHandler                http.Handler
	RegistrationHandler        *RegistrationHandler
	OpenIDConfigurationHandler *OpenIDConfigurationHandler
	Router                     *http.ServeMux
	afterListenCallbacks       []func()
}

// NewHTTPServer creates a new stub provider server with provided options.
func NewHTTPServer(options ...HTTPServerOption) *HTTPServer {
	s := &HTTPServer{}
	for _, opt := range options {
		opt(s)
	}

	if s.KeysHandler == nil {
		s.KeysHandler = &JWKSHandler{}
	}
	if s.RegistrationHandler == nil {
		s.RegistrationHandler = NewRegistrationHandler()
	}
	if s.OpenIDConfigurationHandler == nil {
		s.OpenIDConfigurationHandler = &OpenIDConfigurationHandler{}
	}
	s.afterListenCallbacks = append(s.afterListenCallbacks, func() {
		s.OpenIDConfigurationHandler.Issuer = s.URL()
		s.OpenIDConfigurationHandler.AuthorizationEndpointURL = s.URL() + AuthorizationEndpointPath
		s.OpenIDConfigurationHandler.TokenEndpointURL = s.URL() + TokenEndpointPath
		s.OpenIDConfigurationHandler.JWKSURL = s.URL() + JWKSEndpointPath
		s.OpenIDConfigurationHandler.RegistrationEndpointURL = s.URL() + RegistrationEndpointPath
		s.RegistrationHandler.BaseURL = s.URL() + RegistrationEndpointPath
	})

	s.Router = http.NewServeMux()
	s.Router.Handle(OpenIDConfigurationPath, s.OpenIDConfigurationHandler)
	s.Router.Handle(JWKSEndpointPath, s.KeysHandler)
	s.Router.Handle(RegistrationEndpointPath, s.RegistrationHandler)
	s.Router.Handle(RegistrationEndpointPath+"/", s.RegistrationHandler)

	// nolint:gosec // This server is used for testing purposes only.
	s.Server = &http.Server{Handler: s.Router}
	if s.middleware != nil {
		s.Server.Handler = s.middleware(s.Router)
	}

	return s
}

// URL method returns the URL of the server.
func (s *HTTPServer) URL() string {
	if srvURL := s.addr.Load(); srvURL != nil {
		return "http://" + srvURL.(string)
	}
	return ""
}

// Start starts the HTTPServer.
func (s *HTTPServer) Start() error {
	addr, ok := s.addr.Load().(string)
	if !ok {
		addr = localhostWithDynamicPortAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen tcp: %w", err)
	}
	s.addr.Store(ln.Addr().String())

	for _, cb := range s.afterListenCallbacks {
		cb()
	}

	go func() { _ = s.Server.Serve(ln) }()

	return nil
}

// StartAndWaitForReady starts the server and waits for the server to start listening.
func (s *HTTPServer) StartAndWaitForReady(timeout time.Duration) error {
	if err := s.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return testutil.WaitListeningServer(s.addr.Load().(string), timeout)
}
