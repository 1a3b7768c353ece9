/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package idptest provides a stub OpenID Connect provider for testing the checker:
// an HTTP server publishing a discovery document, a JWKS document and a dynamic
// client registration endpoint with full CRUD support. All handlers expose knobs
// for simulating non-compliant providers.
package idptest
