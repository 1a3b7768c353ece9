/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package checker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-oidcprecheck/checker"
	"github.com/acronis/go-oidcprecheck/idptest"
)

func TestChecker_Registration(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := startTestProvider(t)

		results := checker.New(srv.URL()).Run(context.Background())
		registration := results[2]
		require.Equal(t, checker.CheckNameRegistration, registration.Name)
		require.True(t, registration.Passed, registration.Message)
		require.Equal(t, "Client registered successfully", registration.Message)

		require.Len(t, registration.Details, 3)
		clientID, ok := registration.Details[0].Value.(checker.DetailString)
		require.True(t, ok)
		require.True(t, strings.HasSuffix(string(clientID), "..."))
		require.LessOrEqual(t, len(clientID), 8+len("..."))
		require.Equal(t, checker.DetailField{Key: "has_secret", Value: checker.DetailBool(true)},
			registration.Details[1])
		require.Equal(t, checker.DetailField{Key: "has_registration_token", Value: checker.DetailBool(true)},
			registration.Details[2])
	})

	t.Run("no registration endpoint in discovery", func(t *testing.T) {
		srv := startTestProvider(t, idptest.WithHTTPOpenIDConfigurationHandler(
			&idptest.OpenIDConfigurationHandler{OmitFields: []string{"registration_endpoint"}}))

		results := checker.New(srv.URL()).Run(context.Background())
		require.False(t, results[2].Passed)
		require.Equal(t, "No registration_endpoint in discovery", results[2].Message)
	})

	t.Run("confidential client missing secret", func(t *testing.T) {
		regHandler := idptest.NewRegistrationHandler()
		regHandler.OmitClientSecret = true
		srv := startTestProvider(t, idptest.WithHTTPRegistrationHandler(regHandler))

		results := checker.New(srv.URL()).Run(context.Background())
		require.False(t, results[2].Passed)
		require.Equal(t, "Missing client_secret for confidential client", results[2].Message)
		require.NotEmpty(t, results[2].Details)
	})

	t.Run("response missing client_id", func(t *testing.T) {
		regSrv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
			rw.Header().Set("Content-Type", "application/json")
			rw.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(rw).Encode(map[string]interface{}{"client_name": "whatever"})
		}))
		defer regSrv.Close()
		srv := startTestProvider(t, idptest.WithHTTPOpenIDConfigurationHandler(
			&idptest.OpenIDConfigurationHandler{
				OverrideFields: map[string]interface{}{"registration_endpoint": regSrv.URL},
			}))

		results := checker.New(srv.URL()).Run(context.Background())
		require.False(t, results[2].Passed)
		require.Equal(t, "Response missing fields: client_id", results[2].Message)
	})

	t.Run("registration endpoint rejects the request", func(t *testing.T) {
		regSrv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
			rw.WriteHeader(http.StatusBadRequest)
		}))
		defer regSrv.Close()
		srv := startTestProvider(t, idptest.WithHTTPOpenIDConfigurationHandler(
			&idptest.OpenIDConfigurationHandler{
				OverrideFields: map[string]interface{}{"registration_endpoint": regSrv.URL},
			}))

		results := checker.New(srv.URL()).Run(context.Background())
		require.False(t, results[2].Passed)
		require.Equal(t, "Failed: unexpected HTTP code 400", results[2].Message)
	})
}
