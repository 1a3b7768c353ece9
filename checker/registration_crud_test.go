/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package checker_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-oidcprecheck/checker"
	"github.com/acronis/go-oidcprecheck/idptest"
)

func TestChecker_RegistrationCRUD(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := startTestProvider(t)

		results := checker.New(srv.URL()).Run(context.Background())
		crud := results[3]
		require.Equal(t, checker.CheckNameRegistrationCRUD, crud.Name)
		require.True(t, crud.Passed, crud.Message)
		require.Equal(t, "All CRUD operations successful", crud.Message)
		require.Equal(t, checker.Details{
			{Key: "create", Value: checker.DetailString("✓")},
			{Key: "read", Value: checker.DetailString("✓")},
			{Key: "update", Value: checker.DetailString("✓")},
			{Key: "delete", Value: checker.DetailString("✓")},
		}, crud.Details)
	})

	t.Run("no registration access token in creation response", func(t *testing.T) {
		regHandler := idptest.NewRegistrationHandler()
		regHandler.OmitRegistrationAccessToken = true
		srv := startTestProvider(t, idptest.WithHTTPRegistrationHandler(regHandler))

		results := checker.New(srv.URL()).Run(context.Background())
		require.False(t, results[3].Passed)
		require.Equal(t, "No registration_access_token in response", results[3].Message)
	})

	t.Run("update returning wrong redirect_uris count aborts before delete", func(t *testing.T) {
		regHandler := idptest.NewRegistrationHandler()
		regHandler.UpdateRedirectURIsOverride = []string{"https://example.com/callback"}

		var deleteCount atomic.Uint64
		countDeletes := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodDelete {
					deleteCount.Add(1)
				}
				next.ServeHTTP(rw, r)
			})
		}
		srv := startTestProvider(t,
			idptest.WithHTTPRegistrationHandler(regHandler), idptest.WithHTTPMiddleware(countDeletes))

		results := checker.New(srv.URL()).Run(context.Background())
		require.False(t, results[3].Passed)
		require.Equal(t, "Client update failed", results[3].Message)
		require.EqualValues(t, 0, deleteCount.Load())
	})

	t.Run("delete returning wrong status code", func(t *testing.T) {
		regHandler := idptest.NewRegistrationHandler()
		regHandler.DeleteStatusCode = http.StatusOK
		srv := startTestProvider(t, idptest.WithHTTPRegistrationHandler(regHandler))

		results := checker.New(srv.URL()).Run(context.Background())
		require.False(t, results[3].Passed)
		require.Equal(t, "Delete returned 200, expected 204", results[3].Message)
	})

	t.Run("crud check is independent of the simple registration check", func(t *testing.T) {
		regHandler := idptest.NewRegistrationHandler()
		srv := startTestProvider(t, idptest.WithHTTPRegistrationHandler(regHandler))

		results := checker.New(srv.URL()).Run(context.Background())
		require.True(t, results[2].Passed, results[2].Message)
		require.True(t, results[3].Passed, results[3].Message)
		// 2 creations, 1 read, 1 update, 1 delete; the CRUD client is created and
		// deleted on its own, the simple registration client is left behind.
		require.EqualValues(t, 5, regHandler.ServedCount())
	})
}
