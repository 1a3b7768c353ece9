/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package oidcprecheck_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-oidcprecheck"
	"github.com/acronis/go-oidcprecheck/checker"
	"github.com/acronis/go-oidcprecheck/idptest"
)

func TestMakeCheckFilter(t *testing.T) {
	t.Run("no patterns yields nil filter", func(t *testing.T) {
		require.Nil(t, oidcprecheck.MakeCheckFilter(nil))
		require.Nil(t, oidcprecheck.MakeCheckFilter([]string{}))
	})

	t.Run("glob patterns", func(t *testing.T) {
		filter := oidcprecheck.MakeCheckFilter([]string{"Registration*", "JWKS Endpoint"})
		require.True(t, filter(checker.CheckNameRegistration))
		require.True(t, filter(checker.CheckNameRegistrationCRUD))
		require.True(t, filter(checker.CheckNameJWKS))
		require.False(t, filter(checker.CheckNameMetadataCompliance))
	})
}

func TestNewChecker(t *testing.T) {
	srv := idptest.NewHTTPServer()
	require.NoError(t, srv.StartAndWaitForReady(time.Second * 3))
	defer func() { _ = srv.Shutdown(context.Background()) }()

	t.Run("nil config runs every check", func(t *testing.T) {
		c := oidcprecheck.NewChecker(srv.URL(), nil, nil)
		results := c.Run(context.Background())
		require.Len(t, results, 5)
		for _, result := range results {
			require.True(t, result.Passed, "%s: %s", result.Name, result.Message)
		}
	})

	t.Run("configured check filter", func(t *testing.T) {
		cfg := oidcprecheck.NewDefaultConfig()
		cfg.Checks.Include = []string{"Metadata*"}
		c := oidcprecheck.NewChecker(srv.URL(), cfg, nil)
		results := c.Run(context.Background())
		require.Len(t, results, 2)
		require.Equal(t, checker.CheckNameDiscovery, results[0].Name)
		require.Equal(t, checker.CheckNameMetadataCompliance, results[1].Name)
	})
}
