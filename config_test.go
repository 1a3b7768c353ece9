/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package oidcprecheck

import (
	"bytes"
	"testing"
	"time"

	"github.com/acronis/go-appkit/config"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-oidcprecheck/internal/idputil"
)

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewDefaultConfig()
		require.Equal(t, idputil.DefaultHTTPRequestTimeout, time.Duration(cfg.HTTPClient.RequestTimeout))
		require.Empty(t, cfg.Checks.Include)
	})

	t.Run("load from yaml", func(t *testing.T) {
		cfgData := `
precheck:
  httpClient:
    requestTimeout: 30s
  checks:
    include:
      - "Discovery*"
      - "Registration*"
`
		cfg := NewConfig()
		err := config.NewDefaultLoader("").LoadFromReader(bytes.NewReader([]byte(cfgData)), config.DataTypeYAML, cfg)
		require.NoError(t, err)
		require.Equal(t, time.Second*30, time.Duration(cfg.HTTPClient.RequestTimeout))
		require.Equal(t, []string{"Discovery*", "Registration*"}, cfg.Checks.Include)
	})

	t.Run("defaults applied when section is empty", func(t *testing.T) {
		cfgData := `
precheck: {}
`
		cfg := NewConfig()
		err := config.NewDefaultLoader("").LoadFromReader(bytes.NewReader([]byte(cfgData)), config.DataTypeYAML, cfg)
		require.NoError(t, err)
		require.Equal(t, idputil.DefaultHTTPRequestTimeout, time.Duration(cfg.HTTPClient.RequestTimeout))
		require.Empty(t, cfg.Checks.Include)
	})

	t.Run("custom key prefix", func(t *testing.T) {
		cfgData := `
validation:
  httpClient:
    requestTimeout: 5s
`
		cfg := NewConfig(WithKeyPrefix("validation"))
		require.Equal(t, "validation", cfg.KeyPrefix())
		err := config.NewDefaultLoader("").LoadFromReader(bytes.NewReader([]byte(cfgData)), config.DataTypeYAML, cfg)
		require.NoError(t, err)
		require.Equal(t, time.Second*5, time.Duration(cfg.HTTPClient.RequestTimeout))
	})

	t.Run("empty key prefix falls back to default", func(t *testing.T) {
		cfg := NewConfig(WithKeyPrefix(""))
		require.Equal(t, cfgDefaultKeyPrefix, cfg.KeyPrefix())
	})
}
