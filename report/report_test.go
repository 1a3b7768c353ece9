/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-oidcprecheck/checker"
	"github.com/acronis/go-oidcprecheck/report"
)

func TestReporterWrite(t *testing.T) {
	t.Run("all passed", func(t *testing.T) {
		results := []checker.Result{
			{
				Name:    checker.CheckNameDiscovery,
				Passed:  true,
				Message: "All required fields present",
				Details: checker.Details{
					{Key: "issuer", Value: checker.DetailString("https://idp.example.com")},
					{Key: "endpoints", Value: checker.DetailMapping{
						{Key: "authorization", Value: checker.DetailString("https://idp.example.com/authorize")},
						{Key: "token", Value: checker.DetailString("https://idp.example.com/token")},
					}},
				},
			},
			{
				Name:    checker.CheckNameJWKS,
				Passed:  true,
				Message: "Valid JWKS with 2 key(s)",
				Details: checker.Details{
					{Key: "key_count", Value: checker.DetailInt(2)},
					{Key: "key_types", Value: checker.DetailSeq{checker.DetailString("RSA"), checker.DetailString("RSA")}},
				},
			},
		}

		var buf bytes.Buffer
		exitCode := report.NewReporter(&buf).Write(results)
		require.Equal(t, report.ExitCodeOK, exitCode)

		out := buf.String()
		require.Contains(t, out, "OpenID Connect Conformance Validation Results")
		require.Contains(t, out, "PASS | Discovery Endpoint\n       All required fields present\n")
		require.Contains(t, out, "PASS | JWKS Endpoint\n       Valid JWKS with 2 key(s)\n")
		require.Contains(t, out, "       issuer: https://idp.example.com\n")
		require.Contains(t, out, "       endpoints:\n"+
			"         - authorization: https://idp.example.com/authorize\n"+
			"         - token: https://idp.example.com/token\n")
		require.Contains(t, out, "       key_count: 2\n")
		require.Contains(t, out, "       key_types: RSA, RSA\n")
		require.Contains(t, out, "Results: 2/2 tests passed")
		require.Contains(t, out, "All tests passed! Ready for OpenID Connect Conformance Suite.")
		require.Contains(t, out, "https://www.certification.openid.net/")
		require.NotContains(t, out, "Some tests failed")
	})

	t.Run("failure suppresses details and guidance", func(t *testing.T) {
		results := []checker.Result{
			{Name: checker.CheckNameDiscovery, Passed: true, Message: "All required fields present"},
			{
				Name:    checker.CheckNameJWKS,
				Passed:  false,
				Message: "JWKS has no keys",
				Details: checker.Details{{Key: "keys", Value: checker.DetailSeq{}}},
			},
		}

		var buf bytes.Buffer
		exitCode := report.NewReporter(&buf).Write(results)
		require.Equal(t, report.ExitCodeFailure, exitCode)

		out := buf.String()
		require.Contains(t, out, "FAIL | JWKS Endpoint\n       JWKS has no keys\n")
		require.NotContains(t, out, "keys:")
		require.Contains(t, out, "Results: 1/2 tests passed")
		require.Contains(t, out, "Some tests failed. Please fix issues before conformance testing.")
		require.NotContains(t, out, "Next steps")
	})

	t.Run("discovery gate alone", func(t *testing.T) {
		results := []checker.Result{
			{Name: checker.CheckNameDiscovery, Passed: false, Message: "Failed: unexpected HTTP code 404"},
		}

		var buf bytes.Buffer
		exitCode := report.NewReporter(&buf).Write(results)
		require.Equal(t, report.ExitCodeFailure, exitCode)

		require.Contains(t, buf.String(), "Results: 0/1 tests passed")
	})

	t.Run("scalar and null rendering", func(t *testing.T) {
		results := []checker.Result{
			{
				Name:    checker.CheckNameJWKS,
				Passed:  true,
				Message: "Valid JWKS with 1 key(s)",
				Details: checker.Details{
					{Key: "has_secret", Value: checker.DetailBool(true)},
					{Key: "algorithms", Value: checker.DetailSeq{checker.DetailNull{}}},
					{Key: "weight", Value: checker.DetailNumber(0.5)},
				},
			},
		}

		var buf bytes.Buffer
		report.NewReporter(&buf).Write(results)

		out := buf.String()
		require.Contains(t, out, "       has_secret: true\n")
		require.Contains(t, out, "       algorithms: null\n")
		require.Contains(t, out, "       weight: 0.5\n")
	})

	t.Run("header rule framing", func(t *testing.T) {
		var buf bytes.Buffer
		report.NewReporter(&buf).Write(nil)

		rule := strings.Repeat("=", 70)
		require.Equal(t, 4, strings.Count(buf.String(), rule))
	})
}
