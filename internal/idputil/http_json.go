/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package idputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/acronis/go-appkit/log"

	"github.com/acronis/go-oidcprecheck/internal/metrics"
)

// JSONRequest describes a single JSON-over-HTTP exchange with a provider endpoint.
type JSONRequest struct {
	Method string
	URL    string

	// Body is marshaled as a JSON request body when non-nil.
	Body interface{}

	// BearerToken is put into the Authorization header when non-empty.
	BearerToken string
}

// JSONResponse is the outcome of a successfully completed exchange.
// Document is nil when the response body is empty (e.g. 204 No Content).
type JSONResponse struct {
	StatusCode int
	Document   map[string]interface{}
}

// Success reports whether the response status code is in the 2xx range.
func (r JSONResponse) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// DoJSONRequest performs one HTTP exchange and decodes the response body as a JSON object.
// Transport and decoding problems are returned as errors, the status code is not validated here
// since some callers need to inspect non-2xx codes (e.g. DELETE must return exactly 204).
func DoJSONRequest(
	ctx context.Context,
	httpClient *http.Client,
	reqData JSONRequest,
	logger log.FieldLogger,
	promMetrics *metrics.PrometheusMetrics,
) (JSONResponse, error) {
	var reqBody io.Reader = http.NoBody
	if reqData.Body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(reqData.Body); err != nil {
			return JSONResponse{}, fmt.Errorf("encode request body json: %w", err)
		}
		reqBody = buf
	}
	req, err := http.NewRequest(reqData.Method, reqData.URL, reqBody)
	if err != nil {
		return JSONResponse{}, fmt.Errorf("new request: %w", err)
	}
	if reqData.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqData.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+reqData.BearerToken)
	}

	startTime := time.Now()
	resp, err := httpClient.Do(req.WithContext(ctx))
	elapsed := time.Since(startTime)
	if err != nil {
		promMetrics.ObserveHTTPClientRequest(reqData.Method, reqData.URL, 0, elapsed, metrics.HTTPRequestErrorDo)
		return JSONResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeBodyErr := resp.Body.Close(); closeBodyErr != nil {
			logger.Error(fmt.Sprintf("closing response body error for %s %s", reqData.Method, reqData.URL),
				log.Error(closeBodyErr))
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		promMetrics.ObserveHTTPClientRequest(
			reqData.Method, reqData.URL, resp.StatusCode, elapsed, metrics.HTTPRequestErrorDecodeBody)
		return JSONResponse{}, fmt.Errorf("read response body: %w", err)
	}
	var doc map[string]interface{}
	if len(bytes.TrimSpace(bodyBytes)) != 0 {
		if err = json.Unmarshal(bodyBytes, &doc); err != nil {
			promMetrics.ObserveHTTPClientRequest(
				reqData.Method, reqData.URL, resp.StatusCode, elapsed, metrics.HTTPRequestErrorDecodeBody)
			return JSONResponse{}, fmt.Errorf("decode response body json (Content-Type: %s): %w",
				resp.Header.Get("Content-Type"), err)
		}
	}

	promMetrics.ObserveHTTPClientRequest(reqData.Method, reqData.URL, resp.StatusCode, elapsed, "")
	return JSONResponse{StatusCode: resp.StatusCode, Document: doc}, nil
}

// GetJSONDocument is DoJSONRequest restricted to the common case:
// a request that must come back with a 2xx status and a JSON object body.
func GetJSONDocument(
	ctx context.Context,
	httpClient *http.Client,
	reqData JSONRequest,
	logger log.FieldLogger,
	promMetrics *metrics.PrometheusMetrics,
) (map[string]interface{}, error) {
	resp, err := DoJSONRequest(ctx, httpClient, reqData, logger, promMetrics)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, &UnexpectedResponseError{StatusCode: resp.StatusCode}
	}
	return resp.Document, nil
}
