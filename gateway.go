package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type httpMethod string

const (
	methodGet  httpMethod = http.MethodGet
	methodPost httpMethod = http.MethodPost
)

// gatewayError is returned when the upstream gateway answers with an error
// status.
type gatewayError struct {
	Status int
	Class  string
	Method string
	Body   string
}

func (e *gatewayError) Error() string {
	return fmt.Sprintf("gateway request %s/%s failed (%d): %s", e.Class, e.Method, e.Status, e.Body)
}

// requester is the surface the extractors depend on; tests substitute a fake.
type requester interface {
	makeRequest(ctx context.Context, method httpMethod, request GatewayRequest) (any, error)
}

// GatewayClient sends authenticated JSON calls to the single upstream EVMIAS
// gateway endpoint. One instance, with one shared connection pool, serves all
// concurrent requests for the lifetime of the process.
type GatewayClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func newGatewayClient(config *Config) *GatewayClient {
	return &GatewayClient{
		endpoint: strings.TrimRight(config.GatewayURL, "/") + config.GatewayEndpoint,
		apiKey:   config.GatewayAPIKey,
		client: &http.Client{
			Timeout: time.Duration(config.RequestTimeout) * time.Second,
		},
	}
}

func (g *GatewayClient) makeRequest(ctx context.Context, method httpMethod, request GatewayRequest) (any, error) {
	// Only methods from the closed set are dispatched
	switch method {
	case methodGet, methodPost:
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	start := time.Now()

	// Build request body
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request %s/%s: %s", request.Params.C, request.Params.M, err)
	}

	// Create a new request
	req, err := http.NewRequestWithContext(ctx, string(method), g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-API-KEY", g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	// Initiate request
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request %s/%s failed: %s", request.Params.C, request.Params.M, err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	// Verify status code
	if resp.StatusCode >= 400 {
		return nil, &gatewayError{
			Status: resp.StatusCode,
			Class:  request.Params.C,
			Method: request.Params.M,
			Body:   string(body),
		}
	}

	zapLogger.Debug("gateway request completed",
		zap.String("class", request.Params.C),
		zap.String("method", request.Params.M),
		zap.Duration("elapsed", time.Since(start)))

	// An empty body is treated as an empty object
	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response %s/%s: %s", request.Params.C, request.Params.M, err)
	}

	return parsed, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	// Initialize re-used variables
	var respBody []byte
	var err error

	// Read the body and set up a defer to close the body to avoid
	// leaking resources.
	defer resp.Body.Close()

	// Check for gzipped "Content-Encoding" header
	if resp.Header.Get("Content-Encoding") == "gzip" {
		// Decompress response body
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error creating gzip reader: %s", err)
		}
		defer gzipReader.Close()

		// Read decompressed content
		respBody, err = io.ReadAll(gzipReader)
		if err != nil {
			return nil, fmt.Errorf("error reading decompressed data: %s", err)
		}
	} else {
		// Assume decompressed data
		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %s", err)
		}
	}
	return respBody, nil
}
