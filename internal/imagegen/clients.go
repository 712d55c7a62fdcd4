package imagegen

//go:generate mockgen -destination=./clients_mock_test.go -package=imagegen -source=clients.go

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultArkBaseURL         = "https://ark.cn-beijing.volces.com/api/v3"
	DefaultSiliconFlowBaseURL = "https://api.siliconflow.cn/v1"

	generationsPath = "/images/generations"

	// Inline base64 results for four large images run to tens of megabytes.
	maxResponseBytes = 64 << 20
	maxErrorBytes    = 1 << 20
)

// ProviderClient is the outbound side of the gateway: one POST to one provider.
type ProviderClient interface {
	// Generate sends req with the given API key and returns the raw body of a
	// 2xx response. Any other status comes back as an *UpstreamError.
	Generate(ctx context.Context, req ProviderRequest, apiKey string) ([]byte, error)
}

// Endpoints holds the base URL of each provider.
type Endpoints struct {
	Ark         string
	SiliconFlow string
}

func (e Endpoints) baseURL(p Provider) string {
	var base string
	switch p {
	case ProviderSiliconFlow:
		base = e.SiliconFlow
		if base == "" {
			base = DefaultSiliconFlowBaseURL
		}
	default:
		base = e.Ark
		if base == "" {
			base = DefaultArkBaseURL
		}
	}
	return strings.TrimRight(base, "/")
}

// httpProviderClient is the real ProviderClient.
type httpProviderClient struct {
	httpClient *http.Client
	endpoints  Endpoints
}

// NewHTTPProviderClient is the constructor for the provider client. A nil
// httpClient gets a default one with a 120 second timeout.
func NewHTTPProviderClient(httpClient *http.Client, endpoints Endpoints) ProviderClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &httpProviderClient{
		httpClient: httpClient,
		endpoints:  endpoints,
	}
}

// Generate makes the single provider call. There is no retry.
func (c *httpProviderClient) Generate(ctx context.Context, pr ProviderRequest, apiKey string) ([]byte, error) {
	provider := pr.Provider()

	reqBody, err := json.Marshal(pr)
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s request: %w", provider, err)
	}

	url := c.endpoints.baseURL(provider) + generationsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("could not create %s http request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &UpstreamError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("could not read %s response: %w", provider, err)
	}
	return body, nil
}
