package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter is the interface that wraps GetParameter.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client wraps an AWS SSM API for parameter retrieval.
type Client struct {
	api ssmAPI
}

// New creates a Client with the given SSM API implementation.
func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("secrets: api must not be nil")
	}
	return &Client{api: api}, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("secrets: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secrets: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("secrets: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("secrets: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// tokenPayload is the optional JSON wrapping of a stored key.
type tokenPayload struct {
	Token string `json:"token"`
}

// APIKeyParameter names the parameter holding a provider's key under prefix.
func APIKeyParameter(prefix, provider string) string {
	return strings.TrimRight(strings.TrimSpace(prefix), "/") + "/" + provider + "-api-key"
}

// FetchAPIKey reads a provider key from the parameter store. The stored value
// is either the bare key or {"token":"<key>"}.
func FetchAPIKey(ctx context.Context, getter Getter, prefix, provider string) (string, error) {
	if getter == nil {
		return "", errors.New("secrets: getter is nil")
	}
	if strings.TrimSpace(prefix) == "" {
		return "", errors.New("secrets: parameter prefix is empty")
	}

	raw, err := getter.GetParameter(ctx, APIKeyParameter(prefix, provider))
	if err != nil {
		return "", fmt.Errorf("secrets: fetch %s key: %w", provider, err)
	}
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("secrets: unmarshal %s key as JSON: %w", provider, err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", fmt.Errorf("secrets: %s API key is empty", provider)
	}
	return raw, nil
}
