package imagegen

//go:generate mockgen -destination=./service_mock_test.go -package=imagegen -source=service.go Service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"image-bridge/internal/domain"
)

// Service defines the business logic of the image gateway.
type Service interface {
	// Generate turns one chat completion request into a single provider call
	// and wraps the result as a chat completion. credential is the caller's
	// bearer key and may be empty.
	Generate(ctx context.Context, req *domain.GenerationRequest, credential string) (*ChatCompletion, error)

	// ListModels returns the static model catalogue.
	ListModels(ctx context.Context) ListCompletion
}

// Credentials holds the configured fallback API key of each provider.
type Credentials map[Provider]string

// service is the concrete implementation of the Service interface.
type service struct {
	client ProviderClient
	keys   Credentials
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		s.logger = l
	}
}

// WithClock replaces time.Now, used when a provider omits its timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService is the constructor for the gateway service.
func NewService(client ProviderClient, keys Credentials, opts ...Option) Service {
	s := &service{
		client: client,
		keys:   keys,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate implements the Service interface.
func (s *service) Generate(ctx context.Context, req *domain.GenerationRequest, credential string) (*ChatCompletion, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, newValidationError("messages", "at least one message is required", ErrEmptyMessages)
	}

	payload, err := ExtractPayload(req.Messages)
	if err != nil {
		return nil, err
	}

	provider := Route(req.Model)
	apiKey := cmp.Or(strings.TrimSpace(credential), s.keys[provider])
	if apiKey == "" {
		return nil, newValidationError("authorization",
			fmt.Sprintf("no bearer token sent and no API key configured for provider '%s'", provider),
			ErrMissingCredential)
	}

	pr := BuildRequest(provider, req, payload)
	s.logger.DebugContext(ctx, "routing image generation",
		"provider", provider,
		"model", pr.ModelID(),
		"embedded_images", len(payload.EmbeddedImages),
		"remote_images", len(payload.RemoteImages))

	raw, err := s.client.Generate(ctx, pr, apiKey)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			s.logger.WarnContext(ctx, "provider rejected request",
				"provider", provider,
				"status", upstream.StatusCode)
			return nil, err
		}
		return nil, fmt.Errorf("%s provider call failed: %w", provider, err)
	}

	result, err := Normalize(provider, raw, pr.ModelID(), s.now())
	if err != nil {
		return nil, err
	}

	return ToChatCompletion(newCompletionID(), result), nil
}

// ListModels implements the Service interface.
func (s *service) ListModels(ctx context.Context) ListCompletion {
	return ToListCompletion(KnownModels, s.now())
}
