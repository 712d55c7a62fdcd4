package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"image-bridge/internal/auth"
	"image-bridge/internal/config"
	"image-bridge/internal/imagegen"
	"image-bridge/internal/ratelimit"
	"image-bridge/internal/secrets"
)

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.SlogLevel(), cfg.Log.Format)
	slog.SetDefault(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys, err := resolveCredentials(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Inject the provider client into the service
	client := imagegen.NewHTTPProviderClient(
		&http.Client{Timeout: cfg.Providers.Timeout},
		imagegen.Endpoints{
			Ark:         cfg.Providers.Ark.BaseURL,
			SiliconFlow: cfg.Providers.SiliconFlow.BaseURL,
		},
	)
	svc := imagegen.NewService(client, keys, imagegen.WithLogger(logger))

	// Inject service into the handler
	handler := imagegen.NewHandler(svc)

	r := newRouter(cfg.Server, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("image bridge starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRouter(cfg config.ServerConfig, handler *imagegen.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ImageBridge OK"))
	})

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			limiter := ratelimit.NewInMemoryRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
			r.Use(ratelimit.Middleware(limiter, handler.RateLimitExceeded))
		}
		handler.RegisterRoutes(r)
	})

	return r
}

// resolveCredentials collects the fallback provider keys. Keys missing from the
// config are looked up in SSM when a parameter prefix is configured.
func resolveCredentials(ctx context.Context, cfg *config.Config, logger *slog.Logger) (imagegen.Credentials, error) {
	keys := imagegen.Credentials{
		imagegen.ProviderArk:         cfg.Providers.Ark.APIKey,
		imagegen.ProviderSiliconFlow: cfg.Providers.SiliconFlow.APIKey,
	}
	if cfg.Secrets.SSMPrefix == "" {
		return keys, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Secrets.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Secrets.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	store, err := secrets.New(ssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}

	return fillCredentials(ctx, keys, store, cfg.Secrets.SSMPrefix, logger), nil
}

// fillCredentials fetches every empty key from getter. A failed lookup is
// logged and leaves the key empty; callers can still send their own bearer.
func fillCredentials(ctx context.Context, keys imagegen.Credentials, getter secrets.Getter, prefix string, logger *slog.Logger) imagegen.Credentials {
	for provider, key := range keys {
		if key != "" {
			continue
		}
		value, err := secrets.FetchAPIKey(ctx, getter, prefix, provider.String())
		if err != nil {
			logger.WarnContext(ctx, "no fallback API key", "provider", provider, "error", err)
			continue
		}
		keys[provider] = value
	}
	return keys
}
