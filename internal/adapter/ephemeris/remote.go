package ephemeris

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

const (
	// DefaultHorizonsEndpoint is the public JPL Horizons API
	DefaultHorizonsEndpoint = "https://ssd.jpl.nasa.gov/api/horizons.api"
	// MaxRemoteTimeout caps the per-request timeout
	MaxRemoteTimeout = 30 * time.Second
	remoteAttempts   = 2
)

// RemoteConfig configures the Horizons provider
type RemoteConfig struct {
	Endpoint          string
	Timeout           time.Duration
	RequestsPerSecond float64
	// HTTPClient overrides the default client; its Timeout is left untouched
	HTTPClient *http.Client
}

// RemoteProvider talks to the JPL Horizons service.
// Parsing Horizons output is not supported yet, so a reachable service still
// yields ErrProviderNotImplemented instead of fabricated positions.
type RemoteProvider struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRemoteProvider creates a Horizons provider
func NewRemoteProvider(cfg RemoteConfig, logger *zap.Logger) *RemoteProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultHorizonsEndpoint
	}
	if cfg.Timeout <= 0 || cfg.Timeout > MaxRemoteTimeout {
		cfg.Timeout = MaxRemoteTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &RemoteProvider{
		endpoint: cfg.Endpoint,
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:   logger,
	}
}

// Tag implements domain.EphemerisProvider
func (p *RemoteProvider) Tag() domain.ProviderTag {
	return domain.ProviderRemote
}

// Fetch probes the service and fails closed
func (p *RemoteProvider) Fetch(ctx context.Context, instant time.Time, location domain.Location) (*domain.EphemerisSnapshot, error) {
	p.logger.Info("integrations.ephemeris.horizons.request",
		zap.Time("instant", instant.UTC()),
		zap.Float64("latitude", location.Latitude),
		zap.Float64("longitude", location.Longitude),
	)

	var lastErr error
	for attempt := 1; attempt <= remoteAttempts; attempt++ {
		lastErr = p.probe(ctx)
		if lastErr == nil {
			break
		}
		p.logger.Warn("integrations.ephemeris.horizons.error",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, lastErr)
	}

	p.logger.Warn("integrations.ephemeris.horizons.not_implemented")
	return nil, fmt.Errorf("%w: horizons response parsing", domain.ErrProviderNotImplemented)
}

func (p *RemoteProvider) probe(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("format", "text")
	query.Set("COMMAND", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("horizons returned status %d", resp.StatusCode)
	}
	return nil
}
