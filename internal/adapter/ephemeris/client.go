package ephemeris

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

const (
	DefaultCacheTTL    = 7 * 24 * time.Hour
	DefaultFallbackTTL = 24 * time.Hour
)

// Provider names accepted by NewProvider
const (
	ProviderNamePrecise = "precise"
	ProviderNameRemote  = "remote"
	ProviderNameStub    = "stub"
)

// NewProvider builds the provider selected by name
func NewProvider(name string, remote RemoteConfig, logger *zap.Logger) (domain.EphemerisProvider, error) {
	switch name {
	case ProviderNamePrecise:
		return NewPreciseProvider(logger), nil
	case ProviderNameRemote:
		return NewRemoteProvider(remote, logger), nil
	case ProviderNameStub:
		return NewStubProvider(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown ephemeris provider %q", domain.ErrValidation, name)
	}
}

// CacheKey identifies one provider answer for a location and instant
func CacheKey(provider domain.ProviderTag, locationID uuid.UUID, instant time.Time) string {
	return fmt.Sprintf("ephemeris:%s:%s:%s", provider, locationID, instant.UTC().Truncate(time.Second).Format(time.RFC3339))
}

// ClientConfig holds cache lifetimes
type ClientConfig struct {
	CacheTTL    time.Duration
	FallbackTTL time.Duration
}

// Client wraps a primary provider with a cache and the stub fallback
type Client struct {
	primary     domain.EphemerisProvider
	fallback    domain.EphemerisProvider
	cache       domain.EphemerisCache
	cacheTTL    time.Duration
	fallbackTTL time.Duration
	logger      *zap.Logger
}

// NewClient creates a caching client. A nil cache disables caching.
func NewClient(primary domain.EphemerisProvider, cache domain.EphemerisCache, cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.FallbackTTL <= 0 {
		cfg.FallbackTTL = DefaultFallbackTTL
	}
	return &Client{
		primary:     primary,
		fallback:    NewStubProvider(logger),
		cache:       cache,
		cacheTTL:    cfg.CacheTTL,
		fallbackTTL: cfg.FallbackTTL,
		logger:      logger,
	}
}

// Tag reports the primary provider
func (c *Client) Tag() domain.ProviderTag {
	return c.primary.Tag()
}

// Fetch returns the cached snapshot or asks the primary provider.
// Primary failures fall back to stub data, except ErrProviderNotImplemented
// which is returned to the caller.
func (c *Client) Fetch(ctx context.Context, instant time.Time, location domain.Location) (*domain.EphemerisSnapshot, error) {
	key := CacheKey(c.primary.Tag(), location.ID, instant)

	if snapshot, ok := c.lookup(ctx, key); ok {
		c.logger.Debug("integrations.ephemeris.cache.hit", zap.String("key", key))
		return snapshot, nil
	}

	snapshot, err := c.primary.Fetch(ctx, instant, location)
	if err == nil {
		c.store(ctx, key, snapshot, c.cacheTTL)
		return snapshot, nil
	}

	if !domain.IsFallbackEligible(err) {
		c.logger.Error("integrations.ephemeris.not_implemented",
			zap.String("provider", string(c.primary.Tag())),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Error("integrations.ephemeris.error",
		zap.String("provider", string(c.primary.Tag())),
		zap.String("location_id", location.ID.String()),
		zap.Error(err),
	)

	snapshot, err = c.fallback.Fetch(ctx, instant, location)
	if err != nil {
		return nil, fmt.Errorf("fallback ephemeris: %w", err)
	}
	c.store(ctx, key, snapshot, c.fallbackTTL)
	return snapshot, nil
}

func (c *Client) lookup(ctx context.Context, key string) (*domain.EphemerisSnapshot, bool) {
	if c.cache == nil {
		return nil, false
	}

	payload, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("integrations.ephemeris.cache.read_failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var snapshot domain.EphemerisSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		c.logger.Warn("integrations.ephemeris.cache.corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &snapshot, true
}

func (c *Client) store(ctx context.Context, key string, snapshot *domain.EphemerisSnapshot, ttl time.Duration) {
	if c.cache == nil {
		return
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("integrations.ephemeris.cache.encode_failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, payload, ttl); err != nil {
		c.logger.Warn("integrations.ephemeris.cache.write_failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.logger.Debug("integrations.ephemeris.cache.store", zap.String("key", key), zap.Duration("ttl", ttl))
}
