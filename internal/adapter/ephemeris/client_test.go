package ephemeris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/bioastro-backend/internal/adapter/cache"
	"github.com/simaogato/bioastro-backend/internal/domain"
)

// MockProvider is a mock implementation of EphemerisProvider for testing
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Tag() domain.ProviderTag {
	return domain.ProviderPrecise
}

func (m *MockProvider) Fetch(ctx context.Context, instant time.Time, location domain.Location) (*domain.EphemerisSnapshot, error) {
	args := m.Called(ctx, instant, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EphemerisSnapshot), args.Error(1)
}

// MockCache is a mock implementation of EphemerisCache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, payload, ttl)
	return args.Error(0)
}

var testInstant = time.Date(1990, 5, 17, 8, 30, 0, 0, time.UTC)

func preciseSnapshot() *domain.EphemerisSnapshot {
	cusps := []float64{0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330}
	return &domain.EphemerisSnapshot{
		Source:      domain.ProviderPrecise,
		HouseSystem: domain.HouseSystemPorphyry,
		Instant:     testInstant,
		Houses:      domain.HouseFrame{Cusps: cusps, Angles: map[string]float64{domain.AngleAscendant: 0}},
		Bodies: []domain.BodyReading{
			domain.NewBodyReading(domain.BodySun, 56.17, 0, 1.01, 0.96, cusps),
		},
	}
}

func TestCacheKey(t *testing.T) {
	loc := testLocation()
	instant := time.Date(1990, 5, 17, 12, 30, 15, 999, time.FixedZone("MSK", 4*3600))

	assert.Equal(t,
		"ephemeris:precise:5a0d3f3e-8a4c-4a38-9b1e-5a1f0f0b7c11:1990-05-17T08:30:15Z",
		CacheKey(domain.ProviderPrecise, loc.ID, instant),
	)
}

func TestClient_PrimarySuccessIsCachedForAWeek(t *testing.T) {
	ctx := context.Background()
	loc := testLocation()
	primary := new(MockProvider)
	store := new(MockCache)
	key := CacheKey(domain.ProviderPrecise, loc.ID, testInstant)

	primary.On("Fetch", ctx, testInstant, loc).Return(preciseSnapshot(), nil).Once()
	store.On("Get", ctx, key).Return(nil, false, nil).Once()
	store.On("Set", ctx, key, mock.Anything, DefaultCacheTTL).Return(nil).Once()

	snapshot, err := NewClient(primary, store, ClientConfig{}, nil).Fetch(ctx, testInstant, loc)

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderPrecise, snapshot.Source)
	primary.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestClient_CacheHitSkipsProvider(t *testing.T) {
	ctx := context.Background()
	loc := testLocation()
	primary := new(MockProvider)
	store := cache.NewMemory()

	payload, err := json.Marshal(preciseSnapshot())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, CacheKey(domain.ProviderPrecise, loc.ID, testInstant), payload, time.Hour))

	snapshot, err := NewClient(primary, store, ClientConfig{}, nil).Fetch(ctx, testInstant, loc)

	require.NoError(t, err)
	assert.Equal(t, preciseSnapshot().Bodies, snapshot.Bodies)
	primary.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestClient_FailingProviderFallsBackToStub(t *testing.T) {
	ctx := context.Background()
	loc := testLocation()
	primary := new(MockProvider)
	store := new(MockCache)
	key := CacheKey(domain.ProviderPrecise, loc.ID, testInstant)

	primary.On("Fetch", ctx, testInstant, loc).
		Return(nil, fmt.Errorf("%w: connection refused", domain.ErrProviderUnavailable)).Once()
	store.On("Get", ctx, key).Return(nil, false, nil).Once()
	store.On("Set", ctx, key, mock.Anything, 2*time.Hour).Return(nil).Once()

	client := NewClient(primary, store, ClientConfig{FallbackTTL: 2 * time.Hour}, nil)
	snapshot, err := client.Fetch(ctx, testInstant, loc)

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStub, snapshot.Source)
	assert.Len(t, snapshot.Bodies, len(domain.TrackedBodies))
	store.AssertExpectations(t)
}

func TestClient_AnyErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	primary := new(MockProvider)
	primary.On("Fetch", ctx, testInstant, testLocation()).Return(nil, errors.New("boom"))

	snapshot, err := NewClient(primary, nil, ClientConfig{}, nil).Fetch(ctx, testInstant, testLocation())

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStub, snapshot.Source)
}

func TestClient_NotImplementedIsSurfaced(t *testing.T) {
	ctx := context.Background()
	loc := testLocation()
	primary := new(MockProvider)
	store := new(MockCache)

	primary.On("Fetch", ctx, testInstant, loc).
		Return(nil, fmt.Errorf("%w: parsing", domain.ErrProviderNotImplemented))
	store.On("Get", ctx, mock.Anything).Return(nil, false, nil)

	_, err := NewClient(primary, store, ClientConfig{}, nil).Fetch(ctx, testInstant, loc)

	assert.ErrorIs(t, err, domain.ErrProviderNotImplemented)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClient_CacheFailuresNeverFailAFetch(t *testing.T) {
	ctx := context.Background()
	loc := testLocation()
	primary := new(MockProvider)
	store := new(MockCache)

	primary.On("Fetch", ctx, testInstant, loc).Return(preciseSnapshot(), nil)
	store.On("Get", ctx, mock.Anything).Return(nil, false, errors.New("disk full"))
	store.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	snapshot, err := NewClient(primary, store, ClientConfig{}, nil).Fetch(ctx, testInstant, loc)

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderPrecise, snapshot.Source)
}

func TestClient_CorruptCacheEntryIsRefetched(t *testing.T) {
	ctx := context.Background()
	loc := testLocation()
	primary := new(MockProvider)
	store := cache.NewMemory()
	key := CacheKey(domain.ProviderPrecise, loc.ID, testInstant)

	require.NoError(t, store.Set(ctx, key, []byte("{not json"), time.Hour))
	primary.On("Fetch", ctx, testInstant, loc).Return(preciseSnapshot(), nil).Once()

	snapshot, err := NewClient(primary, store, ClientConfig{}, nil).Fetch(ctx, testInstant, loc)

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderPrecise, snapshot.Source)

	payload, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, json.Valid(payload))
}

func TestNewProvider(t *testing.T) {
	for name, tag := range map[string]domain.ProviderTag{
		ProviderNamePrecise: domain.ProviderPrecise,
		ProviderNameRemote:  domain.ProviderRemote,
		ProviderNameStub:    domain.ProviderStub,
	} {
		provider, err := NewProvider(name, RemoteConfig{}, nil)
		require.NoError(t, err)
		assert.Equal(t, tag, provider.Tag())
	}

	_, err := NewProvider("swiss", RemoteConfig{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
