package ephemeris

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

func TestJulianDay(t *testing.T) {
	assert.InDelta(t, 2451545.0, JulianDay(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)), 1e-9)
	assert.InDelta(t, 2440587.5, JulianDay(time.Unix(0, 0)), 1e-9)
	assert.InDelta(t, 2446895.5, JulianDay(time.Date(1987, 4, 10, 0, 0, 0, 0, time.UTC)), 1e-9)

	local := time.Date(2000, 1, 1, 15, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	assert.InDelta(t, 2451545.0, JulianDay(local), 1e-9, "zone offsets are ignored")
}

func TestGreenwichSidereal(t *testing.T) {
	// 1987-04-10 0h UT: 13h10m46.3668s
	assert.InDelta(t, 197.693195, greenwichSidereal(2446895.5), 1e-4)
	assert.InDelta(t, 280.46061837, greenwichSidereal(j2000), 1e-6)
}

func TestReferencePositions(t *testing.T) {
	tests := []struct {
		name    string
		slug    domain.BodySlug
		jd      float64
		want    float64
		epsilon float64
	}{
		{name: "sun at J2000", slug: domain.BodySun, jd: j2000, want: 280.37, epsilon: 0.05},
		{name: "moon 1992-04-12", slug: domain.BodyMoon, jd: 2448724.5, want: 133.163, epsilon: 0.1},
		{name: "venus 1992-12-20", slug: domain.BodyVenus, jd: 2448976.5, want: 313.08, epsilon: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := geocentric(tt.slug, tt.jd)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got.lon, tt.epsilon)
		})
	}
}

func TestAngles(t *testing.T) {
	eps := 23.44
	assert.InDelta(t, 90.0, ascendantFor(0, 0, eps), 1e-9)
	assert.InDelta(t, 0.0, midheaven(0, eps), 1e-9)
	assert.InDelta(t, 180.0, ascendantFor(90, 51.5, eps), 1e-9, "a Cancer midheaven always rises Libra")
	assert.InDelta(t, 90.0, midheaven(90, eps), 1e-9)

	// poles do not produce NaN
	assert.False(t, math.IsNaN(ascendantFor(45, 90, eps)))
	assert.False(t, math.IsNaN(vertex(45, 0, eps)))
}

func TestPorphyryCusps(t *testing.T) {
	assert.Equal(t,
		[]float64{90, 120, 150, 180, 210, 240, 270, 300, 330, 0, 30, 60},
		porphyryCusps(90, 0),
	)

	cusps := porphyryCusps(100, 10)
	assert.InDelta(t, 100.0, cusps[0], 1e-9)
	assert.InDelta(t, 190.0, cusps[3], 1e-9)
	assert.InDelta(t, 280.0, cusps[6], 1e-9)
	assert.InDelta(t, 10.0, cusps[9], 1e-9)
	assert.InDelta(t, 130.0, cusps[1], 1e-9)
	assert.InDelta(t, 220.0, cusps[4], 1e-9)
}

func TestPreciseProvider_Fetch(t *testing.T) {
	instant := time.Date(2020, 10, 13, 0, 0, 0, 0, time.UTC)

	snapshot, err := NewPreciseProvider(nil).Fetch(context.Background(), instant, testLocation())
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderPrecise, snapshot.Source)
	assert.Equal(t, domain.HouseSystemPorphyry, snapshot.HouseSystem)
	require.NoError(t, snapshot.Houses.Validate())
	assert.Equal(t, snapshot.Houses.Angles[domain.AngleAscendant], snapshot.Houses.Cusps[0])
	assert.Equal(t, snapshot.Houses.Angles[domain.AngleMidheaven], snapshot.Houses.Cusps[9])
	assert.Contains(t, snapshot.Houses.Angles, domain.AngleVertex)

	require.Len(t, snapshot.Bodies, len(domain.TrackedBodies))
	for i, reading := range snapshot.Bodies {
		assert.Equal(t, domain.TrackedBodies[i], reading.Body)
		assert.GreaterOrEqual(t, reading.Longitude, 0.0)
		assert.Less(t, reading.Longitude, 360.0)
		assert.GreaterOrEqual(t, reading.House, 1)
		assert.LessOrEqual(t, reading.House, 12)
		assert.Equal(t, domain.ResolveSign(reading.Longitude), reading.Sign)
	}

	mars, _ := snapshot.Body(domain.BodyMars)
	assert.True(t, mars.Retrograde, "mars was retrograde at its 2020 opposition")
	assert.Equal(t, domain.SignAries, mars.Sign)

	north, _ := snapshot.Body(domain.BodyNorthNode)
	south, _ := snapshot.Body(domain.BodySouthNode)
	assert.True(t, north.Retrograde, "the mean node always regresses")
	assert.InDelta(t, domain.NormalizeDegree(north.Longitude+180), south.Longitude, 1e-9)
	assert.Equal(t, north.Speed, south.Speed)

	moon, _ := snapshot.Body(domain.BodyMoon)
	assert.Greater(t, moon.Speed, 11.0)
	assert.Less(t, moon.Speed, 16.0)
}

func TestPreciseProvider_InnerPlanetElongation(t *testing.T) {
	provider := NewPreciseProvider(nil)
	start := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 2*365; day += 17 {
		snapshot, err := provider.Fetch(context.Background(), start.AddDate(0, 0, day), testLocation())
		require.NoError(t, err)

		sun, _ := snapshot.Body(domain.BodySun)
		mercury, _ := snapshot.Body(domain.BodyMercury)
		venus, _ := snapshot.Body(domain.BodyVenus)

		assert.LessOrEqual(t, math.Abs(signedDelta(sun.Longitude, mercury.Longitude)), 28.5)
		assert.LessOrEqual(t, math.Abs(signedDelta(sun.Longitude, venus.Longitude)), 48.0)
	}
}

func TestPreciseProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPreciseProvider(nil).Fetch(ctx, time.Now(), testLocation())
	assert.ErrorIs(t, err, context.Canceled)
}
