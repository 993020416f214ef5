package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDegree(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "already normalised", input: 95.5, want: 95.5},
		{name: "full turn", input: 360, want: 0},
		{name: "over one turn", input: 725, want: 5},
		{name: "negative", input: -30, want: 330},
		{name: "tiny negative does not round to 360", input: -1e-15, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDegree(tt.input)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 360.0)
		})
	}
}

func TestResolveSign_Cancer(t *testing.T) {
	// floor(95/30) = 3
	assert.Equal(t, SignCancer, ResolveSign(95.0))
}

func TestResolveSign_Boundaries(t *testing.T) {
	assert.Equal(t, SignAries, ResolveSign(0))
	assert.Equal(t, SignAries, ResolveSign(29.999))
	assert.Equal(t, SignTaurus, ResolveSign(30))
	assert.Equal(t, SignPisces, ResolveSign(359.999))
	assert.Equal(t, SignPisces, ResolveSign(-0.5))
}

func TestResolveSign_WraparoundInvariance(t *testing.T) {
	for l := -720.0; l < 720.0; l += 0.25 {
		assert.Equal(t, ResolveSign(l), ResolveSign(l+360), "longitude %v", l)
	}
}

func uniformCusps(start float64) []float64 {
	cusps := make([]float64, HouseCount)
	for i := range cusps {
		cusps[i] = NormalizeDegree(start + float64(i)*30)
	}
	return cusps
}

func TestResolveHouse_UniformFrameFromZero(t *testing.T) {
	cusps := uniformCusps(0)
	assert.Equal(t, 4, ResolveHouse(95.0, cusps))
	assert.Equal(t, 1, ResolveHouse(0, cusps))
	assert.Equal(t, 12, ResolveHouse(359.9, cusps))
	assert.Equal(t, 2, ResolveHouse(30, cusps))
}

func TestResolveHouse_WrappingInterval(t *testing.T) {
	// House 1 starts at 350° and ends at 20°, spanning 0°
	cusps := uniformCusps(350)

	assert.Equal(t, 1, ResolveHouse(355, cusps))
	assert.Equal(t, 1, ResolveHouse(0, cusps))
	assert.Equal(t, 1, ResolveHouse(19.99, cusps))
	assert.Equal(t, 2, ResolveHouse(20, cusps))
	assert.Equal(t, 12, ResolveHouse(349.5, cusps))
}

func TestResolveHouse_EveryLongitudeHasExactlyOneHouse(t *testing.T) {
	frames := map[string][]float64{
		"uniform":  uniformCusps(0),
		"rotated":  uniformCusps(347.25),
		"unequal":  {10, 42, 71, 95, 130, 170, 190, 222, 251, 275, 310, 350},
		"wrapping": {300, 330, 5, 40, 75, 100, 120, 150, 185, 220, 255, 280},
	}

	for name, cusps := range frames {
		t.Run(name, func(t *testing.T) {
			counts := make(map[int]int)
			for l := 0.0; l < 360.0; l += 0.1 {
				house := ResolveHouse(l, cusps)
				require.GreaterOrEqual(t, house, 1)
				require.LessOrEqual(t, house, 12)

				// exactly one interval contains the longitude
				matches := 0
				for idx := 0; idx < HouseCount; idx++ {
					start := cusps[idx]
					end := cusps[(idx+1)%HouseCount]
					if start <= end {
						if l >= start && l < end {
							matches++
						}
					} else if l >= start || l < end {
						matches++
					}
				}
				require.Equal(t, 1, matches, "longitude %v", l)
				counts[house]++
			}
			assert.Len(t, counts, 12, "every house must be reachable")
		})
	}
}

func TestResolveHouse_WrongCuspCountFallsBackToFirstHouse(t *testing.T) {
	assert.Equal(t, 1, ResolveHouse(200, []float64{0, 30, 60}))
	assert.Equal(t, 1, ResolveHouse(200, nil))
}

func TestCategoryTables(t *testing.T) {
	tests := []struct {
		sign     Sign
		element  Element
		modality Modality
		zone     Zone
	}{
		{SignAries, ElementFire, ModalityCardinal, ZoneFirst},
		{SignTaurus, ElementEarth, ModalityFixed, ZoneFirst},
		{SignGemini, ElementAir, ModalityMutable, ZoneFirst},
		{SignCancer, ElementWater, ModalityCardinal, ZoneFirst},
		{SignLeo, ElementFire, ModalityFixed, ZoneSecond},
		{SignVirgo, ElementEarth, ModalityMutable, ZoneSecond},
		{SignLibra, ElementAir, ModalityCardinal, ZoneSecond},
		{SignScorpio, ElementWater, ModalityFixed, ZoneSecond},
		{SignSagittarius, ElementFire, ModalityMutable, ZoneThird},
		{SignCapricorn, ElementEarth, ModalityCardinal, ZoneThird},
		{SignAquarius, ElementAir, ModalityFixed, ZoneThird},
		{SignPisces, ElementWater, ModalityMutable, ZoneThird},
	}

	for _, tt := range tests {
		t.Run(string(tt.sign), func(t *testing.T) {
			element, ok := ElementOf(tt.sign)
			require.True(t, ok)
			assert.Equal(t, tt.element, element)

			modality, ok := ModalityOf(tt.sign)
			require.True(t, ok)
			assert.Equal(t, tt.modality, modality)

			zone, ok := ZoneOf(tt.sign)
			require.True(t, ok)
			assert.Equal(t, tt.zone, zone)
		})
	}

	_, ok := ElementOf(Sign("ophiuchus"))
	assert.False(t, ok)
}

func TestHouseKey(t *testing.T) {
	assert.Equal(t, "I_house", HouseKey(1))
	assert.Equal(t, "IV_house", HouseKey(4))
	assert.Equal(t, "XII_house", HouseKey(12))
	assert.Equal(t, "", HouseKey(0))
	assert.Equal(t, "", HouseKey(13))
}

func TestBodyReading_Antipode(t *testing.T) {
	cusps := uniformCusps(0)
	north := NewBodyReading(BodyNorthNode, 200, 0, 1, -0.05, cusps)

	south := north.Antipode(BodySouthNode, cusps)

	assert.Equal(t, BodySouthNode, south.Body)
	assert.InDelta(t, 20.0, south.Longitude, 1e-9)
	assert.Equal(t, SignAries, south.Sign)
	assert.Equal(t, 1, south.House)
	assert.True(t, south.Retrograde)
	assert.Equal(t, SignLibra, north.Sign)
}
