package domain

import "math"

// Sign is one of the 12 fixed zodiac signs
type Sign string

const (
	SignAries       Sign = "aries"
	SignTaurus      Sign = "taurus"
	SignGemini      Sign = "gemini"
	SignCancer      Sign = "cancer"
	SignLeo         Sign = "leo"
	SignVirgo       Sign = "virgo"
	SignLibra       Sign = "libra"
	SignScorpio     Sign = "scorpio"
	SignSagittarius Sign = "sagittarius"
	SignCapricorn   Sign = "capricorn"
	SignAquarius    Sign = "aquarius"
	SignPisces      Sign = "pisces"
)

// Signs is the ordered sign table, indexed by floor(longitude / 30)
var Signs = [12]Sign{
	SignAries,
	SignTaurus,
	SignGemini,
	SignCancer,
	SignLeo,
	SignVirgo,
	SignLibra,
	SignScorpio,
	SignSagittarius,
	SignCapricorn,
	SignAquarius,
	SignPisces,
}

// HouseCount is the number of houses (and cusps) in a HouseFrame
const HouseCount = 12

// NormalizeDegree maps any longitude onto [0, 360)
func NormalizeDegree(value float64) float64 {
	v := math.Mod(value, 360.0)
	if v < 0 {
		v += 360.0
	}
	// math.Mod(-1e-15, 360) + 360 rounds to exactly 360
	if v >= 360.0 {
		v = 0
	}
	return v
}

// ResolveSign returns the sign occupied by the given ecliptic longitude
func ResolveSign(longitude float64) Sign {
	index := int(math.Floor(NormalizeDegree(longitude)/30.0)) % len(Signs)
	return Signs[index]
}

// SignIndex returns the zero-based ecliptic position of a sign, or -1 if unknown
func SignIndex(sign Sign) int {
	for i, s := range Signs {
		if s == sign {
			return i
		}
	}
	return -1
}

// ResolveHouse finds the house (1-12) whose cusp interval contains the longitude.
// An interval whose end is smaller than its start wraps through 0°.
// Returns 1 when the frame does not carry exactly 12 cusps.
func ResolveHouse(longitude float64, cusps []float64) int {
	if len(cusps) != HouseCount {
		return 1
	}

	norm := NormalizeDegree(longitude)
	for idx := 0; idx < HouseCount; idx++ {
		start := NormalizeDegree(cusps[idx])
		end := NormalizeDegree(cusps[(idx+1)%HouseCount])
		if start <= end {
			if norm >= start && norm < end {
				return idx + 1
			}
		} else {
			if norm >= start || norm < end {
				return idx + 1
			}
		}
	}

	return HouseCount
}

// Element is a classical element bucket
type Element string

const (
	ElementFire  Element = "fire"
	ElementEarth Element = "earth"
	ElementAir   Element = "air"
	ElementWater Element = "water"
)

// Elements lists element buckets in output order
var Elements = []Element{ElementFire, ElementEarth, ElementAir, ElementWater}

// Modality is a sign quality (cross) bucket
type Modality string

const (
	ModalityCardinal Modality = "cardinal"
	ModalityFixed    Modality = "fixed"
	ModalityMutable  Modality = "mutable"
)

// Modalities lists modality buckets in output order
var Modalities = []Modality{ModalityCardinal, ModalityFixed, ModalityMutable}

// Zone groups four consecutive signs
type Zone string

const (
	ZoneFirst  Zone = "first_zone"
	ZoneSecond Zone = "second_zone"
	ZoneThird  Zone = "third_zone"
)

// Zones lists zone buckets in output order
var Zones = []Zone{ZoneFirst, ZoneSecond, ZoneThird}

// ElementOf returns the element of a sign
func ElementOf(sign Sign) (Element, bool) {
	idx := SignIndex(sign)
	if idx < 0 {
		return "", false
	}
	return Elements[idx%4], true
}

// ModalityOf returns the modality of a sign
func ModalityOf(sign Sign) (Modality, bool) {
	idx := SignIndex(sign)
	if idx < 0 {
		return "", false
	}
	return Modalities[idx%3], true
}

// ZoneOf returns the zone of a sign: signs 1-4, 5-8 and 9-12 by ecliptic order
func ZoneOf(sign Sign) (Zone, bool) {
	idx := SignIndex(sign)
	if idx < 0 {
		return "", false
	}
	return Zones[idx/4], true
}

// Rulership maps each sign to the body that rules it
var Rulership = map[Sign]BodySlug{
	SignAries:       BodyMars,
	SignTaurus:      BodyVenus,
	SignGemini:      BodyMercury,
	SignCancer:      BodyMoon,
	SignLeo:         BodySun,
	SignVirgo:       BodyMercury,
	SignLibra:       BodyVenus,
	SignScorpio:     BodyPluto,
	SignSagittarius: BodyJupiter,
	SignCapricorn:   BodySaturn,
	SignAquarius:    BodyUranus,
	SignPisces:      BodyNeptune,
}

// Detriment maps each sign to the body in detriment there
var Detriment = map[Sign]BodySlug{
	SignAries:       BodyVenus,
	SignTaurus:      BodyMars,
	SignGemini:      BodyJupiter,
	SignCancer:      BodySaturn,
	SignLeo:         BodySaturn,
	SignVirgo:       BodyNeptune,
	SignLibra:       BodyMars,
	SignScorpio:     BodyVenus,
	SignSagittarius: BodyMercury,
	SignCapricorn:   BodyMoon,
	SignAquarius:    BodySun,
	SignPisces:      BodyMercury,
}

// HouseKey returns the knowledge-base key of a house ("I_house".."XII_house")
func HouseKey(house int) string {
	numerals := [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}
	if house < 1 || house > HouseCount {
		return ""
	}
	return numerals[house-1] + "_house"
}
