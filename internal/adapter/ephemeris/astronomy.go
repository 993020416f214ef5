package ephemeris

import "math"

// Low-precision analytic ephemeris. Planetary elements follow P. Schlyter's
// "How to compute planetary positions"; nodes, apogee, obliquity and sidereal
// time use the polynomial series from Meeus, Astronomical Algorithms.
// Accuracy is in the arc-minute range, enough for sign and house placement.

const (
	j2000            = 2451545.0
	unixEpochJD      = 2440587.5
	elementsEpochJD  = 2451543.5
	earthRadiiPerAU  = 23454.8
	moonMeanDistance = 60.2666 / earthRadiiPerAU
)

func rad(deg float64) float64 { return deg * math.Pi / 180 }
func deg(r float64) float64   { return r * 180 / math.Pi }

func sind(x float64) float64 { return math.Sin(rad(x)) }
func cosd(x float64) float64 { return math.Cos(rad(x)) }

func atan2d(y, x float64) float64 { return deg(math.Atan2(y, x)) }

func rev(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

// signedDelta returns b-a folded into (-180, 180]
func signedDelta(a, b float64) float64 {
	d := rev(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

func centuries(jd float64) float64 {
	return (jd - j2000) / 36525
}

// orbit holds osculating elements for a day number d; angles in degrees
type orbit struct {
	N, i, w, a, e, M float64
}

func sunOrbit(d float64) orbit {
	return orbit{
		N: 0, i: 0,
		w: 282.9404 + 4.70935e-5*d,
		a: 1,
		e: 0.016709 - 1.151e-9*d,
		M: 356.0470 + 0.9856002585*d,
	}
}

func moonOrbit(d float64) orbit {
	return orbit{
		N: 125.1228 - 0.0529538083*d,
		i: 5.1454,
		w: 318.0634 + 0.1643573223*d,
		a: 60.2666,
		e: 0.054900,
		M: 115.3654 + 13.0649929509*d,
	}
}

var planetOrbits = map[string]func(d float64) orbit{
	"mercury": func(d float64) orbit {
		return orbit{48.3313 + 3.24587e-5*d, 7.0047 + 5.00e-8*d, 29.1241 + 1.01444e-5*d, 0.387098, 0.205635 + 5.59e-10*d, 168.6562 + 4.0923344368*d}
	},
	"venus": func(d float64) orbit {
		return orbit{76.6799 + 2.46590e-5*d, 3.3946 + 2.75e-8*d, 54.8910 + 1.38374e-5*d, 0.723330, 0.006773 - 1.302e-9*d, 48.0052 + 1.6021302244*d}
	},
	"mars": func(d float64) orbit {
		return orbit{49.5574 + 2.11081e-5*d, 1.8497 - 1.78e-8*d, 286.5016 + 2.92961e-5*d, 1.523688, 0.093405 + 2.516e-9*d, 18.6021 + 0.5240207766*d}
	},
	"jupiter": func(d float64) orbit {
		return orbit{100.4542 + 2.76854e-5*d, 1.3030 - 1.557e-7*d, 273.8777 + 1.64505e-5*d, 5.20256, 0.048498 + 4.469e-9*d, 19.8950 + 0.0830853001*d}
	},
	"saturn": func(d float64) orbit {
		return orbit{113.6634 + 2.38980e-5*d, 2.4886 - 1.081e-7*d, 339.3939 + 2.97661e-5*d, 9.55475, 0.055546 - 9.499e-9*d, 316.9670 + 0.0334442282*d}
	},
	"uranus": func(d float64) orbit {
		return orbit{74.0005 + 1.3978e-5*d, 0.7733 + 1.9e-8*d, 96.6612 + 3.0565e-5*d, 19.18171 - 1.55e-8*d, 0.047318 + 7.45e-9*d, 142.5905 + 0.011725806*d}
	},
	"neptune": func(d float64) orbit {
		return orbit{131.7806 + 3.0173e-5*d, 1.7700 - 2.55e-7*d, 272.8461 - 6.027e-6*d, 30.05826 + 3.313e-8*d, 0.008606 + 2.15e-9*d, 260.2471 + 0.005995147*d}
	},
}

// eccentricAnomaly solves Kepler's equation by Newton iteration
func eccentricAnomaly(M, e float64) float64 {
	M = rev(M)
	E := M + deg(e*math.Sin(rad(M))*(1+e*math.Cos(rad(M))))
	for iter := 0; iter < 20; iter++ {
		delta := (E - deg(e*math.Sin(rad(E))) - M) / (1 - e*math.Cos(rad(E)))
		E -= delta
		if math.Abs(delta) < 1e-9 {
			break
		}
	}
	return E
}

// spherical is an ecliptic position: longitude and latitude in degrees, distance in orbit units
type spherical struct {
	lon, lat, r float64
}

// position returns the body position relative to the orbit's focus
func (o orbit) position() spherical {
	E := eccentricAnomaly(o.M, o.e)
	xv := o.a * (cosd(E) - o.e)
	yv := o.a * math.Sqrt(1-o.e*o.e) * sind(E)
	v := atan2d(yv, xv)
	r := math.Hypot(xv, yv)

	u := v + o.w
	xh := r * (cosd(o.N)*cosd(u) - sind(o.N)*sind(u)*cosd(o.i))
	yh := r * (sind(o.N)*cosd(u) + cosd(o.N)*sind(u)*cosd(o.i))
	zh := r * sind(u) * sind(o.i)

	return spherical{
		lon: rev(atan2d(yh, xh)),
		lat: atan2d(zh, math.Hypot(xh, yh)),
		r:   r,
	}
}

func (s spherical) rectangular() (x, y, z float64) {
	x = s.r * cosd(s.lon) * cosd(s.lat)
	y = s.r * sind(s.lon) * cosd(s.lat)
	z = s.r * sind(s.lat)
	return x, y, z
}

// toGeocentric shifts a heliocentric position by the sun's geocentric position
func toGeocentric(helio, sun spherical) spherical {
	x, y, z := helio.rectangular()
	sx, sy, _ := sun.rectangular()
	x += sx
	y += sy
	return spherical{
		lon: rev(atan2d(y, x)),
		lat: atan2d(z, math.Hypot(x, y)),
		r:   math.Sqrt(x*x + y*y + z*z),
	}
}

func sunPosition(d float64) spherical {
	return sunOrbit(d).position()
}

func moonPosition(d float64) spherical {
	moon := moonOrbit(d)
	sun := sunOrbit(d)
	p := moon.position()

	Ms, Mm := sun.M, moon.M
	Ls := Ms + sun.w
	Lm := Mm + moon.w + moon.N
	D := Lm - Ls
	F := Lm - moon.N

	p.lon += -1.274*sind(Mm-2*D) +
		0.658*sind(2*D) -
		0.186*sind(Ms) -
		0.059*sind(2*Mm-2*D) -
		0.057*sind(Mm-2*D+Ms) +
		0.053*sind(Mm+2*D) +
		0.046*sind(2*D-Ms) +
		0.041*sind(Mm-Ms) -
		0.035*sind(D) -
		0.031*sind(Mm+Ms) -
		0.015*sind(2*F-2*D) +
		0.011*sind(Mm-4*D)
	p.lat += -0.173*sind(F-2*D) -
		0.055*sind(Mm-F-2*D) -
		0.046*sind(Mm+F-2*D) +
		0.033*sind(F+2*D) +
		0.017*sind(2*Mm+F)
	p.r += -0.58*cosd(Mm-2*D) - 0.46*cosd(2*D)

	p.lon = rev(p.lon)
	p.r /= earthRadiiPerAU
	return p
}

// planetPosition returns the geocentric position of mercury..neptune
func planetPosition(name string, d float64) (spherical, bool) {
	elements, ok := planetOrbits[name]
	if !ok {
		return spherical{}, false
	}
	helio := elements(d).position()

	Mj := planetOrbits["jupiter"](d).M
	Msat := planetOrbits["saturn"](d).M
	Mu := planetOrbits["uranus"](d).M

	switch name {
	case "jupiter":
		helio.lon += -0.332*sind(2*Mj-5*Msat-67.6) -
			0.056*sind(2*Mj-2*Msat+21) +
			0.042*sind(3*Mj-5*Msat+21) -
			0.036*sind(Mj-2*Msat) +
			0.022*cosd(Mj-Msat) +
			0.023*sind(2*Mj-3*Msat+52) -
			0.016*sind(Mj-5*Msat-69)
	case "saturn":
		helio.lon += 0.812*sind(2*Mj-5*Msat-67.6) -
			0.229*cosd(2*Mj-4*Msat-2) +
			0.119*sind(Mj-2*Msat-3) +
			0.046*sind(2*Mj-6*Msat-69) +
			0.014*sind(Mj-3*Msat+32)
		helio.lat += -0.020*cosd(2*Mj-4*Msat-2) + 0.018*sind(2*Mj-6*Msat-49)
	case "uranus":
		helio.lon += 0.040*sind(Msat-2*Mu+6) +
			0.035*sind(Msat-3*Mu+33) -
			0.015*sind(Mj-Mu+20)
	}

	return toGeocentric(helio, sunPosition(d)), true
}

// plutoPosition uses a periodic series fitted to 1800-2100; heliocentric J2000 frame
func plutoPosition(d float64) spherical {
	S := 50.03 + 0.033459652*d
	P := 238.95 + 0.003968789*d

	lon := 238.9508 + 0.00400703*d -
		19.799*sind(P) + 19.848*cosd(P) +
		0.897*sind(2*P) - 4.956*cosd(2*P) +
		0.610*sind(3*P) + 1.211*cosd(3*P) -
		0.341*sind(4*P) - 0.190*cosd(4*P) +
		0.128*sind(5*P) - 0.034*cosd(5*P) -
		0.038*sind(6*P) + 0.031*cosd(6*P) +
		0.020*sind(S-P) - 0.010*cosd(S-P)
	lat := -3.9082 -
		5.453*sind(P) - 14.975*cosd(P) +
		3.527*sind(2*P) + 1.673*cosd(2*P) -
		1.051*sind(3*P) + 0.328*cosd(3*P) +
		0.179*sind(4*P) - 0.292*cosd(4*P) +
		0.019*sind(5*P) + 0.100*cosd(5*P) -
		0.031*sind(6*P) - 0.026*cosd(6*P) +
		0.011*cosd(S-P)
	r := 40.72 +
		6.68*sind(P) + 6.90*cosd(P) -
		1.18*sind(2*P) - 0.03*cosd(2*P) +
		0.15*sind(3*P) - 0.14*cosd(3*P)

	return toGeocentric(spherical{lon: rev(lon), lat: lat, r: r}, sunPosition(d))
}

// meanNode is the longitude of the mean ascending lunar node
func meanNode(jd float64) float64 {
	T := centuries(jd)
	return rev(125.0445479 - 1934.1362891*T + 0.0020754*T*T + T*T*T/467441 - T*T*T*T/60616000)
}

// meanApogee is the longitude of the mean lunar apogee (Black Moon Lilith)
func meanApogee(jd float64) float64 {
	T := centuries(jd)
	perigee := 83.3532465 + 4069.0137287*T - 0.0103200*T*T - T*T*T/80053 + T*T*T*T/18999000
	return rev(perigee + 180)
}

// obliquity is the mean obliquity of the ecliptic
func obliquity(jd float64) float64 {
	T := centuries(jd)
	return 23.439291 - 0.0130042*T - 1.64e-7*T*T + 5.04e-7*T*T*T
}

// greenwichSidereal is the mean sidereal time at Greenwich in degrees
func greenwichSidereal(jd float64) float64 {
	T := centuries(jd)
	return rev(280.46061837 + 360.98564736629*(jd-j2000) + 0.000387933*T*T - T*T*T/38710000)
}

// maxHouseLatitude keeps tan(latitude) finite near the poles
const maxHouseLatitude = 89.9

func clampLatitude(lat float64) float64 {
	return math.Max(-maxHouseLatitude, math.Min(maxHouseLatitude, lat))
}

// ascendantFor returns the ecliptic point rising for a given RAMC and latitude
func ascendantFor(ramc, lat, eps float64) float64 {
	lat = clampLatitude(lat)
	return rev(atan2d(cosd(ramc), -(sind(ramc)*cosd(eps) + math.Tan(rad(lat))*sind(eps))))
}

// midheaven returns the ecliptic longitude culminating for a given RAMC
func midheaven(ramc, eps float64) float64 {
	return rev(atan2d(sind(ramc), cosd(ramc)*cosd(eps)))
}

// vertex is the western intersection of the ecliptic and the prime vertical
func vertex(ramc, lat, eps float64) float64 {
	return ascendantFor(ramc+180, 90-clampLatitude(lat), eps)
}

// porphyryCusps trisects each quadrant between the angles
func porphyryCusps(asc, mc float64) []float64 {
	ic := rev(mc + 180)
	dsc := rev(asc + 180)

	first := rev(ic - asc)
	second := rev(dsc - ic)

	cusps := make([]float64, 12)
	cusps[0] = asc
	cusps[1] = rev(asc + first/3)
	cusps[2] = rev(asc + 2*first/3)
	cusps[3] = ic
	cusps[4] = rev(ic + second/3)
	cusps[5] = rev(ic + 2*second/3)
	for n := 6; n < 12; n++ {
		cusps[n] = rev(cusps[n-6] + 180)
	}
	cusps[6] = dsc
	cusps[9] = mc
	return cusps
}
