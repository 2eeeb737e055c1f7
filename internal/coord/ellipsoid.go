package coord

import "math"

// Ellipsoid is a reference ellipsoid given by its two free parameters.
type Ellipsoid struct {
	SemiMajorAxis float64 // a, meters
	Flattening    float64 // f, 0 < f < 1
}

var (
	// WGS84 is the World Geodetic System 1984 ellipsoid.
	WGS84 = Ellipsoid{SemiMajorAxis: 6378137.0, Flattening: 1 / 298.257223563}
	// GRS80 is the ellipsoid of ETRS89, the datum of the Polish national grids.
	GRS80 = Ellipsoid{SemiMajorAxis: 6378137.0, Flattening: 1 / 298.257222101}
)

// Params holds the constants derived from an Ellipsoid.
// Values are a pure function of (a, f) and are never mutated.
type Params struct {
	A         float64 // semi-major axis
	B         float64 // semi-minor axis
	ESquared  float64 // first eccentricity squared
	E2Squared float64 // second eccentricity squared
	N         float64 // third flattening

	// Meridian-arc series coefficients.
	ArcA, ArcB, ArcC, ArcD, ArcE float64
}

// Params derives the secondary constants of e.
// The ellipsoid is not validated: a > 0 and 0 < f < 1 are the caller's job.
func (e Ellipsoid) Params() Params {
	a := e.SemiMajorAxis
	recf := 1.0 / e.Flattening
	b := a * (recf - 1.0) / recf

	n := (a - b) / (a + b)
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n

	return Params{
		A:         a,
		B:         b,
		ESquared:  (a*a - b*b) / (a * a),
		E2Squared: (a*a - b*b) / (b * b),
		N:         n,
		ArcA:      a * (1.0 - n + 5.0*(n2-n3)/4.0 + 81.0*(n4-n5)/64.0),
		ArcB:      3.0 * a * (n - n2 + 7.0*(n3-n4)/8.0 + 55.0*n5/64.0) / 2.0,
		ArcC:      15.0 * a * (n2 - n3 + 3.0*(n4-n5)/4.0) / 16.0,
		ArcD:      35.0 * a * (n3 - n4 + 11.0*n5/16.0) / 48.0,
		ArcE:      315.0 * a * (n4 - n5) / 512.0,
	}
}

// meridianRadius returns the radius of curvature in the meridian at latitude phi (radians).
func meridianRadius(p Params, phi float64) float64 {
	s := math.Sin(phi)
	d := math.Sqrt(1.0 - p.ESquared*s*s)
	return p.A * (1.0 - p.ESquared) / (d * d * d)
}

// primeVerticalRadius returns the radius of curvature in the prime vertical at latitude phi (radians).
func primeVerticalRadius(p Params, phi float64) float64 {
	s := math.Sin(phi)
	return p.A / math.Sqrt(1.0-p.ESquared*s*s)
}

// meridianArc approximates the distance along the meridian from the equator
// to latitude phi (radians) with a truncated Fourier series.
func meridianArc(p Params, phi float64) float64 {
	return p.ArcA*phi -
		p.ArcB*math.Sin(2.0*phi) +
		p.ArcC*math.Sin(4.0*phi) -
		p.ArcD*math.Sin(6.0*phi) +
		p.ArcE*math.Sin(8.0*phi)
}
