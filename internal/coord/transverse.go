package coord

import "math"

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi

	// footpointSteps is the fixed number of Newton corrections applied to the
	// footpoint latitude. It is deliberately not convergence-checked.
	footpointSteps = 5
)

// forward projects a geodetic position (degrees) with the series expansion
// of the transverse Mercator projection, eighth order in the longitude
// difference from the central meridian.
func forward(p Params, prof Profile, lat, lon float64) (easting, northing float64) {
	k0 := prof.ScaleFactor
	phi := lat * deg2rad
	dlam := lon*deg2rad - prof.CentralMeridian*deg2rad

	s := math.Sin(phi)
	c := math.Cos(phi)
	t := s / c
	eta := p.E2Squared * c * c
	sn := primeVerticalRadius(p, phi)

	t2, t4, t6 := t*t, t*t*t*t, t*t*t*t*t*t
	eta2 := eta * eta
	eta3 := eta2 * eta
	eta4 := eta3 * eta
	c3 := c * c * c
	c5 := c3 * c * c
	c7 := c5 * c * c

	// Northing terms.
	n1 := meridianArc(p, phi) * k0
	n2 := sn * s * c * k0 / 2.0
	n3 := sn * s * c3 * k0 * (5.0 - t2 + 9.0*eta + 4.0*eta2) / 24.0
	n4 := sn * s * c5 * k0 * (61.0 -
		58.0*t2 + t4 +
		270.0*eta -
		330.0*t2*eta +
		445.0*eta2 +
		324.0*eta3 -
		680.0*t2*eta2 +
		88.0*eta4 -
		600.0*t2*eta3 -
		192.0*t2*eta4) / 720.0
	n5 := sn * s * c7 * k0 * (1385.0 - 3111.0*t2 + 543.0*t4 - t6) / 40320.0

	// Easting terms.
	e1 := sn * c * k0
	e2 := sn * c3 * k0 * (1.0 - t2 + eta) / 6.0
	e3 := sn * c5 * k0 * (5.0 -
		18.0*t2 + t4 +
		14.0*eta -
		58.0*t2*eta +
		13.0*eta2 +
		4.0*eta3 -
		64.0*t2*eta2 -
		24.0*t2*eta3) / 120.0
	e4 := sn * c7 * k0 * (61.0 - 479.0*t2 + 179.0*t4 - t6) / 5040.0

	l2 := dlam * dlam
	northing = prof.FalseNorthing + n1 + l2*(n2+l2*(n3+l2*(n4+l2*n5)))
	easting = prof.FalseEasting + prof.StripOffset + dlam*(e1+l2*(e2+l2*(e3+l2*e4)))
	return
}

// footpointLatitude returns the latitude (radians) whose meridian arc equals
// arc, refined from the spherical guess by footpointSteps corrections.
func footpointLatitude(p Params, arc float64) float64 {
	phi := arc / meridianRadius(p, 0)
	for i := 0; i < footpointSteps; i++ {
		phi += (arc - meridianArc(p, phi)) / meridianRadius(p, phi)
	}
	return phi
}

// inverse unprojects planar coordinates to a geodetic position in degrees.
func inverse(p Params, prof Profile, easting, northing float64) (lat, lon float64) {
	k0 := prof.ScaleFactor
	phi := footpointLatitude(p, (northing-prof.FalseNorthing)/k0)

	sr := meridianRadius(p, phi)
	sn := primeVerticalRadius(p, phi)
	s := math.Sin(phi)
	c := math.Cos(phi)
	t := s / c
	eta := p.E2Squared * c * c

	t2 := t * t
	t4 := t2 * t2
	t6 := t4 * t2
	eta2 := eta * eta
	eta3 := eta2 * eta
	eta4 := eta3 * eta
	sn3 := sn * sn * sn
	sn5 := sn3 * sn * sn
	sn7 := sn5 * sn * sn
	k2 := k0 * k0
	k3 := k2 * k0
	k4 := k2 * k2
	k5 := k4 * k0
	k6 := k4 * k2
	k7 := k6 * k0
	k8 := k4 * k4

	// Latitude terms.
	p1 := t / (2.0 * sr * sn * k2)
	p2 := t * (5.0 + 3.0*t2 + eta - 4.0*eta2 - 9.0*t2*eta) / (24.0 * sr * sn3 * k4)
	p3 := t * (61.0 +
		90.0*t2 +
		46.0*eta +
		45.0*t4 -
		252.0*t2*eta -
		3.0*eta2 +
		100.0*eta3 -
		66.0*t2*eta2 -
		90.0*t4*eta +
		88.0*eta4 +
		225.0*t4*eta2 +
		84.0*t2*eta3 -
		192.0*t2*eta4) / (720.0 * sr * sn5 * k6)
	p4 := t * (1385.0 + 3633.0*t2 + 4095.0*t4 + 1575.0*t6) / (40320.0 * sr * sn7 * k8)

	// Longitude terms.
	q1 := 1.0 / (sn * c * k0)
	q2 := (1.0 + 2.0*t2 + eta) / (6.0 * sn3 * c * k3)
	q3 := (5.0 +
		6.0*eta +
		28.0*t2 -
		3.0*eta2 +
		8.0*t2*eta +
		24.0*t4 -
		4.0*eta3 +
		4.0*t2*eta2 +
		24.0*t2*eta3) / (120.0 * sn5 * c * k5)
	q4 := (61.0 + 662.0*t2 + 1320.0*t4 + 720.0*t6) / (5040.0 * sn7 * c * k7)

	de := easting - prof.FalseEasting - prof.StripOffset
	d2 := de * de

	phi -= d2 * (p1 - d2*(p2-d2*(p3-d2*p4)))
	dlam := de * (q1 - d2*(q2-d2*(q3-d2*q4)))

	lat = phi * rad2deg
	lon = prof.CentralMeridian + dlam*rad2deg
	return
}
