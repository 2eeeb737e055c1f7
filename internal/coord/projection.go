package coord

import "fmt"

// Projection defines the interface for converting between a source CRS and WGS84.
type Projection interface {
	// ToWGS84 converts source CRS coordinates to WGS84 longitude/latitude (degrees).
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS84 longitude/latitude (degrees) to source CRS coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code for this projection.
	EPSG() int
}

const (
	epsgWGS84        = 4326
	epsgPUWG1992     = 2180
	epsgPUWG2000Base = 2171 // + strip number 5..8
	epsgUTMNorth     = 32600
	epsgUTMSouth     = 32700
)

// ForEPSG returns a Projection for the given EPSG code on WGS84.
// Returns nil if the EPSG code is not supported.
func ForEPSG(epsg int) Projection {
	return ForEPSGOnEllipsoid(epsg, WGS84)
}

// ForEPSGOnEllipsoid is ForEPSG with the planar projections evaluated on e.
func ForEPSGOnEllipsoid(epsg int, e Ellipsoid) Projection {
	switch {
	case epsg == epsgWGS84:
		return &WGS84Identity{}
	case epsg == epsgPUWG1992:
		return &PUWG1992{Ellipsoid: e}
	case epsg >= epsgPUWG2000Base+firstStrip && epsg <= epsgPUWG2000Base+lastStrip:
		return &PUWG2000{Strip: epsg - epsgPUWG2000Base, Ellipsoid: e}
	case epsg > epsgUTMNorth && epsg <= epsgUTMNorth+60:
		return &UTM{Zone: epsg - epsgUTMNorth, Ellipsoid: e}
	case epsg > epsgUTMSouth && epsg <= epsgUTMSouth+60:
		return &UTM{Zone: epsg - epsgUTMSouth, South: true, Ellipsoid: e}
	default:
		return nil
	}
}

// paramsOrWGS84 treats the zero Ellipsoid as WGS84.
func paramsOrWGS84(e Ellipsoid) Params {
	if e == (Ellipsoid{}) {
		return WGS84.Params()
	}
	return e.Params()
}

// WGS84Identity is a no-op projection for data already in EPSG:4326.
type WGS84Identity struct{}

func (w *WGS84Identity) ToWGS84(x, y float64) (lon, lat float64) { return x, y }
func (w *WGS84Identity) FromWGS84(lon, lat float64) (x, y float64) { return lon, lat }
func (w *WGS84Identity) EPSG() int { return epsgWGS84 }

// UTM is a single fixed UTM zone (EPSG:326zz north, EPSG:327zz south).
// Unlike LatLonToUTM it never re-resolves the zone from the input.
type UTM struct {
	Zone      int
	South     bool
	Ellipsoid Ellipsoid // zero value means WGS84
}

func (u *UTM) EPSG() int {
	if u.South {
		return epsgUTMSouth + u.Zone
	}
	return epsgUTMNorth + u.Zone
}

func (u *UTM) ToWGS84(easting, northing float64) (lon, lat float64) {
	lat, lon = inverse(paramsOrWGS84(u.Ellipsoid), UTMProfile(u.Zone, u.South), easting, northing)
	return
}

func (u *UTM) FromWGS84(lon, lat float64) (easting, northing float64) {
	return forward(paramsOrWGS84(u.Ellipsoid), UTMProfile(u.Zone, u.South), lat, lon)
}

func (u *UTM) String() string {
	h := "N"
	if u.South {
		h = "S"
	}
	return fmt.Sprintf("UTM %d%s", u.Zone, h)
}

// PUWG1992 implements EPSG:2180 (ETRF2000-PL / CS92).
type PUWG1992 struct {
	Ellipsoid Ellipsoid // zero value means WGS84
}

func (p *PUWG1992) EPSG() int { return epsgPUWG1992 }

// ToWGS84 converts PUWG 1992 x (easting) / y (northing) to WGS84 longitude/latitude.
func (p *PUWG1992) ToWGS84(easting, northing float64) (lon, lat float64) {
	lat, lon = inverse(paramsOrWGS84(p.Ellipsoid), Profile1992(), easting, northing)
	return
}

// FromWGS84 returns GridSentinel for longitudes outside the grid's domain.
func (p *PUWG1992) FromWGS84(lon, lat float64) (easting, northing float64) {
	e := p.Ellipsoid
	if e == (Ellipsoid{}) {
		e = WGS84
	}
	easting, northing, _ = LatLonToGrid(e, Grid1992, lat, lon)
	return
}

// PUWG2000 implements one strip of EPSG:2176..2179 (ETRF2000-PL / CS2000/15..24).
// The strip is fixed, so positions outside its 3° band are still projected
// against its central meridian.
type PUWG2000 struct {
	Strip     int       // 5..8
	Ellipsoid Ellipsoid // zero value means WGS84
}

func (p *PUWG2000) EPSG() int { return epsgPUWG2000Base + p.Strip }

func (p *PUWG2000) ToWGS84(easting, northing float64) (lon, lat float64) {
	lat, lon = inverse(paramsOrWGS84(p.Ellipsoid), Strip2000(p.Strip), easting, northing)
	return
}

func (p *PUWG2000) FromWGS84(lon, lat float64) (easting, northing float64) {
	return forward(paramsOrWGS84(p.Ellipsoid), Strip2000(p.Strip), lat, lon)
}

// InferEPSG guesses the EPSG code from the coordinate ranges.
// Falls back to 0 when nothing matches.
func InferEPSG(x, y float64) int {
	if x >= -180 && x <= 360 && y >= -90 && y <= 90 {
		return epsgWGS84
	}

	// PUWG 2000 carries the strip number in the millions digit of the easting.
	if x >= 5000000 && x < 9000000 && y >= 4800000 && y <= 6200000 {
		return epsgPUWG2000Base + int(x/stripBandEasting)
	}

	// PUWG 1992 covers Poland with both coordinates in the hundreds of km.
	if x >= 100000 && x <= 900000 && y >= 100000 && y <= 900000 {
		return epsgPUWG1992
	}

	return 0
}
