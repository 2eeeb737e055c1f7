package coord

import "math"

// LatLonToGrid projects a geodetic position (degrees) on ellipsoid e to the
// national grid g. Longitudes outside [13.5, 25.5) return GridSentinel for
// both coordinates together with ErrLongitudeOutOfRange.
func LatLonToGrid(e Ellipsoid, g Grid, lat, lon float64) (easting, northing float64, err error) {
	prof, err := g.ProfileForLon(lon)
	if err != nil {
		return GridSentinel, GridSentinel, err
	}
	easting, northing = forward(e.Params(), prof, lat, lon)
	return easting, northing, nil
}

// GridToLatLon unprojects national grid coordinates to latitude and longitude
// in degrees. For PUWG 2000 the strip is chosen from the easting; eastings
// outside every strip return NaN with ErrEastingOutOfRange.
func GridToLatLon(e Ellipsoid, g Grid, easting, northing float64) (lat, lon float64, err error) {
	prof, err := g.ProfileForEasting(easting)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	lat, lon = inverse(e.Params(), prof, easting, northing)
	return lat, lon, nil
}
