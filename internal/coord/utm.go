package coord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// UTMCoord is a position in the Universal Transverse Mercator system.
type UTMCoord struct {
	Zone     int  // 1..60
	Letter   byte // latitude band, or InvalidZoneLetter
	Easting  float64
	Northing float64
}

// Southern reports whether the band letter places c south of the equator.
func (c UTMCoord) Southern() bool { return IsSouthernLetter(c.Letter) }

// Valid reports whether c carries a usable zone designation.
func (c UTMCoord) Valid() bool {
	return c.Zone >= 1 && c.Zone <= 60 && validZoneLetter(c.Letter)
}

func (c UTMCoord) String() string {
	return fmt.Sprintf("%d%c %.3f %.3f", c.Zone, c.Letter, c.Easting, c.Northing)
}

// ParseZone parses a zone designation such as "34U" or "5n".
func ParseZone(s string) (zone int, letter byte, err error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, 0, errors.Newf("invalid UTM zone %q", s)
	}
	letter = strings.ToUpper(s[len(s)-1:])[0]
	zone, err = strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid UTM zone %q", s)
	}
	if zone < 1 || zone > 60 || !validZoneLetter(letter) {
		return 0, 0, errors.Newf("invalid UTM zone %q", s)
	}
	return zone, letter, nil
}

// LatLonToUTM projects a geodetic position (degrees) on ellipsoid e to UTM.
// The zone is resolved from the position. For latitudes outside [-80, 84)
// the coordinate is still computed but carries InvalidZoneLetter, and
// ErrLatitudeOutOfRange is returned alongside it.
func LatLonToUTM(e Ellipsoid, lat, lon float64) (UTMCoord, error) {
	zone, letter := ResolveZone(lat, lon)
	prof := UTMProfile(zone, lat < 0.0)

	easting, northing := forward(e.Params(), prof, lat, lon)
	if northing >= utmMaxNorthing {
		northing = utmMaxNorthing
	}

	c := UTMCoord{Zone: zone, Letter: letter, Easting: easting, Northing: northing}
	if letter == InvalidZoneLetter {
		return c, ErrLatitudeOutOfRange
	}
	return c, nil
}

// UTMToLatLon unprojects c on ellipsoid e to latitude and longitude in
// degrees. The hemisphere is taken from the band letter.
func UTMToLatLon(e Ellipsoid, c UTMCoord) (lat, lon float64) {
	return inverse(e.Params(), UTMProfile(c.Zone, c.Southern()), c.Easting, c.Northing)
}
