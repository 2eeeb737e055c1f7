package coord

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for inputs outside a projection's domain.
var (
	ErrLatitudeOutOfRange  = errors.New("latitude outside UTM band range [-80, 84)")
	ErrLongitudeOutOfRange = errors.New("longitude outside national grid domain [13.5, 25.5)")
	ErrEastingOutOfRange   = errors.New("easting outside PUWG 2000 strip bands [5e6, 9e6)")
	ErrUnknownGrid         = errors.New("unknown national grid")
)

// GridSentinel is the easting and northing returned for longitudes outside
// the national grid domain.
const GridSentinel = 999999999999999.0

const (
	utmScaleFactor     = 0.9996
	utmFalseNorthingS  = 10000000.0
	utmMaxNorthing     = 9999999.0
	defaultFalseEast   = 500000.0
	puwg1992Scale      = 0.9993
	puwg1992Meridian   = 19.0
	puwg1992FalseNorth = -5300000.0
	puwg2000Scale      = 0.999923
	gridMinLon         = 13.5
	gridMaxLon         = 25.5
	stripWidth         = 3.0
	stripBandEasting   = 1000000.0
	firstStrip         = 5
	lastStrip          = 8
)

// Profile holds the constants of one transverse Mercator instance.
type Profile struct {
	Name            string
	ScaleFactor     float64 // k0 at the central meridian
	FalseEasting    float64
	StripOffset     float64 // added to FalseEasting by the PUWG 2000 strips
	FalseNorthing   float64
	CentralMeridian float64 // degrees
}

// UTMProfile returns the profile of UTM zone (1..60) in the given hemisphere.
func UTMProfile(zone int, southern bool) Profile {
	p := Profile{
		Name:            "UTM",
		ScaleFactor:     utmScaleFactor,
		FalseEasting:    defaultFalseEast,
		CentralMeridian: float64(zone*6 - 183),
	}
	if southern {
		p.FalseNorthing = utmFalseNorthingS
	}
	return p
}

// Grid selects one of the Polish national grids.
type Grid int

const (
	Grid1992 Grid = iota + 1 // PUWG 1992, EPSG:2180
	Grid2000                 // PUWG 2000, EPSG:2176..2179
)

func (g Grid) String() string {
	switch g {
	case Grid1992:
		return "1992"
	case Grid2000:
		return "2000"
	default:
		return "unknown"
	}
}

// ParseGrid accepts "1992", "2000" and their "puwg" prefixed forms.
func ParseGrid(s string) (Grid, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "puwg") {
	case "1992", "92":
		return Grid1992, nil
	case "2000", "00":
		return Grid2000, nil
	}
	return 0, errors.Wrapf(ErrUnknownGrid, "%q", s)
}

// Profile1992 is the single PUWG 1992 profile.
func Profile1992() Profile {
	return Profile{
		Name:            "PUWG 1992",
		ScaleFactor:     puwg1992Scale,
		FalseEasting:    defaultFalseEast,
		FalseNorthing:   puwg1992FalseNorth,
		CentralMeridian: puwg1992Meridian,
	}
}

// Strip2000 returns the PUWG 2000 profile of strip 5..8 (central meridian
// 15, 18, 21 or 24°E).
func Strip2000(strip int) Profile {
	return Profile{
		Name:            "PUWG 2000",
		ScaleFactor:     puwg2000Scale,
		FalseEasting:    defaultFalseEast,
		StripOffset:     float64(strip) * stripBandEasting,
		CentralMeridian: float64(strip) * stripWidth,
	}
}

// ProfileForLon selects the profile used to project longitude lon.
// The domain of both grids is [13.5, 25.5); PUWG 2000 picks the 3°-wide strip
// containing lon.
func (g Grid) ProfileForLon(lon float64) (Profile, error) {
	if lon < gridMinLon || lon >= gridMaxLon {
		return Profile{}, ErrLongitudeOutOfRange
	}
	switch g {
	case Grid1992:
		return Profile1992(), nil
	case Grid2000:
		return Strip2000(firstStrip + int((lon-gridMinLon)/stripWidth)), nil
	}
	return Profile{}, ErrUnknownGrid
}

// ProfileForEasting selects the profile used to unproject easting. The
// longitude is unknown on this path, so PUWG 2000 strips are picked by the
// millions digit of the easting.
func (g Grid) ProfileForEasting(easting float64) (Profile, error) {
	switch g {
	case Grid1992:
		return Profile1992(), nil
	case Grid2000:
		strip := int(easting / stripBandEasting)
		if easting < 0 || strip < firstStrip || strip > lastStrip {
			return Profile{}, ErrEastingOutOfRange
		}
		return Strip2000(strip), nil
	}
	return Profile{}, ErrUnknownGrid
}

// EPSG returns the EPSG code of the grid, or of the PUWG 2000 strip
// containing lon. Zero means no code applies.
func (g Grid) EPSG(lon float64) int {
	p, err := g.ProfileForLon(lon)
	if err != nil {
		return 0
	}
	if g == Grid1992 {
		return epsgPUWG1992
	}
	return epsgPUWG2000Base + int(p.StripOffset/stripBandEasting)
}
