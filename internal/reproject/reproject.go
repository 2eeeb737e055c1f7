// Package reproject moves GeoJSON geometries between WGS84 and a planar CRS.
package reproject

import (
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"

	"github.com/pspoerri/gridproj/internal/coord"
)

// Direction selects which way coordinates are transformed.
type Direction int

const (
	Forward Direction = iota // WGS84 lon/lat -> CRS
	Inverse                  // CRS -> WGS84 lon/lat
)

// ParseDirection accepts "forward" and "inverse".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "fwd":
		return Forward, nil
	case "inverse", "inv":
		return Inverse, nil
	}
	return 0, errors.Newf("unknown direction %q (want forward or inverse)", s)
}

func (d Direction) String() string {
	if d == Inverse {
		return "inverse"
	}
	return "forward"
}

// ErrOutsideDomain is returned when a forward-projected point lands on the
// national grid sentinel.
var ErrOutsideDomain = errors.New("point outside projection domain")

// Func returns the orb projection for p in direction d. GeoJSON points are
// always [x, y], i.e. [lon, lat] or [easting, northing].
func Func(p coord.Projection, d Direction) orb.Projection {
	if d == Inverse {
		return func(pt orb.Point) orb.Point {
			lon, lat := p.ToWGS84(pt[0], pt[1])
			return orb.Point{lon, lat}
		}
	}
	return func(pt orb.Point) orb.Point {
		x, y := p.FromWGS84(pt[0], pt[1])
		return orb.Point{x, y}
	}
}

// FeatureCollection reprojects every feature of fc in place. Features whose
// geometry leaves the projection domain make the call fail.
func FeatureCollection(fc *geojson.FeatureCollection, p coord.Projection, d Direction) error {
	fn := Func(p, d)
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		g := project.Geometry(f.Geometry, fn)
		if hasSentinel(g) {
			return errors.Wrapf(ErrOutsideDomain, "feature %d", i)
		}
		f.Geometry = g
		if f.BBox != nil {
			f.BBox = geojson.NewBBox(g.Bound())
		}
	}
	if fc.BBox != nil {
		var b orb.Bound
		first := true
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			if first {
				b, first = f.Geometry.Bound(), false
				continue
			}
			b = b.Union(f.Geometry.Bound())
		}
		fc.BBox = geojson.NewBBox(b)
	}
	return nil
}

// Bytes decodes a GeoJSON FeatureCollection, reprojects it and encodes it again.
func Bytes(data []byte, p coord.Projection, d Direction) ([]byte, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "decoding GeoJSON")
	}
	if err := FeatureCollection(fc, p, d); err != nil {
		return nil, err
	}
	out, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "encoding GeoJSON")
	}
	return out, nil
}

func hasSentinel(g orb.Geometry) bool {
	b := g.Bound()
	return b.Max[0] >= coord.GridSentinel || b.Max[1] >= coord.GridSentinel
}
