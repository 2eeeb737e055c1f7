package reproject

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pspoerri/gridproj/internal/coord"
)

const cities = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Warsaw"},
     "geometry": {"type": "Point", "coordinates": [21.0122, 52.2297]}},
    {"type": "Feature", "properties": {"name": "Gdansk-Krakow"},
     "geometry": {"type": "LineString", "coordinates": [[18.6466, 54.352], [19.9366, 50.0614]]}},
    {"type": "Feature", "properties": {"name": "empty"}, "geometry": null}
  ]
}`

func TestBytes_ForwardInverse(t *testing.T) {
	p := &coord.PUWG1992{}

	planar, err := Bytes([]byte(cities), p, Forward)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(planar)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	warsaw := fc.Features[0].Geometry.(orb.Point)
	assert.InDelta(t, 637382.204, warsaw[0], 1e-3)
	assert.InDelta(t, 486757.210, warsaw[1], 1e-3)
	assert.Equal(t, "Warsaw", fc.Features[0].Properties.MustString("name"))

	line := fc.Features[1].Geometry.(orb.LineString)
	assert.InDelta(t, 477037.599, line[0][0], 1e-3)
	assert.InDelta(t, 720936.521, line[0][1], 1e-3)

	back, err := Bytes(planar, p, Inverse)
	require.NoError(t, err)
	fc, err = geojson.UnmarshalFeatureCollection(back)
	require.NoError(t, err)

	warsaw = fc.Features[0].Geometry.(orb.Point)
	assert.InDelta(t, 21.0122, warsaw[0], 1e-8)
	assert.InDelta(t, 52.2297, warsaw[1], 1e-8)
}

func TestFeatureCollection_OutsideDomain(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{10.0, 52.0})) // west of the grid

	err := FeatureCollection(fc, &coord.PUWG1992{}, Forward)
	assert.ErrorIs(t, err, ErrOutsideDomain)
}

func TestFeatureCollection_BBox(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{15, 0}))
	fc.Append(geojson.NewFeature(orb.Point{21, 10}))
	fc.BBox = geojson.NewBBox(orb.Bound{Min: orb.Point{15, 0}, Max: orb.Point{21, 10}})

	require.NoError(t, FeatureCollection(fc, &coord.UTM{Zone: 33}, Forward))

	b := fc.BBox.Bound()
	assert.InDelta(t, 500000.0, b.Min[0], 1e-6) // 15°E is the zone's central meridian
	assert.InDelta(t, 0.0, b.Min[1], 1e-6)
	assert.Greater(t, b.Max[0], 1000000.0)
}

func TestBytes_Invalid(t *testing.T) {
	_, err := Bytes([]byte("not json"), &coord.PUWG1992{}, Forward)
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("forward")
	require.NoError(t, err)
	assert.Equal(t, Forward, d)

	d, err = ParseDirection("inv")
	require.NoError(t, err)
	assert.Equal(t, Inverse, d)
	assert.Equal(t, "inverse", d.String())

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
