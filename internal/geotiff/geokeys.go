package geotiff

import (
	"github.com/cockroachdb/errors"

	"github.com/pspoerri/gridproj/internal/worldfile"
)

// GeoTIFF GeoKey IDs.
const (
	gkRasterType      = 1025
	gkGeographicType  = 2048
	gkProjectedCSType = 3072
)

// rasterPixelIsPoint marks tiepoints that refer to pixel centers instead of
// pixel corners.
const rasterPixelIsPoint = 2

// userDefined is the GeoKey value for a CRS not given by an EPSG code.
const userDefined = 32767

// geoKey looks up a GeoKey whose value is stored inline in the directory.
func (h *Header) geoKey(id uint16) (uint16, bool) {
	if len(h.GeoKeys) < 4 {
		return 0, false
	}
	// GeoKey directory header: [KeyDirectoryVersion, KeyRevision, MinorRevision, NumberOfKeys]
	numKeys := int(h.GeoKeys[3])
	for i := 0; i < numKeys; i++ {
		base := 4 + i*4
		if base+3 >= len(h.GeoKeys) {
			break
		}
		// [KeyID, TIFFTagLocation, Count, ValueOffset]; location 0 means inline.
		if h.GeoKeys[base] == id && h.GeoKeys[base+1] == 0 {
			return h.GeoKeys[base+3], true
		}
	}
	return 0, false
}

// EPSG returns the EPSG code of the projected CRS, or of the geographic CRS
// when the raster is not projected, or 0 if neither is given.
func (h *Header) EPSG() int {
	for _, id := range []uint16{gkProjectedCSType, gkGeographicType} {
		if v, ok := h.geoKey(id); ok && v > 0 && v != userDefined {
			return int(v)
		}
	}
	return 0
}

// PixelIsPoint reports whether the tiepoint refers to a pixel center.
func (h *Header) PixelIsPoint() bool {
	v, ok := h.geoKey(gkRasterType)
	return ok && v == rasterPixelIsPoint
}

// WorldFile converts the tiepoint and pixel scale to the equivalent world
// file, whose origin is the center of the upper-left pixel.
func (h *Header) WorldFile() (*worldfile.WorldFile, error) {
	if len(h.ModelTiepoint) < 6 || len(h.ModelPixelScale) < 2 {
		return nil, errors.New("GeoTIFF has no tiepoint and pixel scale")
	}
	sx, sy := h.ModelPixelScale[0], h.ModelPixelScale[1]
	if sx == 0 || sy == 0 {
		return nil, errors.New("GeoTIFF pixel scale is zero")
	}

	i, j := h.ModelTiepoint[0], h.ModelTiepoint[1]
	if !h.PixelIsPoint() {
		i, j = i-0.5, j-0.5
	}
	return &worldfile.WorldFile{
		PixelSizeX: sx,
		PixelSizeY: -sy,
		OriginX:    h.ModelTiepoint[3] - i*sx,
		OriginY:    h.ModelTiepoint[4] + j*sy,
	}, nil
}
