// Package worldfile reads ESRI world files, the six-line sidecars that
// georeference TIFF, JPEG and PNG rasters in a planar CRS.
package worldfile

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pspoerri/gridproj/internal/coord"
)

// WorldFile holds the six parameters of a world file.
//
// Line 1: pixel width (x-component of pixel size)
// Line 2: rotation about y-axis (typically 0)
// Line 3: rotation about x-axis (typically 0)
// Line 4: pixel height (y-component, typically negative for north-up)
// Line 5: x-coordinate of the center of the upper-left pixel
// Line 6: y-coordinate of the center of the upper-left pixel
type WorldFile struct {
	PixelSizeX float64
	RotationY  float64
	RotationX  float64
	PixelSizeY float64
	OriginX    float64
	OriginY    float64
}

// ReadFile parses the world file at path.
func ReadFile(path string) (*WorldFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading world file %s", path)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "world file %s", path)
	}
	return w, nil
}

// Parse parses world file contents. Rotated world files are rejected.
func Parse(data []byte) (*WorldFile, error) {
	fields := strings.Fields(string(data))
	if len(fields) < 6 {
		return nil, errors.Newf("expected 6 lines, got %d", len(fields))
	}

	var vals [6]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}
		vals[i] = v
	}

	w := &WorldFile{
		PixelSizeX: vals[0],
		RotationY:  vals[1],
		RotationX:  vals[2],
		PixelSizeY: vals[3],
		OriginX:    vals[4],
		OriginY:    vals[5],
	}
	if w.RotationX != 0 || w.RotationY != 0 {
		return nil, errors.Newf("rotated world files are not supported (rotation: %f, %f)",
			w.RotationX, w.RotationY)
	}
	if w.PixelSizeX == 0 || w.PixelSizeY == 0 {
		return nil, errors.New("zero pixel size")
	}
	return w, nil
}

// sidecarExts maps image extensions to their world file extensions, most
// specific first.
var sidecarExts = map[string][]string{
	".tif":  {".tfw", ".tifw"},
	".tiff": {".tfw", ".tiffw"},
	".jpg":  {".jgw", ".jpgw"},
	".jpeg": {".jgw", ".jpegw"},
	".png":  {".pgw", ".pngw"},
}

// Find looks for a world file alongside the given image path and returns
// its path, or "" if there is none. Both lower and upper case extensions
// are tried, then the generic ".wld".
func Find(imagePath string) string {
	ext := filepath.Ext(imagePath)
	base := imagePath[:len(imagePath)-len(ext)]

	candidates := append([]string{}, sidecarExts[strings.ToLower(ext)]...)
	candidates = append(candidates, ".wld")
	for _, c := range candidates {
		for _, p := range []string{base + c, base + strings.ToUpper(c)} {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// Corners returns the planar coordinates of the outer edges of a
// width x height raster: upper-left, upper-right, lower-right, lower-left.
// World file origins refer to pixel centers, so they are shifted by half a pixel.
func (w *WorldFile) Corners(width, height int) [4][2]float64 {
	left := w.OriginX - w.PixelSizeX/2
	top := w.OriginY - w.PixelSizeY/2
	right := left + float64(width)*w.PixelSizeX
	bottom := top + float64(height)*w.PixelSizeY
	return [4][2]float64{
		{left, top},
		{right, top},
		{right, bottom},
		{left, bottom},
	}
}

// edgeSamples is the number of points projected along each raster edge.
// Transverse Mercator maps straight grid lines to curves in lon/lat, so the
// corners alone underestimate the geographic extent.
const edgeSamples = 16

// Bounds returns the WGS84 bounding box of a width x height raster in the
// CRS of proj.
func (w *WorldFile) Bounds(width, height int, proj coord.Projection) (minLon, minLat, maxLon, maxLat float64) {
	minLon, minLat = math.Inf(1), math.Inf(1)
	maxLon, maxLat = math.Inf(-1), math.Inf(-1)

	c := w.Corners(width, height)
	for i := 0; i < 4; i++ {
		from, to := c[i], c[(i+1)%4]
		for s := 0; s < edgeSamples; s++ {
			f := float64(s) / edgeSamples
			x := from[0] + (to[0]-from[0])*f
			y := from[1] + (to[1]-from[1])*f
			lon, lat := proj.ToWGS84(x, y)
			minLon = math.Min(minLon, lon)
			minLat = math.Min(minLat, lat)
			maxLon = math.Max(maxLon, lon)
			maxLat = math.Max(maxLat, lat)
		}
	}
	return
}
