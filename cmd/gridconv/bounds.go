package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pspoerri/gridproj/internal/coord"
	"github.com/pspoerri/gridproj/internal/encode"
	"github.com/pspoerri/gridproj/internal/geotiff"
	"github.com/pspoerri/gridproj/internal/worldfile"
)

func newBoundsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bounds IMAGE",
		Short: "Print the WGS84 bounds of a georeferenced image",
		Long: `bounds reads the world file next to IMAGE (.tfw, .jgw, .pgw, .wld, ...)
and prints the WGS84 bounding box "minLon minLat maxLon maxLat" of the
raster. GeoTIFFs without a world file are georeferenced from their tags.
The CRS is taken from --epsg, the GeoTIFF keys, or inferred from the
origin. TIFF, PNG, JPEG and WebP sizes are read from the image; other
formats need --width and --height.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img := args[0]
			geo := a.readGeoTIFF(img)

			var (
				wf  *worldfile.WorldFile
				err error
			)
			source := worldfile.Find(img)
			switch {
			case source != "":
				if wf, err = worldfile.ReadFile(source); err != nil {
					return err
				}
			case geo != nil:
				if wf, err = geo.WorldFile(); err != nil {
					return errors.Wrapf(err, "%s", img)
				}
				source = img
			default:
				return errors.Newf("no world file found for %s", img)
			}

			width, height := a.cfg.GetInt("width"), a.cfg.GetInt("height")
			if width <= 0 || height <= 0 {
				switch {
				case geo != nil:
					width, height = geo.Width, geo.Height
				default:
					if width, height, err = imageSize(img); err != nil {
						return errors.Wrap(err, "image size unknown, set --width and --height")
					}
				}
			}

			epsg := a.cfg.GetInt("epsg")
			if epsg == 0 && geo != nil {
				epsg = geo.EPSG()
			}
			if epsg == 0 {
				epsg = coord.InferEPSG(wf.OriginX, wf.OriginY)
				a.log.WithField("epsg", epsg).Debug("inferred CRS from world file origin")
			}
			e, err := a.ellipsoid()
			if err != nil {
				return err
			}
			p := coord.ForEPSGOnEllipsoid(epsg, e)
			if p == nil {
				return errors.Newf("unsupported EPSG code %d", epsg)
			}

			minLon, minLat, maxLon, maxLat := wf.Bounds(width, height, p)
			a.log.WithFields(logrus.Fields{
				"georef": source,
				"epsg":   epsg,
				"size":   fmt.Sprintf("%dx%d", width, height),
			}).Debug("computed bounds")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				formatDegrees(minLon), formatDegrees(minLat), formatDegrees(maxLon), formatDegrees(maxLat))
			return nil
		},
	}
	cmd.Flags().Int("epsg", 0, "CRS of the world file (0 = infer from origin)")
	cmd.Flags().Int("width", 0, "Raster width in pixels")
	cmd.Flags().Int("height", 0, "Raster height in pixels")
	return cmd
}

// readGeoTIFF returns the GeoTIFF header of a .tif/.tiff image, or nil for
// other formats and for TIFFs without readable tags.
func (a *app) readGeoTIFF(path string) *geotiff.Header {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
	default:
		return nil
	}
	h, err := geotiff.ReadFile(path)
	if err != nil {
		a.log.WithError(err).Debug("no GeoTIFF tags")
		return nil
	}
	return h
}

// imageSize decodes a PNG, JPEG or WebP image and returns its size.
func imageSize(path string) (width, height int, err error) {
	enc, err := encode.ForPath(path, 0)
	if err != nil {
		return 0, 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "reading %s", path)
	}
	img, err := encode.DecodeImage(data, enc.Format())
	if err != nil {
		return 0, 0, errors.Wrapf(err, "decoding %s", path)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
