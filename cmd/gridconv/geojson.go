package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pspoerri/gridproj/internal/coord"
	"github.com/pspoerri/gridproj/internal/reproject"
)

func newGeoJSONCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geojson IN OUT",
		Short: "Reproject a GeoJSON FeatureCollection",
		Long: `geojson reprojects every geometry of a FeatureCollection between WGS84
and the planar CRS given by --epsg. Use "-" for stdin or stdout.`,
		Example: `  gridconv geojson --epsg 2180 poland.geojson poland-1992.geojson
  gridconv geojson --epsg 2178 --direction inverse - - < parcels.geojson`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			epsg := a.cfg.GetInt("epsg")
			e, err := a.ellipsoid()
			if err != nil {
				return err
			}
			p := coord.ForEPSGOnEllipsoid(epsg, e)
			if p == nil {
				return errors.Newf("unsupported EPSG code %d", epsg)
			}
			d, err := reproject.ParseDirection(a.cfg.GetString("direction"))
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := reproject.Bytes(data, p, d)
			if err != nil {
				return errors.Wrapf(err, "reprojecting %s", args[0])
			}
			if err := writeOutput(cmd, args[1], out); err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				"epsg":      epsg,
				"direction": d,
				"bytes":     len(out),
			}).Info("reprojected")
			return nil
		},
	}
	cmd.Flags().Int("epsg", 2180, "Planar CRS: 2180, 2176-2179, 326xx, 327xx")
	cmd.Flags().String("direction", "forward", "forward (WGS84 to CRS) or inverse (CRS to WGS84)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return data, errors.Wrap(err, "reading stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return errors.Wrap(err, "writing stdout")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
