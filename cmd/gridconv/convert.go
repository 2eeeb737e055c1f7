package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pspoerri/gridproj/internal/coord"
)

const (
	projUTM  = "utm"
	projAuto = "auto"
)

// converter turns coordinates into output fields for one projection family.
type converter struct {
	e    coord.Ellipsoid
	proj string
	grid coord.Grid
	zone string // default UTM zone for inverse conversions, e.g. "34U"
}

func (a *app) converter() (*converter, error) {
	e, err := a.ellipsoid()
	if err != nil {
		return nil, err
	}
	c := &converter{
		e:    e,
		proj: strings.ToLower(a.cfg.GetString("proj")),
		zone: a.cfg.GetString("zone"),
	}
	switch c.proj {
	case projUTM, projAuto:
	default:
		if c.grid, err = coord.ParseGrid(c.proj); err != nil {
			return nil, errors.Newf("unknown projection %q (supported: utm, 1992, 2000, auto)", c.proj)
		}
	}
	return c, nil
}

func formatMeters(v float64) string  { return strconv.FormatFloat(v, 'f', 3, 64) }
func formatDegrees(v float64) string { return strconv.FormatFloat(v, 'f', 9, 64) }

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i+1)
		}
		vals[i] = v
	}
	return vals, nil
}

// forward projects lat/lon. UTM yields zone, easting, northing; the national
// grids yield easting, northing. On a domain error the sentinel output is
// returned together with the error.
func (c *converter) forward(lat, lon float64) ([]string, error) {
	switch c.proj {
	case projUTM:
		u, err := coord.LatLonToUTM(c.e, lat, lon)
		out := []string{fmt.Sprintf("%d%c", u.Zone, u.Letter), formatMeters(u.Easting), formatMeters(u.Northing)}
		return out, err
	case projAuto:
		return nil, errors.New("--proj auto only applies to inverse conversions")
	}
	x, y, err := coord.LatLonToGrid(c.e, c.grid, lat, lon)
	return []string{formatMeters(x), formatMeters(y)}, err
}

// crs describes the projection a forward conversion of (lat, lon) uses.
func (c *converter) crs(lat, lon float64) logrus.Fields {
	if c.proj == projUTM {
		zone, _ := coord.ResolveZone(lat, lon)
		p := &coord.UTM{Zone: zone, South: lat < 0}
		return logrus.Fields{"profile": p.String(), "epsg": p.EPSG()}
	}
	prof, err := c.grid.ProfileForLon(lon)
	if err != nil {
		return logrus.Fields{"profile": "none"}
	}
	return logrus.Fields{"profile": prof.Name, "epsg": c.grid.EPSG(lon)}
}

// inverse unprojects [zone] easting northing to lat, lon.
func (c *converter) inverse(fields []string) ([]string, error) {
	zone := c.zone
	if len(fields) == 3 {
		zone, fields = fields[0], fields[1:]
	}
	if len(fields) != 2 {
		return nil, errors.Newf("expected [zone] easting northing, got %d fields", len(fields))
	}
	vals, err := parseFloats(fields)
	if err != nil {
		return nil, err
	}
	x, y := vals[0], vals[1]

	var lat, lon float64
	switch c.proj {
	case projUTM:
		if zone == "" {
			return nil, errors.New("UTM inverse needs a zone (--zone or a leading field)")
		}
		number, letter, err := coord.ParseZone(zone)
		if err != nil {
			return nil, err
		}
		lat, lon = coord.UTMToLatLon(c.e, coord.UTMCoord{Zone: number, Letter: letter, Easting: x, Northing: y})
	case projAuto:
		epsg := coord.InferEPSG(x, y)
		p := coord.ForEPSGOnEllipsoid(epsg, c.e)
		if p == nil || epsg == 4326 {
			return nil, errors.Newf("cannot infer a planar grid for (%v, %v)", x, y)
		}
		lon, lat = p.ToWGS84(x, y)
	default:
		if lat, lon, err = coord.GridToLatLon(c.e, c.grid, x, y); err != nil {
			return nil, err
		}
	}
	return []string{formatDegrees(lat), formatDegrees(lon)}, nil
}

func newForwardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forward LAT LON",
		Short: "Project latitude/longitude (degrees) to planar coordinates",
		Example: `  gridconv forward --proj utm 52.2297 21.0122
  gridconv forward --proj 2000 52.2297 21.0122
  gridconv forward -- -33.8568 151.2153`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.converter()
			if err != nil {
				return err
			}
			vals, err := parseFloats(args)
			if err != nil {
				return err
			}
			out, err := c.forward(vals[0], vals[1])
			a.log.WithFields(c.crs(vals[0], vals[1])).Debug("forward")
			if out != nil {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
			}
			return err
		},
	}
	cmd.Flags().String("proj", projUTM, "Projection: utm, 1992, 2000")
	return cmd
}

func newInverseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inverse [ZONE] EASTING NORTHING",
		Short: "Unproject planar coordinates to latitude/longitude (degrees)",
		Example: `  gridconv inverse --proj utm 34U 500833.243 5786586.671
  gridconv inverse --proj 1992 637382.204 486757.210
  gridconv inverse --proj auto 7500833.512 5788456.487`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.converter()
			if err != nil {
				return err
			}
			out, err := c.inverse(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
			return nil
		},
	}
	cmd.Flags().String("proj", projUTM, "Projection: utm, 1992, 2000, auto")
	cmd.Flags().String("zone", "", "UTM zone for inverse conversions, e.g. 34U")
	return cmd
}
