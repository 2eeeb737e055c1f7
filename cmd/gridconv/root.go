package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pspoerri/gridproj/internal/coord"
)

// app carries the configuration and logger shared by all subcommands.
type app struct {
	cfg *viper.Viper
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "gridconv",
		Short: "Convert coordinates between WGS84, UTM and PUWG 1992/2000",
		Long: `gridconv converts geodetic latitude/longitude to and from planar
coordinates in the Universal Transverse Mercator system and the Polish
national grids PUWG 1992 (EPSG:2180) and PUWG 2000 (EPSG:2176-2179).`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Configuration file (yaml, toml or json)")
	pf.Bool("verbose", false, "Verbose logging")
	pf.String("ellipsoid", "wgs84", "Reference ellipsoid: wgs84, grs80")
	pf.Float64("a", 0, "Semi-major axis in meters (overrides --ellipsoid together with --f)")
	pf.Float64("f", 0, "Flattening (overrides --ellipsoid together with --a)")

	root.AddCommand(
		newForwardCmd(a),
		newInverseCmd(a),
		newBatchCmd(a),
		newGeoJSONCmd(a),
		newBoundsCmd(a),
		newResidualCmd(a),
	)

	return root
}

// setup loads .env and the config file, binds the executing command's flags
// to the configuration and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "loading .env")
	}

	a.cfg.SetEnvPrefix("GRIDCONV")
	a.cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.cfg.AutomaticEnv()
	if err := a.cfg.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "binding flags")
	}

	if path := a.cfg.GetString("config"); path != "" {
		a.cfg.SetConfigFile(path)
		if err := a.cfg.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %s", path)
		}
	}

	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if a.cfg.GetBool("verbose") {
		a.log.SetLevel(logrus.DebugLevel)
	}
	a.log.WithField("config", a.cfg.ConfigFileUsed()).Debug("configuration loaded")
	return nil
}

// ellipsoid resolves the reference ellipsoid from --a/--f or --ellipsoid.
func (a *app) ellipsoid() (coord.Ellipsoid, error) {
	sa, f := a.cfg.GetFloat64("a"), a.cfg.GetFloat64("f")
	if sa != 0 || f != 0 {
		if sa <= 0 || f <= 0 || f >= 1 {
			return coord.Ellipsoid{}, errors.Newf("invalid ellipsoid a=%v f=%v", sa, f)
		}
		return coord.Ellipsoid{SemiMajorAxis: sa, Flattening: f}, nil
	}
	switch name := strings.ToLower(a.cfg.GetString("ellipsoid")); name {
	case "wgs84", "":
		return coord.WGS84, nil
	case "grs80":
		return coord.GRS80, nil
	default:
		return coord.Ellipsoid{}, errors.Newf("unknown ellipsoid %q (supported: wgs84, grs80)", name)
	}
}
