package main

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pspoerri/gridproj/internal/coord"
	"github.com/pspoerri/gridproj/internal/encode"
	"github.com/pspoerri/gridproj/internal/residual"
)

func newResidualCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "residual OUT",
		Short: "Render the forward/inverse round-trip error as an image",
		Long: `residual samples a lon/lat bounding box, projects every pixel center
forward and back and renders the distance between the start and end points
on a logarithmic colour ramp. The format follows the extension of OUT
(.png, .jpg, .webp). Pixels outside the projection domain are transparent.`,
		Example: `  gridconv residual --proj 2000 residual-2000.png
  gridconv residual --proj utm --bbox 0,-80,60,84 --size 1200x1640 utm.webp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.ellipsoid()
			if err != nil {
				return err
			}
			rt, err := roundTripFor(e, a.cfg.GetString("proj"))
			if err != nil {
				return err
			}
			bbox, err := parseBBox(a.cfg.GetString("bbox"))
			if err != nil {
				return err
			}
			w, h, err := parseSize(a.cfg.GetString("size"))
			if err != nil {
				return err
			}
			enc, err := encode.ForPath(args[0], a.cfg.GetInt("quality"))
			if err != nil {
				return err
			}

			cfg := residual.Config{
				MinLon:      bbox[0],
				MinLat:      bbox[1],
				MaxLon:      bbox[2],
				MaxLat:      bbox[3],
				Width:       w,
				Height:      h,
				Concurrency: a.cfg.GetInt("concurrency"),
				Progress:    !a.cfg.GetBool("quiet"),
			}
			start := time.Now()
			m, err := residual.Compute(cmd.Context(), cfg, rt)
			if err != nil {
				return err
			}
			scale := residual.Scale{Floor: a.cfg.GetFloat64("scale-floor"), Ceil: a.cfg.GetFloat64("scale-ceil")}
			data, err := enc.Encode(residual.Render(m, scale))
			if err != nil {
				return errors.Wrapf(err, "encoding %s", enc.Format())
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", args[0])
			}

			st := m.Stats(cfg)
			a.log.WithFields(logrus.Fields{
				"proj":     a.cfg.GetString("proj"),
				"pixels":   st.Pixels,
				"outside":  st.Outside,
				"max_m":    st.Max,
				"mean_m":   st.Mean,
				"worst_at": strconv.FormatFloat(st.MaxLat, 'f', 4, 64) + "," + strconv.FormatFloat(st.MaxLon, 'f', 4, 64),
				"elapsed":  time.Since(start).Round(time.Millisecond),
			}).Info("residual map written")
			return nil
		},
	}
	cmd.Flags().String("proj", "1992", "Projection: utm, 1992, 2000, or an EPSG code")
	cmd.Flags().String("bbox", "13.5,48.5,25.5,55.5", "Bounding box minLon,minLat,maxLon,maxLat")
	cmd.Flags().String("size", "600x350", "Image size WxH in pixels")
	cmd.Flags().Int("quality", 90, "JPEG/WebP quality (100 = lossless WebP)")
	cmd.Flags().Int("concurrency", runtime.NumCPU(), "Number of parallel workers")
	cmd.Flags().Float64("scale-floor", residual.DefaultScale.Floor, "Residual (m) mapped to the first ramp colour")
	cmd.Flags().Float64("scale-ceil", residual.DefaultScale.Ceil, "Residual (m) mapped to the last ramp colour")
	cmd.Flags().Bool("quiet", false, "Hide the progress bar")
	return cmd
}

// roundTripFor accepts utm, 1992, 2000 or a numeric EPSG code.
func roundTripFor(e coord.Ellipsoid, proj string) (residual.RoundTrip, error) {
	proj = strings.ToLower(strings.TrimPrefix(strings.ToUpper(proj), "EPSG:"))
	if proj == projUTM {
		return residual.UTM(e), nil
	}
	if g, err := coord.ParseGrid(proj); err == nil {
		return residual.Grid(e, g), nil
	}
	if code, err := strconv.Atoi(proj); err == nil {
		if p := coord.ForEPSGOnEllipsoid(code, e); p != nil {
			return residual.Projection(p), nil
		}
		return nil, errors.Newf("unsupported EPSG code %d", code)
	}
	return nil, errors.Newf("unknown projection %q (supported: utm, 1992, 2000, EPSG code)", proj)
}

func parseBBox(s string) ([4]float64, error) {
	var b [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return b, errors.Newf("bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}
	vals, err := parseFloats(parts)
	if err != nil {
		return b, errors.Wrapf(err, "bbox %q", s)
	}
	copy(b[:], vals)
	return b, nil
}

func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, errors.Newf("size %q: want WxH", s)
	}
	if w, err = strconv.Atoi(ws); err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", s)
	}
	if h, err = strconv.Atoi(hs); err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, errors.Newf("size %q must be positive", s)
	}
	return w, h, nil
}
