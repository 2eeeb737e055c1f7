// Package residual measures how well a projection's inverse undoes its
// forward transform, pixel by pixel over a geographic bounding box.
package residual

import (
	"context"
	"math"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/s2"
	"golang.org/x/sync/errgroup"

	"github.com/pspoerri/gridproj/internal/coord"
)

// earthRadius is the mean radius used to turn angular residuals into meters.
const earthRadius = 6371008.8

// RoundTrip projects (lat, lon) forward and back. ok is false when the
// position is outside the projection's domain.
type RoundTrip func(lat, lon float64) (gotLat, gotLon float64, ok bool)

// UTM round-trips through the zone resolved from each position.
func UTM(e coord.Ellipsoid) RoundTrip {
	return func(lat, lon float64) (float64, float64, bool) {
		c, err := coord.LatLonToUTM(e, lat, lon)
		if err != nil {
			return 0, 0, false
		}
		gotLat, gotLon := coord.UTMToLatLon(e, c)
		return gotLat, gotLon, true
	}
}

// Grid round-trips through national grid g.
func Grid(e coord.Ellipsoid, g coord.Grid) RoundTrip {
	return func(lat, lon float64) (float64, float64, bool) {
		x, y, err := coord.LatLonToGrid(e, g, lat, lon)
		if err != nil {
			return 0, 0, false
		}
		gotLat, gotLon, err := coord.GridToLatLon(e, g, x, y)
		if err != nil {
			return 0, 0, false
		}
		return gotLat, gotLon, true
	}
}

// Projection round-trips through a fixed-CRS projection.
func Projection(p coord.Projection) RoundTrip {
	return func(lat, lon float64) (float64, float64, bool) {
		x, y := p.FromWGS84(lon, lat)
		if x == coord.GridSentinel && y == coord.GridSentinel {
			return 0, 0, false
		}
		gotLon, gotLat := p.ToWGS84(x, y)
		return gotLat, gotLon, true
	}
}

// Config holds residual map configuration.
type Config struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
	Width, Height  int
	Concurrency    int
	Progress       bool // draw a progress bar on stderr
}

// Map holds the round-trip residual, in meters, of every pixel. Pixel (0, 0)
// is the north-west corner; NaN marks positions outside the domain.
type Map struct {
	Width, Height int
	Values        []float64
}

// At returns the residual of pixel (x, y).
func (m *Map) At(x, y int) float64 { return m.Values[y*m.Width+x] }

// Stats summarises the finite values of a Map.
type Stats struct {
	Pixels  int // pixels inside the domain
	Max     float64
	Mean    float64
	MaxLat  float64
	MaxLon  float64
	Outside int
}

// Compute samples the bounding box at pixel centers and evaluates rt for
// each pixel. Rows are spread over a bounded worker pool.
func Compute(ctx context.Context, cfg Config, rt RoundTrip) (*Map, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Newf("invalid map size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.MaxLon <= cfg.MinLon || cfg.MaxLat <= cfg.MinLat {
		return nil, errors.Newf("empty bounding box [%v, %v, %v, %v]",
			cfg.MinLon, cfg.MinLat, cfg.MaxLon, cfg.MaxLat)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	m := &Map{
		Width:  cfg.Width,
		Height: cfg.Height,
		Values: make([]float64, cfg.Width*cfg.Height),
	}

	var pb *progressBar
	if cfg.Progress {
		pb = newProgressBar("residual", int64(cfg.Height))
		defer pb.Finish()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	dLon := (cfg.MaxLon - cfg.MinLon) / float64(cfg.Width)
	dLat := (cfg.MaxLat - cfg.MinLat) / float64(cfg.Height)

	for y := 0; y < cfg.Height; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lat := cfg.MaxLat - (float64(y)+0.5)*dLat
			row := m.Values[y*cfg.Width : (y+1)*cfg.Width]
			for x := range row {
				lon := cfg.MinLon + (float64(x)+0.5)*dLon
				row[x] = distance(rt, lat, lon)
			}
			if pb != nil {
				pb.Increment()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "computing residual map")
	}
	return m, nil
}

// distance returns the great-circle distance in meters between (lat, lon)
// and its round trip, or NaN outside the domain.
func distance(rt RoundTrip, lat, lon float64) float64 {
	gotLat, gotLon, ok := rt(lat, lon)
	if !ok {
		return math.NaN()
	}
	a := s2.LatLngFromDegrees(lat, lon)
	b := s2.LatLngFromDegrees(gotLat, gotLon)
	return a.Distance(b).Radians() * earthRadius
}

// Stats computes summary statistics of m. Latitudes and longitudes of the
// worst pixel are reported within the bounding box of cfg.
func (m *Map) Stats(cfg Config) Stats {
	var s Stats
	var sum float64
	for i, v := range m.Values {
		if math.IsNaN(v) {
			s.Outside++
			continue
		}
		s.Pixels++
		sum += v
		if v > s.Max || s.Pixels == 1 {
			s.Max = v
			x, y := i%m.Width, i/m.Width
			s.MaxLon = cfg.MinLon + (float64(x)+0.5)*(cfg.MaxLon-cfg.MinLon)/float64(m.Width)
			s.MaxLat = cfg.MaxLat - (float64(y)+0.5)*(cfg.MaxLat-cfg.MinLat)/float64(m.Height)
		}
	}
	if s.Pixels > 0 {
		s.Mean = sum / float64(s.Pixels)
	}
	return s
}
