package main

import (
	"bytes"
	"encoding/csv"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pspoerri/gridproj/internal/coord"
)

// run executes the command tree with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithLog(t, stdin, args...)
	return out, err
}

// runWithLog is run that also returns the log written to stderr.
func runWithLog(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestForward(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"utm warsaw", []string{"forward", "52.2297", "21.0122"}, "34U 500833.243 5786586.671"},
		{"utm sydney", []string{"forward", "--", "-33.8568", "151.2153"}, "56H 334900.570 6252288.753"},
		{"1992 warsaw", []string{"forward", "--proj", "1992", "52.2297", "21.0122"}, "637382.204 486757.210"},
		{"2000 warsaw", []string{"forward", "--proj", "2000", "52.2297", "21.0122"}, "7500833.512 5788456.487"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestForward_OutOfDomain(t *testing.T) {
	out, err := run(t, "", "forward", "--proj", "2000", "52", "30")
	require.ErrorIs(t, err, coord.ErrLongitudeOutOfRange)
	assert.Equal(t, "999999999999999.000 999999999999999.000\n", out)
}

func TestForward_EnvConfig(t *testing.T) {
	t.Setenv("GRIDCONV_PROJ", "1992")
	out, err := run(t, "", "forward", "52.2297", "21.0122")
	require.NoError(t, err)
	assert.Equal(t, "637382.204 486757.210\n", out)
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		lat, lon float64
	}{
		{"utm zone arg", []string{"inverse", "34U", "500833.243", "5786586.671"}, 52.2297, 21.0122},
		{"utm zone flag", []string{"inverse", "--zone", "56H", "334900.570", "6252288.753"}, -33.8568, 151.2153},
		{"1992", []string{"inverse", "--proj", "1992", "637382.204", "486757.210"}, 52.2297, 21.0122},
		{"2000", []string{"inverse", "--proj", "2000", "7423862.505", "5547791.135"}, 50.0614, 19.9366},
		{"auto", []string{"inverse", "--proj", "auto", "7500833.512", "5788456.487"}, 52.2297, 21.0122},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			require.NoError(t, err)
			fields := strings.Fields(out)
			require.Len(t, fields, 2)
			vals, err := parseFloats(fields)
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, vals[0], 1e-7)
			assert.InDelta(t, tt.lon, vals[1], 1e-7)
		})
	}
}

func TestInverse_Errors(t *testing.T) {
	_, err := run(t, "", "inverse", "500000", "5000000")
	assert.ErrorContains(t, err, "needs a zone")

	_, err = run(t, "", "inverse", "--proj", "2000", "4500000", "5000000")
	assert.ErrorIs(t, err, coord.ErrEastingOutOfRange)

	_, err = run(t, "", "inverse", "--proj", "mercator", "1", "2")
	assert.ErrorContains(t, err, "unknown projection")
}

func TestEllipsoidFlags(t *testing.T) {
	wgs, err := run(t, "", "forward", "--proj", "1992", "52.2297", "21.0122")
	require.NoError(t, err)
	grs, err := run(t, "", "forward", "--proj", "1992", "--ellipsoid", "grs80", "52.2297", "21.0122")
	require.NoError(t, err)
	custom, err := run(t, "", "forward", "--proj", "1992", "--a", "6378137", "--f", "0.0033528106647474805", "52.2297", "21.0122")
	require.NoError(t, err)

	// GRS80 and WGS84 differ by 0.1 mm in b; at 3 decimals they agree.
	assert.Equal(t, wgs, grs)
	assert.Equal(t, wgs, custom)

	_, err = run(t, "", "forward", "--ellipsoid", "clarke", "52", "21")
	assert.ErrorContains(t, err, "unknown ellipsoid")
}

func TestBatch(t *testing.T) {
	in := "lat,lon\n52.2297,21.0122\n50.0614,19.9366\n52,30\nbad,1\n"
	out, err := run(t, in, "batch", "--proj", "2000", "--header", "--concurrency", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "lat,lon,easting,northing,error", lines[0])
	assert.Equal(t, "52.2297,21.0122,7500833.512,5788456.487,", lines[1])
	assert.Equal(t, "50.0614,19.9366,7423862.505,5547791.135,", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "52,30,999999999999999.000,999999999999999.000,"), lines[3])
	assert.Contains(t, lines[3], "longitude")
	assert.True(t, strings.HasPrefix(lines[4], "bad,1,,,"), lines[4])
}

func TestBatch_InverseUTM(t *testing.T) {
	in := "34U,500833.243,5786586.671\n56H,334900.570,6252288.753\n"
	out, err := run(t, in, "batch", "--direction", "inverse")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	want := [][2]float64{{52.2297, 21.0122}, {-33.8568, 151.2153}}
	for i, row := range rows {
		require.Len(t, row, 6)
		assert.Empty(t, row[5])
		vals, err := parseFloats(row[3:5])
		require.NoError(t, err)
		assert.InDelta(t, want[i][0], vals[0], 1e-7)
		assert.InDelta(t, want[i][1], vals[1], 1e-7)
	}
}

func TestConvertRecords_Order(t *testing.T) {
	records := make([][]string, 100)
	for i := range records {
		records[i] = []string{strings.Repeat("x", i)}
	}
	results := convertRecords(records, 8, func(r []string) ([]string, error) {
		return []string{r[0] + "!"}, nil
	})
	for i, res := range results {
		require.NoError(t, res.err)
		assert.Equal(t, strings.Repeat("x", i)+"!", res.fields[0])
	}
}

func TestGeoJSON(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.geojson")
	mid := filepath.Join(dir, "mid.geojson")
	back := filepath.Join(dir, "back.geojson")

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{21.0122, 52.2297}))
	fc.Append(geojson.NewFeature(orb.LineString{{18.6466, 54.352}, {19.9366, 50.0614}}))
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(in, data, 0o644))

	_, err = run(t, "", "geojson", "--epsg", "2180", in, mid)
	require.NoError(t, err)
	_, err = run(t, "", "geojson", "--epsg", "2180", "--direction", "inverse", mid, back)
	require.NoError(t, err)

	raw, err := os.ReadFile(mid)
	require.NoError(t, err)
	projected, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)
	pt := projected.Features[0].Geometry.(orb.Point)
	assert.InDelta(t, 637382.204, pt[0], 1e-3)
	assert.InDelta(t, 486757.210, pt[1], 1e-3)

	raw, err = os.ReadFile(back)
	require.NoError(t, err)
	restored, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)
	ls := restored.Features[1].Geometry.(orb.LineString)
	assert.InDelta(t, 18.6466, ls[0][0], 1e-7)
	assert.InDelta(t, 50.0614, ls[1][1], 1e-7)
}

func TestGeoJSON_Stdio(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[21.0122,52.2297]},"properties":null}]}`
	out, err := run(t, in, "geojson", "--epsg", "2178", "-", "-")
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	pt := fc.Features[0].Geometry.(orb.Point)
	assert.InDelta(t, 7500833.512, pt[0], 1e-3)
	assert.InDelta(t, 5788456.487, pt[1], 1e-3)
}

func TestGeoJSON_UnsupportedEPSG(t *testing.T) {
	_, err := run(t, "{}", "geojson", "--epsg", "3857", "-", "-")
	assert.ErrorContains(t, err, "unsupported EPSG code 3857")
}

func TestBounds(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "ortho.tif")
	require.NoError(t, os.WriteFile(img, nil, 0o644))
	// 1000x1000 px at 1 m around Warsaw in PUWG 1992.
	tfw := "1\n0\n0\n-1\n637000.5\n487499.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ortho.tfw"), []byte(tfw), 0o644))

	out, err := run(t, "", "bounds", "--width", "1000", "--height", "1000", img)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 4)
	vals, err := parseFloats(fields)
	require.NoError(t, err)

	assert.Less(t, vals[0], 21.0122)
	assert.Greater(t, vals[2], 21.0122)
	assert.Less(t, vals[1], 52.2297)
	assert.Greater(t, vals[3], 52.2297)
	assert.InDelta(t, 0.0147, vals[2]-vals[0], 1e-3)
	assert.InDelta(t, 0.0090, vals[3]-vals[1], 1e-3)

	_, err = run(t, "", "bounds", img)
	assert.ErrorContains(t, err, "--width and --height")
}

func TestBounds_NoWorldFile(t *testing.T) {
	_, err := run(t, "", "bounds", filepath.Join(t.TempDir(), "missing.tif"))
	assert.ErrorContains(t, err, "no world file")
}

func TestResidual(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "residual.png")
	_, err := run(t, "", "residual", "--quiet", "--proj", "2000", "--size", "48x28", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestResidual_BadArgs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "r.png")

	_, err := run(t, "", "residual", "--quiet", "--size", "10", out)
	assert.ErrorContains(t, err, "want WxH")

	_, err = run(t, "", "residual", "--quiet", "--bbox", "1,2,3", out)
	assert.ErrorContains(t, err, "minLon,minLat,maxLon,maxLat")

	_, err = run(t, "", "residual", "--quiet", "--proj", "lambert", out)
	assert.ErrorContains(t, err, "unknown projection")

	_, err = run(t, "", "residual", "--quiet", filepath.Join(t.TempDir(), "r.gif"))
	assert.ErrorContains(t, err, "unsupported image format")
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("640X480")
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	_, _, err = parseSize("0x10")
	assert.Error(t, err)
}

func TestInverseAuto_HonoursEllipsoid(t *testing.T) {
	bessel := []string{"--a", "6377397.155", "--f", "0.003342773182174806"}
	coords := []string{"7500833.512", "5788456.487"}

	auto, err := run(t, "", append(append([]string{"inverse", "--proj", "auto"}, bessel...), coords...)...)
	require.NoError(t, err)
	grid, err := run(t, "", append(append([]string{"inverse", "--proj", "2000"}, bessel...), coords...)...)
	require.NoError(t, err)
	wgs, err := run(t, "", append([]string{"inverse", "--proj", "auto"}, coords...)...)
	require.NoError(t, err)

	assert.Equal(t, grid, auto)
	assert.NotEqual(t, wgs, auto)
}

func TestGeoJSON_HonoursEllipsoid(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[21.0122,52.2297]},"properties":null}]}`
	out, err := run(t, in, "geojson", "--epsg", "2180", "--a", "6377397.155", "--f", "0.003342773182174806", "-", "-")
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	pt := fc.Features[0].Geometry.(orb.Point)
	want, err := run(t, "", "forward", "--proj", "1992", "--a", "6377397.155", "--f", "0.003342773182174806", "52.2297", "21.0122")
	require.NoError(t, err)
	assert.Equal(t, want, formatMeters(pt[0])+" "+formatMeters(pt[1])+"\n")
}

func TestForward_LogsProfile(t *testing.T) {
	_, log, err := runWithLog(t, "", "forward", "--verbose", "--proj", "2000", "52.2297", "21.0122")
	require.NoError(t, err)
	assert.Contains(t, log, "epsg=2178")
	assert.Contains(t, log, `profile="PUWG 2000"`)

	_, log, err = runWithLog(t, "", "forward", "--verbose", "52.2297", "21.0122")
	require.NoError(t, err)
	assert.Contains(t, log, "epsg=32634")
}

func TestBounds_PNGSize(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "scan.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1000, 1000))))
	require.NoError(t, os.WriteFile(img, buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pgw"), []byte("1\n0\n0\n-1\n637000.5\n487499.5\n"), 0o644))

	withSize, err := run(t, "", "bounds", "--width", "1000", "--height", "1000", img)
	require.NoError(t, err)
	fromImage, err := run(t, "", "bounds", img)
	require.NoError(t, err)
	assert.Equal(t, withSize, fromImage)
}
