package main

import (
	"encoding/csv"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// batchJob is one CSV record to convert.
type batchJob struct {
	index  int
	record []string
}

// batchResult is written back at the index of its job so output order
// matches input order regardless of which worker finished first.
type batchResult struct {
	fields []string
	err    error
}

// convertRecords converts records on concurrency workers. Conversion errors
// are reported per record, not returned.
func convertRecords(records [][]string, concurrency int, fn func([]string) ([]string, error)) []batchResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]batchResult, len(records))
	jobs := make(chan batchJob, concurrency*2)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				out, err := fn(job.record)
				results[job.index] = batchResult{fields: out, err: err}
			}
		}()
	}

	for i, r := range records {
		jobs <- batchJob{index: i, record: r}
	}
	close(jobs)
	wg.Wait()
	return results
}

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [FILE.csv]",
		Short: "Convert CSV rows from a file or stdin",
		Long: `batch reads CSV records and appends the converted coordinates and an
error column to each. Forward records are "lat,lon"; inverse records are
"easting,northing" or, for UTM, "zone,easting,northing".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.converter()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrapf(err, "opening %s", args[0])
				}
				defer f.Close()
				in = f
			}

			r := csv.NewReader(in)
			r.FieldsPerRecord = -1
			r.TrimLeadingSpace = true
			records, err := r.ReadAll()
			if err != nil {
				return errors.Wrap(err, "reading CSV")
			}

			var header []string
			if a.cfg.GetBool("header") && len(records) > 0 {
				header, records = records[0], records[1:]
			}

			var fn func([]string) ([]string, error)
			switch a.cfg.GetString("direction") {
			case "forward":
				fn = func(rec []string) ([]string, error) {
					if len(rec) < 2 {
						return nil, errors.Newf("expected lat,lon, got %d fields", len(rec))
					}
					vals, err := parseFloats(rec[:2])
					if err != nil {
						return nil, err
					}
					return c.forward(vals[0], vals[1])
				}
			case "inverse":
				fn = c.inverse
			default:
				return errors.Newf("unknown direction %q (want forward or inverse)", a.cfg.GetString("direction"))
			}

			start := time.Now()
			results := convertRecords(records, a.cfg.GetInt("concurrency"), fn)

			cols := batchHeader(c.proj, a.cfg.GetString("direction"))
			w := csv.NewWriter(cmd.OutOrStdout())
			if header != nil {
				if err := w.Write(append(header, cols...)); err != nil {
					return errors.Wrap(err, "writing CSV")
				}
			}
			failed := 0
			for i, res := range results {
				if err := w.Write(batchRow(records[i], res, len(cols))); err != nil {
					return errors.Wrap(err, "writing CSV")
				}
				if res.err != nil {
					failed++
					a.log.WithFields(logrus.Fields{"row": i + 1, "record": records[i]}).Debug(res.err)
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return errors.Wrap(err, "writing CSV")
			}

			a.log.WithFields(logrus.Fields{
				"proj":    c.proj,
				"rows":    len(records),
				"failed":  failed,
				"elapsed": time.Since(start).Round(time.Millisecond),
			}).Info("batch complete")
			return nil
		},
	}
	cmd.Flags().String("proj", projUTM, "Projection: utm, 1992, 2000, auto (inverse only)")
	cmd.Flags().String("zone", "", "UTM zone for records without a zone field, e.g. 34U")
	cmd.Flags().String("direction", "forward", "Conversion direction: forward, inverse")
	cmd.Flags().Bool("header", false, "First record is a header row")
	cmd.Flags().Int("concurrency", runtime.NumCPU(), "Number of parallel workers")
	return cmd
}

// batchHeader names the columns appended to each record.
func batchHeader(proj, direction string) []string {
	switch {
	case direction == "inverse":
		return []string{"lat", "lon", "error"}
	case proj == projUTM:
		return []string{"zone", "easting", "northing", "error"}
	default:
		return []string{"easting", "northing", "error"}
	}
}

// batchRow appends a result to its input record, padding failed conversions
// so every row has the same number of columns.
func batchRow(record []string, res batchResult, width int) []string {
	row := append([]string{}, record...)
	fields := res.fields
	for len(fields) < width-1 {
		fields = append(fields, "")
	}
	row = append(row, fields[:width-1]...)
	if res.err != nil {
		return append(row, res.err.Error())
	}
	return append(row, "")
}
