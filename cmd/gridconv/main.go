// Command gridconv converts coordinates between WGS84 latitude/longitude,
// UTM and the Polish national grids PUWG 1992 and PUWG 2000.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
