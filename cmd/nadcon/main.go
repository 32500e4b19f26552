// Command nadcon converts coordinates between NAD27 and NAD83.
//
// Usage:
//
//	nadcon convert --data-dir /opt/mrt/data -- -100.5 35.25
//	nadcon convert --reverse < points.txt
//	nadcon regions
//
// The data directory holds the NADCON grid pairs (conus.las/conus.los,
// hawaii.las/hawaii.los, ...). It may also be given in MRT_DATA_DIR.
package main

import (
	"fmt"
	"os"

	"github.com/arkokoley/modis-county-cropper-sub001/internal/cli"
)

func main() {
	if err := cli.InitializeConfig().Root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
