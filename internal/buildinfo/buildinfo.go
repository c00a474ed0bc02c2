// Package buildinfo holds values stamped at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/checkpay/internal/buildinfo.Version=v1.2.3 \
//	  -X github.com/dmitrijs2005/checkpay/internal/buildinfo.BuildDate=2025-01-01"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version   = "N/A"
	BuildDate = "N/A"
)

// PrintBuildData writes the version banner.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\nBuild date: %s\n", Version, BuildDate)
}
