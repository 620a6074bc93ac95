// Package buildinfo carries the version stamped in at link time:
//
//	go build -ldflags "-X github.com/cybersib/cybersib/internal/buildinfo.Version=2.1.0"
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

var (
	Version = "N/A"
	Commit  = "N/A"
	Date    = "N/A"
)

// ShortVersion returns Version, or the module version recorded by the Go
// toolchain when Version was not stamped.
func ShortVersion() string {
	if Version != "N/A" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "dev"
}

func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
