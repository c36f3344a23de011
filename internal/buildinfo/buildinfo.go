// Package buildinfo carries the version stamped at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/mangasync/internal/buildinfo.Version=1.4.0"
package buildinfo

import "runtime/debug"

// Version is the release version, "dev" for local builds.
var Version = "dev"

var readBuildInfo = debug.ReadBuildInfo

// String returns Version, or the module version recorded by the Go
// toolchain when Version was not stamped.
func String() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}
