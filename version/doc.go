// Package version reports the weave build version.
//
// Version and Commit may be set at link time:
//
//	go build -ldflags "-X github.com/kbukum/weave/version.Version=v0.3.0"
//
// Otherwise they are read from the embedded build information, including
// the module version when weave is built as a dependency.
package version
