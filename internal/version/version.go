// Package version holds the build version, overridable at link time.
package version

// Version is the current cscan version. Overridden via
// -ldflags "-X cscan/internal/version.Version=..." on release builds.
var Version = "0.3.0"
