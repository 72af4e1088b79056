package version

import (
	"fmt"
	"runtime"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.2.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Program names used in help output and scheduled job markers
const (
	NameShort = "pip-updater"
	NameLong  = "pip updater"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("%s version %s\n  commit: %s\n  built: %s\n  go: %s\n  os/arch: %s/%s",
		NameShort, Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns the program name and version on one line
func Short() string {
	return NameShort + " " + Version
}
