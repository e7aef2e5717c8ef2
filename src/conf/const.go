// Package conf contains the constants and the process-wide checking switch
// that are shared across packages.
package conf

import (
	"fmt"
	"os"
	"time"
)

const (
	// VERSION is the version of the pedant library.
	VERSION = "Pedant 0.1.0"
	// VERSIONMAJORN is the major version.
	VERSIONMAJORN = 0
	// VERSIONMINORN is the minor version.
	VERSIONMINORN = 1
	// VERSIONPATCHN is the patch version.
	VERSIONPATCHN = 0
	// ENVVARNAME is the environment variable consulted once at startup to
	// decide the initial state of the checking switch. Unset means enabled.
	ENVVARNAME = "ENABLE_PEDANT"
	// MAXNESTING is the max depth the matcher will recurse into nested
	// containers before giving up on a value.
	MAXNESTING = 512
)

var enabled = true

func init() {
	if val, ok := os.LookupEnv(ENVVARNAME); ok {
		enabled = val == "1"
	}
}

// Enable turns runtime checking on for the whole process.
func Enable() { enabled = true }

// Disable turns runtime checking off for the whole process. Every validation
// becomes a no-op that succeeds without inspecting anything.
func Disable() { enabled = false }

// Enabled reports whether runtime checking is currently on.
func Enabled() bool { return enabled }

// FullVersion returns the version and copyright.
func FullVersion() string {
	return fmt.Sprintf("%v Copyright (C) %v", VERSION, time.Now().Year())
}
