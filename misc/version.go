// Package misc holds build information injected at link time.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set with -ldflags "-X richtag/misc.version=... -X richtag/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
	appName = ""
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns commit hash program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name without extension, falling back to
// "richtag" when it cannot be determined.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
	if len(name) == 0 || name == "." {
		return "richtag"
	}
	return name
}
